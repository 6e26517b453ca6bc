package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/logsift/logsift/internal/model"
	"github.com/logsift/logsift/pkg/analyzer"
	"github.com/logsift/logsift/pkg/source"
	"github.com/logsift/logsift/pkg/tui"
)

// analyzeInputs analyzes the given inputs as one merged report. Remote
// inputs (s3://) are fetched to temp files first so all inputs go through
// the same concurrent multi-file path.
func analyzeInputs(ctx context.Context, inputs []string, opts analyzer.Options) (*model.Report, error) {
	paths := make([]string, 0, len(inputs))
	var cleanup []string
	defer func() {
		for _, p := range cleanup {
			os.Remove(p)
		}
	}()

	var bar interface{ Add(int) error }
	if verbose && len(inputs) > 1 {
		bar = tui.ShowProgress(int64(len(inputs)), "fetching inputs")
	}

	for _, input := range inputs {
		if strings.HasPrefix(input, "s3://") {
			local, err := fetchToTemp(ctx, input)
			if err != nil {
				return nil, err
			}
			cleanup = append(cleanup, local)
			paths = append(paths, local)
		} else {
			paths = append(paths, input)
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	if len(paths) == 1 {
		return analyzer.AnalyzeFile(ctx, paths[0], opts)
	}
	return analyzer.AnalyzeFiles(ctx, paths, opts)
}

// fetchToTemp downloads a remote input to a temp file and returns its path.
func fetchToTemp(ctx context.Context, input string) (string, error) {
	rc, err := source.Open(ctx, input)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "logsift-*.log")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
