// Package source opens log inputs from local disk or remote object storage.
package source

import (
	"context"
	"io"
	"os"
	"strings"

	sifterr "github.com/logsift/logsift/pkg/errors"
)

// Open returns a reader for path. Paths of the form s3://bucket/key are
// fetched from S3 using the default credential chain; everything else is
// treated as a local file.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "s3://") {
		return openS3(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sifterr.FileNotFound(path)
		}
		return nil, sifterr.Wrap(err, sifterr.CodeFilePermission, "failed to open log file").
			WithContext("path", path)
	}
	return f, nil
}

// splitS3Path parses s3://bucket/key into its parts.
func splitS3Path(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", sifterr.New(sifterr.CodeInvalidInput, "invalid s3 path, want s3://bucket/key").
			WithContext("path", path)
	}
	return bucket, key, nil
}
