package analyzer

import (
	"time"

	"github.com/logsift/logsift/internal/model"
)

// BurstDetector finds contiguous runs of error events whose inter-event
// gaps stay under a threshold and whose size meets a minimum count.
//
// Each event's gap is measured against the previous event in the current
// run, not the run's start. Bursts are chains of close pairs, so a burst's
// total span can exceed MinCount*MaxGap. That chaining is intentional and
// must not be replaced with a fixed-radius window.
type BurstDetector struct {
	// MinCount is the minimum run length for a run to qualify (inclusive).
	MinCount int

	// MaxGap is the largest allowed gap between adjacent events (inclusive).
	MaxGap time.Duration
}

// NewBurstDetector creates a detector with the given thresholds.
func NewBurstDetector(minCount int, gapMinutes float64) *BurstDetector {
	return &BurstDetector{
		MinCount: minCount,
		MaxGap:   time.Duration(gapMinutes * float64(time.Minute)),
	}
}

// Detect scans events in a single forward pass and returns qualifying runs
// in order of occurrence. Events must be sorted ascending by timestamp,
// ties broken by original line order. Zero or one event yields no burst.
func (d *BurstDetector) Detect(events []model.LogEvent) []model.ErrorBurst {
	// Non-nil so the report field serializes as an empty list, not null.
	bursts := []model.ErrorBurst{}
	if len(events) == 0 {
		return bursts
	}

	start := 0
	for i := 1; i < len(events); i++ {
		gap := events[i].Timestamp.Sub(events[i-1].Timestamp)
		if gap <= d.MaxGap {
			continue
		}
		if i-start >= d.MinCount {
			bursts = append(bursts, makeBurst(events[start:i]))
		}
		start = i
	}

	// Flush the final run.
	if len(events)-start >= d.MinCount {
		bursts = append(bursts, makeBurst(events[start:]))
	}

	return bursts
}

func makeBurst(run []model.LogEvent) model.ErrorBurst {
	n := len(run)
	if n > 3 {
		n = 3
	}
	samples := make([]string, 0, n)
	for _, e := range run[:n] {
		samples = append(samples, e.Message)
	}

	startTime := run[0].Timestamp
	endTime := run[len(run)-1].Timestamp

	return model.ErrorBurst{
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: endTime.Sub(startTime).Minutes(),
		ErrorCount:      len(run),
		SampleMessages:  samples,
	}
}
