// Package export publishes the frequency report of a finished run to
// external stores. Sinks only receive a copy of the report; nothing is ever
// read back into a table.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/htable"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
	"golang.org/x/sync/errgroup"
)

// Report is the immutable result of a run.
type Report struct {
	RunID       string
	Policy      string
	Capacity    int
	Keys        int
	Frequencies []htable.Frequency
	GeneratedAt time.Time
}

// NewReport snapshots t.
func NewReport(runID string, t *htable.Table) Report {
	return Report{
		RunID:       runID,
		Policy:      t.Policy().String(),
		Capacity:    t.Cap(),
		Keys:        t.Len(),
		Frequencies: t.Frequencies(),
		GeneratedAt: time.Now().UTC(),
	}
}

// Sink receives reports. Export must be safe to retry.
type Sink interface {
	Name() string
	Export(ctx context.Context, r Report) error
}

// Exporter sends a report to every sink concurrently.
type Exporter struct {
	sinks   []Sink
	timeout time.Duration
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewExporter creates an Exporter. m may be nil.
func NewExporter(cfg config.ExportConfig, m *metrics.Metrics, sinks ...Sink) *Exporter {
	return &Exporter{
		sinks:   sinks,
		timeout: cfg.Timeout,
		retry:   resilience.RetryConfig{MaxAttempts: cfg.MaxAttempts},
		metrics: m,
		logger:  logger.WithComponent("exporter"),
	}
}

// Export runs every sink under the configured deadline and retry policy and
// returns once every sink call has returned, so sink clients can be closed
// afterwards. A failing sink does not stop the others; all failures are
// joined into the returned error.
func (e *Exporter) Export(ctx context.Context, r Report) error {
	if len(e.sinks) == 0 {
		return nil
	}
	start := time.Now()
	errs := make([]error, len(e.sinks))
	var g errgroup.Group
	for i, sink := range e.sinks {
		g.Go(func() error {
			err := resilience.WithTimeout(ctx, e.timeout, sink.Name(), func(ctx context.Context) error {
				return resilience.Retry(ctx, "export-"+sink.Name(), e.retry, func() error {
					return sink.Export(ctx, r)
				})
			})
			e.record(sink.Name(), err)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	// Goroutines never fail the group; errs carries each sink's result.
	_ = g.Wait()

	if e.metrics != nil {
		e.metrics.PhaseDuration.WithLabelValues("export").Set(time.Since(start).Seconds())
	}
	if err := errors.Join(errs...); err != nil {
		return apperrors.New(apperrors.ErrExportFailed, apperrors.ExitUnavailable, err.Error())
	}
	return nil
}

func (e *Exporter) record(sink string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		e.logger.Error("export failed", "sink", sink, "error", err)
	} else {
		e.logger.Info("report exported", "sink", sink)
	}
	if e.metrics != nil {
		e.metrics.ExportsTotal.WithLabelValues(sink, status).Inc()
	}
}
