// Package engine drives a word-frequency table: it sizes and builds the
// table from configuration, fills it from a word source and spell-checks a
// second source against it, timing each phase and reporting to metrics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/htable"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/prime"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/source"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/tracing"
)

type Engine struct {
	table   *htable.Table
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// FillResult describes one Fill call.
type FillResult struct {
	Words    int
	Rejected int
	Duration time.Duration
}

// CheckResult describes one SpellCheck call.
type CheckResult struct {
	Words    int
	Unknown  int
	Duration time.Duration
}

// NewEngine builds a table whose capacity is the first prime at or above
// cfg.Size. m may be nil.
func NewEngine(cfg config.TableConfig, m *metrics.Metrics) (*Engine, error) {
	policy, err := htable.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	if cfg.Size < 1 || cfg.Size > htable.MaxCapacity {
		return nil, apperrors.Newf(apperrors.ErrInvalidCapacity, apperrors.ExitUsage,
			"table size must be in 1..%d, got %d", htable.MaxCapacity, cfg.Size)
	}
	log := logger.WithComponent("engine")
	opts := []htable.Option{htable.WithLogger(log.With("policy", policy.String()))}
	if m != nil {
		opts = append(opts, htable.WithObserver(metricsObserver{m: m}))
	}
	capacity := prime.Next(cfg.Size)
	table, err := htable.New(capacity, policy, opts...)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.SetTableState(0, capacity)
	}
	log.Info("table ready", "requested_size", cfg.Size, "capacity", capacity, "policy", policy.String())
	return &Engine{table: table, metrics: m, logger: log}, nil
}

func (e *Engine) Table() *htable.Table { return e.table }

// Fill inserts every word of src. Words that no longer fit are counted as
// rejected and filling continues, so later repeats of stored words are
// still counted.
func (e *Engine) Fill(ctx context.Context, src source.Source) (FillResult, error) {
	_, span := tracing.StartChildSpan(ctx, "fill")
	defer span.End()

	var res FillResult
	start := time.Now()
	for {
		word, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading words: %w", err)
		}
		res.Words++
		if _, err := e.table.Insert(word); err != nil {
			if errors.Is(err, apperrors.ErrTableFull) {
				if res.Rejected == 0 {
					e.logger.Warn("table full, dropping new words",
						"capacity", e.table.Cap(),
						"first_rejected", word,
					)
				}
				res.Rejected++
				continue
			}
			return res, err
		}
	}
	res.Duration = time.Since(start)

	span.SetAttr("words", res.Words)
	span.SetAttr("keys", e.table.Len())
	span.SetAttr("rejected", res.Rejected)
	if e.metrics != nil {
		e.metrics.SetTableState(e.table.Len(), e.table.Cap())
		e.metrics.PhaseDuration.WithLabelValues("fill").Set(res.Duration.Seconds())
	}
	e.logger.Info("fill complete",
		"words", res.Words,
		"keys", e.table.Len(),
		"rejected", res.Rejected,
		"load_factor", e.table.LoadFactor(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// SpellCheck looks up every word of src and writes the ones the table does
// not hold to out, one per line.
func (e *Engine) SpellCheck(ctx context.Context, src source.Source, out io.Writer) (CheckResult, error) {
	_, span := tracing.StartChildSpan(ctx, "search")
	defer span.End()

	var res CheckResult
	start := time.Now()
	for {
		word, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading words to check: %w", err)
		}
		res.Words++
		if e.table.Search(word) == 0 {
			res.Unknown++
			if _, err := fmt.Fprintln(out, word); err != nil {
				return res, fmt.Errorf("writing unknown word: %w", err)
			}
		}
	}
	res.Duration = time.Since(start)

	span.SetAttr("words", res.Words)
	span.SetAttr("unknown", res.Unknown)
	if e.metrics != nil {
		e.metrics.UnknownWordsTotal.Add(float64(res.Unknown))
		e.metrics.PhaseDuration.WithLabelValues("search").Set(res.Duration.Seconds())
	}
	e.logger.Info("spell check complete",
		"words", res.Words,
		"unknown", res.Unknown,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

type metricsObserver struct {
	m *metrics.Metrics
}

func (o metricsObserver) ObserveInsert(outcome htable.InsertOutcome, collisions int) {
	o.m.RecordInsert(outcome.String(), collisions)
}

func (o metricsObserver) ObserveSearch(found bool) {
	o.m.RecordSearch(found)
}
