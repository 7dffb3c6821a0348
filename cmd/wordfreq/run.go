package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/export"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/source"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/tracing"
)

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "wordfreq: %v\n", err)
		return apperrors.ExitCode(err)
	}
	if opts.help {
		fmt.Fprintf(stdout, usageText, "wordfreq")
		return apperrors.ExitOK
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err := execute(ctx, cfg, opts, stdin, stdout, stderr); err != nil {
		slog.Error("run failed", "error", err)
		fmt.Fprintf(stderr, "wordfreq: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}

func execute(ctx context.Context, cfg *config.Config, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled || cfg.Metrics.Textfile != "" {
		m = metrics.New()
	}
	if m != nil && cfg.Metrics.Enabled && cfg.Metrics.Port > 0 {
		shutdown := m.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}
	if m != nil && cfg.Metrics.Textfile != "" {
		defer func() {
			if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
				slog.Error("writing metrics textfile", "path", cfg.Metrics.Textfile, "error", werr)
			}
		}()
	}

	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	ctx, root := tracing.StartSpan(ctx, "run", runID)
	defer func() {
		root.End()
		root.Log(slog.Default())
	}()

	eng, err := engine.NewEngine(cfg.Table, m)
	if err != nil {
		return err
	}

	dict, closeDict, err := openSource(cfg, stdin)
	if err != nil {
		return err
	}
	defer closeDict()
	if _, err := eng.Fill(ctx, dict); err != nil {
		return err
	}
	table := eng.Table()

	if opts.dumpTable {
		if err := report.WriteTable(stderr, table.Entries()); err != nil {
			return fmt.Errorf("writing table dump: %w", err)
		}
	}

	switch {
	case opts.checkFile != "":
		f, err := os.Open(opts.checkFile)
		if err != nil {
			return apperrors.Newf(apperrors.ErrSourceUnavailable, apperrors.ExitNoInput,
				"opening %s: %v", opts.checkFile, err)
		}
		defer f.Close()
		check, err := eng.SpellCheck(ctx, source.NewReader(f, cfg.Tokenizer.MaxWordLength), stdout)
		if err != nil {
			return err
		}
		if err := report.WriteSpellSummary(stderr, report.SpellSummary{
			FillSeconds:   root.Child("fill").Seconds(),
			SearchSeconds: root.Child("search").Seconds(),
			Unknown:       check.Unknown,
		}); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	case opts.printStats:
		snapshots, err := table.Stats(cfg.Table.Snapshots)
		if err != nil {
			return err
		}
		if err := report.WriteStats(stdout, table.Policy(), snapshots); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	default:
		if err := report.WriteFrequencies(stdout, table.Frequencies()); err != nil {
			return fmt.Errorf("writing frequencies: %w", err)
		}
	}

	if !cfg.Export.Any() {
		return nil
	}
	_, span := tracing.StartChildSpan(ctx, "export")
	defer span.End()
	sinks, closeSinks, err := connectSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()
	return export.NewExporter(cfg.Export, m, sinks...).Export(ctx, export.NewReport(runID, table))
}

// openSource returns the dictionary word source selected by cfg.
func openSource(cfg *config.Config, stdin io.Reader) (source.Source, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceKafka:
		src := source.NewKafka(kafka.NewTopicReader(cfg.Kafka, cfg.Kafka.Topics.Words), cfg.Tokenizer.MaxWordLength)
		return src, func() {
			slog.Info("kafka source closed", "topic", cfg.Kafka.Topics.Words, "messages", src.Messages())
			if err := src.Close(); err != nil {
				slog.Warn("closing kafka reader", "error", err)
			}
		}, nil
	default:
		return source.NewReader(stdin, cfg.Tokenizer.MaxWordLength), func() {}, nil
	}
}

// connectSinks dials every enabled sink, retrying each connection. On error
// the sinks already opened are closed.
func connectSinks(ctx context.Context, cfg *config.Config) ([]export.Sink, func(), error) {
	var sinks []export.Sink
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("closing sink", "error", err)
			}
		}
	}
	retry := resilience.RetryConfig{MaxAttempts: cfg.Export.MaxAttempts}

	if cfg.Export.Redis {
		var client *redis.Client
		err := resilience.Retry(ctx, "redis-connect", retry, func() error {
			var err error
			client, err = redis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			closeAll()
			return nil, nil, unavailable("redis", err)
		}
		closers = append(closers, client.Close)
		sinks = append(sinks, export.NewRedisSink(client, cfg.Redis.Key, cfg.Redis.TTL))
	}
	if cfg.Export.Postgres {
		var db *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", retry, func() error {
			var err error
			db, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			closeAll()
			return nil, nil, unavailable("postgres", err)
		}
		closers = append(closers, db.Close)
		sinks = append(sinks, export.NewPostgresSink(db))
	}
	if cfg.Export.Kafka {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Frequencies)
		closers = append(closers, producer.Close)
		sinks = append(sinks, export.NewKafkaSink(producer))
	}
	return sinks, closeAll, nil
}

func unavailable(sink string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.Newf(apperrors.ErrExportFailed, apperrors.ExitUnavailable,
		"connecting to %s: %v", sink, err)
}
