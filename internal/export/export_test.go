package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/htable"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
	"github.com/lib/pq"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	tbl, err := htable.New(7, htable.LinearProbing)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{"cat", "dog", "cat", "bird"} {
		if _, err := tbl.Insert(w); err != nil {
			t.Fatal(err)
		}
	}
	return NewReport("run-1", tbl)
}

type fakeSink struct {
	name     string
	failures int
	mu       sync.Mutex
	calls    int
	got      Report
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Export(_ context.Context, r Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	f.got = r
	return nil
}

func exportCount(t *testing.T, m *metrics.Metrics, sink, status string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "wordfreq_exports_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["sink"] == sink && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestNewReport(t *testing.T) {
	r := sampleReport(t)
	if r.Policy != "Linear Probing" || r.Capacity != 7 || r.Keys != 3 || len(r.Frequencies) != 3 {
		t.Fatalf("report = %+v", r)
	}
}

func TestExporterRetriesAndReports(t *testing.T) {
	m := metrics.New()
	flaky := &fakeSink{name: "flaky", failures: 1}
	steady := &fakeSink{name: "steady"}
	exp := NewExporter(config.ExportConfig{Timeout: 5 * time.Second, MaxAttempts: 3}, m, flaky, steady)

	if err := exp.Export(context.Background(), sampleReport(t)); err != nil {
		t.Fatalf("export: %v", err)
	}
	if flaky.calls != 2 || steady.calls != 1 {
		t.Fatalf("calls flaky=%d steady=%d", flaky.calls, steady.calls)
	}
	if flaky.got.RunID != "run-1" || steady.got.Keys != 3 {
		t.Fatal("sinks did not receive the report")
	}
	if exportCount(t, m, "flaky", "success") != 1 || exportCount(t, m, "steady", "success") != 1 {
		t.Fatal("success not counted")
	}
}

func TestExporterFailureDoesNotStopOthers(t *testing.T) {
	m := metrics.New()
	broken := &fakeSink{name: "broken", failures: 100}
	steady := &fakeSink{name: "steady"}
	exp := NewExporter(config.ExportConfig{Timeout: 5 * time.Second, MaxAttempts: 2}, m, broken, steady)

	err := exp.Export(context.Background(), sampleReport(t))
	if !errors.Is(err, apperrors.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if apperrors.ExitCode(err) != apperrors.ExitUnavailable {
		t.Fatalf("exit code = %d", apperrors.ExitCode(err))
	}
	if broken.calls != 2 || steady.calls != 1 {
		t.Fatalf("calls broken=%d steady=%d", broken.calls, steady.calls)
	}
	if exportCount(t, m, "broken", "failure") != 1 {
		t.Fatal("failure not counted")
	}
}

type blockingSink struct {
	returned atomic.Bool
}

func (b *blockingSink) Name() string { return "blocking" }

func (b *blockingSink) Export(ctx context.Context, _ Report) error {
	<-ctx.Done()
	time.Sleep(10 * time.Millisecond)
	b.returned.Store(true)
	return ctx.Err()
}

func TestExporterWaitsForTimedOutSink(t *testing.T) {
	m := metrics.New()
	slow := &blockingSink{}
	exp := NewExporter(config.ExportConfig{Timeout: 20 * time.Millisecond, MaxAttempts: 3}, m, slow)

	err := exp.Export(context.Background(), sampleReport(t))
	if !errors.Is(err, apperrors.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if !slow.returned.Load() {
		t.Fatal("Export returned while the sink was still running")
	}
	if exportCount(t, m, "blocking", "failure") != 1 {
		t.Fatal("timeout not counted as failure")
	}
}

func TestExporterNoSinks(t *testing.T) {
	if err := NewExporter(config.ExportConfig{}, nil).Export(context.Background(), Report{}); err != nil {
		t.Fatal(err)
	}
}

type fakeScores struct {
	key    string
	scores map[string]float64
	ttl    time.Duration
}

func (f *fakeScores) ReplaceScores(_ context.Context, key string, scores map[string]float64, ttl time.Duration) error {
	f.key, f.scores, f.ttl = key, scores, ttl
	return nil
}

func TestRedisSink(t *testing.T) {
	fake := &fakeScores{}
	sink := NewRedisSink(fake, "wordfreq:test", time.Hour)
	if err := sink.Export(context.Background(), sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	if fake.key != "wordfreq:test" || fake.ttl != time.Hour {
		t.Fatalf("key=%q ttl=%v", fake.key, fake.ttl)
	}
	if fake.scores["cat"] != 2 || fake.scores["dog"] != 1 || fake.scores["bird"] != 1 || len(fake.scores) != 3 {
		t.Fatalf("scores = %v", fake.scores)
	}
}

type fakeSender struct {
	msgs []kafka.Message
}

func (f *fakeSender) Send(_ context.Context, msgs []kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaSink(t *testing.T) {
	sender := &fakeSender{}
	if err := NewKafkaSink(sender).Export(context.Background(), sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	if len(sender.msgs) != 3 {
		t.Fatalf("sent %d messages", len(sender.msgs))
	}
	var ev FrequencyEvent
	if err := json.Unmarshal(sender.msgs[0].Value, &ev); err != nil {
		t.Fatal(err)
	}
	if sender.msgs[0].Key != "bird" || ev.Word != "bird" || ev.Count != 1 || ev.RunID != "run-1" || ev.Policy != "Linear Probing" {
		t.Fatalf("first message key=%q event=%+v", sender.msgs[0].Key, ev)
	}

	sender.msgs = nil
	if err := NewKafkaSink(sender).Export(context.Background(), Report{}); err != nil || len(sender.msgs) != 0 {
		t.Fatalf("empty report sent %d messages, err=%v", len(sender.msgs), err)
	}
}

func TestPostgresErrorClasses(t *testing.T) {
	retry := resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"permission denied stops", &pq.Error{Code: "42501"}, 1},
		{"undefined table stops", fmt.Errorf("merging: %w", &pq.Error{Code: "42P01"}), 1},
		{"connection loss retries", &pq.Error{Code: "08006"}, 3},
		{"network error retries", errors.New("dial tcp: i/o timeout"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := resilience.Retry(context.Background(), "postgres", retry, func() error {
				calls++
				return retryClass(tt.err)
			})
			if calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("original error lost: %v", err)
			}
		})
	}
	if retryClass(nil) != nil {
		t.Fatal("nil error must stay nil")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	cfg := config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "wordfreq_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "wordfreq"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	db, err := postgres.New(context.Background(), cfg)
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresSinkUpserts(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	sink := NewPostgresSink(db)
	r := sampleReport(t)
	// Exporting twice must not duplicate rows.
	for i := 0; i < 2; i++ {
		if err := sink.Export(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	var freq int
	err := db.DB.QueryRowContext(ctx,
		`SELECT frequency FROM word_frequencies WHERE word = $1`, "cat").Scan(&freq)
	if err != nil {
		t.Fatal(err)
	}
	if freq != 2 {
		t.Fatalf("cat frequency = %d, want 2", freq)
	}
}
