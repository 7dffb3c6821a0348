package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
)

// PostgresSink upserts the report into word_frequencies. Rows are copied
// into a transaction-scoped staging table and merged in one statement, so a
// report lands entirely or not at all.
type PostgresSink struct {
	db *postgres.Client
}

func NewPostgresSink(db *postgres.Client) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

const createWordFrequencies = `CREATE TABLE IF NOT EXISTS word_frequencies (
	word        TEXT PRIMARY KEY,
	frequency   INTEGER NOT NULL,
	run_id      TEXT NOT NULL,
	policy      TEXT NOT NULL,
	capacity    INTEGER NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

const createStage = `CREATE TEMP TABLE word_frequencies_stage (
	word      TEXT NOT NULL,
	frequency INTEGER NOT NULL
) ON COMMIT DROP`

const mergeStage = `INSERT INTO word_frequencies (word, frequency, run_id, policy, capacity, updated_at)
	SELECT word, frequency, $1::text, $2::text, $3::integer, $4::timestamptz
	FROM word_frequencies_stage
	ON CONFLICT (word) DO UPDATE SET
		frequency = EXCLUDED.frequency,
		run_id = EXCLUDED.run_id,
		policy = EXCLUDED.policy,
		capacity = EXCLUDED.capacity,
		updated_at = EXCLUDED.updated_at`

func (s *PostgresSink) Export(ctx context.Context, r Report) error {
	if err := s.db.Exec(ctx, createWordFrequencies); err != nil {
		return retryClass(fmt.Errorf("creating word_frequencies: %w", err))
	}
	rows := make([][]any, 0, len(r.Frequencies))
	for _, f := range r.Frequencies {
		rows = append(rows, []any{f.Word, f.Count})
	}
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createStage); err != nil {
			return fmt.Errorf("creating staging table: %w", err)
		}
		if _, err := postgres.CopyRows(ctx, tx, "word_frequencies_stage", []string{"word", "frequency"}, rows); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, mergeStage, r.RunID, r.Policy, r.Capacity, r.GeneratedAt); err != nil {
			return fmt.Errorf("merging staged frequencies: %w", err)
		}
		return nil
	})
	return retryClass(err)
}

// retryClass marks errors the server will keep returning, such as missing
// privileges or bad SQL, as permanent so the exporter stops retrying them.
func retryClass(err error) error {
	if err != nil && !postgres.Retryable(err) {
		return resilience.Permanent(err)
	}
	return err
}
