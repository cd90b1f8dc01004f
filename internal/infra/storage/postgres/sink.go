package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/validation"
)

// Sink persists accepted datasets into the candles table and their
// violation records alongside. Upsert semantics: re-submitting the same
// symbol/date overwrites, so re-runs converge instead of duplicating.
type Sink struct {
	db *DB
}

// NewSink creates a Postgres-backed sink.
func NewSink(db *DB) *Sink {
	return &Sink{db: db}
}

const upsertCandle = `
INSERT INTO candles (symbol, trade_date, open, high, low, close, adj_close, volume, fetched_at)
VALUES (:symbol, :trade_date, :open, :high, :low, :close, :adj_close, :volume, :fetched_at)
ON CONFLICT (symbol, trade_date) DO UPDATE SET
	open = EXCLUDED.open,
	high = EXCLUDED.high,
	low = EXCLUDED.low,
	close = EXCLUDED.close,
	adj_close = EXCLUDED.adj_close,
	volume = EXCLUDED.volume,
	fetched_at = EXCLUDED.fetched_at`

const insertViolation = `
INSERT INTO violations (symbol, pass, severity, code, row_index, message, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())`

type candleRow struct {
	Symbol    string  `db:"symbol"`
	TradeDate string  `db:"trade_date"`
	Open      float64 `db:"open"`
	High      float64 `db:"high"`
	Low       float64 `db:"low"`
	Close     float64 `db:"close"`
	AdjClose  float64 `db:"adj_close"`
	Volume    int64   `db:"volume"`
	FetchedAt string  `db:"fetched_at"`
}

// Submit writes the dataset and its report inside one transaction.
func (s *Sink) Submit(ctx context.Context, symbol string, ds *domain.Dataset, report *validation.Report) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fetchedAt := ds.FetchedAt.UTC().Format("2006-01-02 15:04:05")
	for _, c := range ds.Candles {
		row := candleRow{
			Symbol:    symbol,
			TradeDate: c.Date.Format("2006-01-02"),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			AdjClose:  c.AdjClose,
			Volume:    c.Volume,
			FetchedAt: fetchedAt,
		}
		if _, err := tx.NamedExecContext(ctx, upsertCandle, row); err != nil {
			return fmt.Errorf("upsert candle %s/%s: %w", symbol, row.TradeDate, err)
		}
	}

	if report != nil {
		for _, v := range report.Violations() {
			if _, err := tx.ExecContext(ctx, insertViolation,
				symbol, string(v.Pass), string(v.Severity), v.Code, v.Row, v.Message,
			); err != nil {
				return fmt.Errorf("insert violation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteBefore removes candles older than the cutoff date (yyyy-mm-dd).
func (s *Sink) DeleteBefore(ctx context.Context, cutoff string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candles WHERE trade_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete candles: %w", err)
	}
	return res.RowsAffected()
}
