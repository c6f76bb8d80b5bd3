package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rickgao/polymarket-book/internal/database"
	"github.com/rickgao/polymarket-book/internal/display"
	"github.com/rickgao/polymarket-book/internal/metrics"
)

// Copier bulk-loads rows. *pgxpool.Pool satisfies it.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Config holds archive batching configuration.
type Config struct {
	BatchSize     int           // Rows per COPY (default: 500)
	FlushInterval time.Duration // Max time a row waits (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: time.Second,
	}
}

// Stats holds archive counters.
type Stats struct {
	Written int64
	Failed  int64
	Flushes int64
}

// sampleRow is one archived top-of-book observation.
type sampleRow struct {
	SampledAt time.Time
	AssetID   string
	Outcome   string
	BestBid   decimal.NullDecimal
	BestAsk   decimal.NullDecimal
	BidSize   decimal.NullDecimal
	AskSize   decimal.NullDecimal
	Status    string
}

// Archive is a display sink that batches rows into PostgreSQL.
type Archive struct {
	cfg       Config
	db        Copier
	logger    *slog.Logger
	sessionID uuid.UUID

	batch   []sampleRow
	batchMu sync.Mutex
	stats   Stats

	flushMu sync.Mutex
}

// NewArchive creates an archive writing to db.
func NewArchive(cfg Config, db Copier, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	id := uuid.New()
	return &Archive{
		cfg:       cfg,
		db:        db,
		logger:    logger.With("component", "archive", "session_id", id.String()),
		sessionID: id,
		batch:     make([]sampleRow, 0, cfg.BatchSize),
	}
}

// SessionID returns the id stamped on every row of this process.
func (a *Archive) SessionID() uuid.UUID {
	return a.sessionID
}

// Stats returns current counters.
func (a *Archive) Stats() Stats {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()
	return a.stats
}

// Render appends one row per book and flushes when the batch is full.
func (a *Archive) Render(ctx context.Context, f display.Frame) error {
	a.batchMu.Lock()
	for _, b := range f.Books {
		a.batch = append(a.batch, transform(f, b))
	}
	shouldFlush := len(a.batch) >= a.cfg.BatchSize
	a.batchMu.Unlock()

	if shouldFlush {
		a.flush(ctx)
	}
	return nil
}

// Run flushes on every interval until ctx is cancelled, then flushes
// whatever is left.
func (a *Archive) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	a.logger.Info("archive writer started",
		"batch_size", a.cfg.BatchSize,
		"flush_interval", a.cfg.FlushInterval,
	)

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			a.flush(final)
			cancel()
			a.logger.Info("archive writer stopped")
			return nil
		case <-ticker.C:
			a.flush(ctx)
		}
	}
}

// transform converts one displayed book to a row.
func transform(f display.Frame, b display.Book) sampleRow {
	row := sampleRow{
		SampledAt: f.SampledAt,
		AssetID:   b.Instrument.TokenID,
		Outcome:   b.Instrument.Outcome,
		BestBid:   b.BestBid,
		BestAsk:   b.BestAsk,
		Status:    f.Status,
	}
	if len(b.Bids) > 0 {
		row.BidSize = decimal.NewNullDecimal(b.Bids[0].Size)
	}
	if len(b.Asks) > 0 {
		row.AskSize = decimal.NewNullDecimal(b.Asks[0].Size)
	}
	return row
}

// flush writes the current batch with a single COPY.
func (a *Archive) flush(ctx context.Context) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.batchMu.Lock()
	if len(a.batch) == 0 {
		a.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := a.batch
	a.batch = make([]sampleRow, 0, a.cfg.BatchSize)
	a.batchMu.Unlock()

	start := time.Now()

	n, err := a.copyRows(ctx, batch)
	if err != nil {
		a.logger.Error("archive copy failed", "error", err, "count", len(batch))
		metrics.ArchiveRows.WithLabelValues("failed").Add(float64(len(batch)))
		a.batchMu.Lock()
		a.stats.Failed += int64(len(batch))
		a.batchMu.Unlock()
		return
	}

	metrics.ArchiveRows.WithLabelValues("written").Add(float64(n))
	a.batchMu.Lock()
	a.stats.Written += n
	a.stats.Flushes++
	a.batchMu.Unlock()

	a.logger.Debug("flushed book samples",
		"count", n,
		"duration", time.Since(start),
	)
}

func (a *Archive) copyRows(ctx context.Context, rows []sampleRow) (int64, error) {
	return a.db.CopyFrom(ctx,
		pgx.Identifier{database.Table},
		database.Columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				a.sessionID,
				r.SampledAt,
				r.AssetID,
				r.Outcome,
				r.BestBid,
				r.BestAsk,
				r.BidSize,
				r.AskSize,
				r.Status,
			}, nil
		}),
	)
}
