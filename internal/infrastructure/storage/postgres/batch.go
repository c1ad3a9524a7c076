package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchQuery is one statement in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// Batcher sends multi-row writes for aggregates stored across several tables.
// It needs the transaction carried by ctx.
type Batcher struct {
	txManager *TxManager
}

// NewBatcher creates a batcher bound to a transaction manager.
func NewBatcher(txManager *TxManager) *Batcher {
	return &Batcher{txManager: txManager}
}

// Exec runs queries in a single round-trip.
func (b *Batcher) Exec(ctx context.Context, queries []BatchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("batch requires a transaction")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch query %d: %w", i, err)
		}
	}
	return nil
}
