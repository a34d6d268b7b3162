package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Batch queues statements and sends them in one round-trip.
// Used for writing the derived costs of a whole quotation tree.
type Batch struct {
	batch pgx.Batch
	err   error
}

// Queue adds a squirrel statement. The first build error is kept and reported by Exec.
func (b *Batch) Queue(stmt squirrel.Sqlizer) {
	if b.err != nil {
		return
	}
	sql, args, err := stmt.ToSql()
	if err != nil {
		b.err = fmt.Errorf("build batch query: %w", err)
		return
	}
	b.batch.Queue(sql, args...)
}

// Len returns the number of queued statements.
func (b *Batch) Len() int {
	return b.batch.Len()
}

// ExecBatch sends b inside the transaction carried by ctx and checks each statement
// affected at least one row.
func (m *TxManager) ExecBatch(ctx context.Context, b *Batch) error {
	if b.err != nil {
		return b.err
	}
	if b.Len() == 0 {
		return nil
	}

	t := m.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("ExecBatch requires transaction context")
	}

	results := t.SendBatch(ctx, &b.batch)
	defer results.Close()

	for i := 0; i < b.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch query %d failed: %w", i, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBatchNoRows{Index: i}
		}
	}

	return nil
}

// ErrBatchNoRows reports a batched statement that matched no row.
type ErrBatchNoRows struct {
	Index int
}

func (e ErrBatchNoRows) Error() string {
	return fmt.Sprintf("batch query %d affected no rows", e.Index)
}
