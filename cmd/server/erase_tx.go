package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/tx"
)

const defaultEraseTxTimeout = 5 * time.Second

// eraseTx bounds account erasure to a single Postgres transaction with a deadline.
type eraseTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newEraseTx(db *sql.DB) *eraseTx {
	return &eraseTx{db: db}
}

func (t *eraseTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultEraseTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return tx.Run(ctx, t.db, fn)
}
