package repository

import (
	"context"

	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner implements service.TxRunner on a pgx pool. fn's repositories share
// one transaction, committed when fn returns nil and rolled back otherwise
// (including on panic).
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Chunks() service.ChunkRepositoryInterface {
	return NewChunkRepositoryWithTx(r.tx)
}

func (r txRepos) IndexJobs() service.IndexJobRepositoryInterface {
	return NewIndexJobRepositoryWithTx(r.tx)
}
