package accruer

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/worker"

	"github.com/fox-one/pkg/logger"
)

// Accruer keeps every token ledger current so that read paths and the
// keeper price positions against fresh indices even on quiet pools.
type Accruer struct {
	worker.TickWorker
	pools   core.IPoolStore
	tokens  core.ITokenStore
	lending core.ILendingService
}

// New new accruer
func New(
	pools core.IPoolStore,
	tokens core.ITokenStore,
	lending core.ILendingService,
	interval time.Duration,
) *Accruer {
	return &Accruer{
		TickWorker: worker.TickWorker{
			Delay:    interval,
			ErrDelay: interval,
		},
		pools:   pools,
		tokens:  tokens,
		lending: lending,
	}
}

// Run run worker
func (w *Accruer) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

// onWork accrues every token of every pool. A failed token is retried on
// the next tick; the sweep continues past it.
func (w *Accruer) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accruer")

	pools, err := w.pools.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("list pools")
		return err
	}

	now := time.Now()
	var lastErr error
	for _, pool := range pools {
		tokens, err := w.tokens.ListByPool(ctx, pool.ID)
		if err != nil {
			log.WithError(err).Errorln("list tokens:", pool.ID)
			lastErr = err
			continue
		}

		for _, token := range tokens {
			if err := w.lending.Accrue(ctx, pool.ID, token.AssetID, now); err != nil {
				log.WithError(err).Errorf("accrue %s in pool %d", token.Symbol, pool.ID)
				lastErr = err
			}
		}
	}

	return lastErr
}
