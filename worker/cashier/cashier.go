package cashier

import (
	"context"
	"errors"

	"lagoon/core"
	"lagoon/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config cashier config
type Config struct {
	Batch    int   `json:"batch" valid:"required"`
	Capacity int64 `json:"capacity" valid:"required"`
}

// Cashier pays pending transfers out to the external ledger.
type Cashier struct {
	worker.TickWorker
	db      *db.DB
	custody core.ICustodyStore
	wallet  core.IWalletService
	cfg     Config
}

// New new cashier
func New(
	db *db.DB,
	custody core.ICustodyStore,
	wallet core.IWalletService,
	cfg Config,
) *Cashier {
	return &Cashier{
		db:      db,
		custody: custody,
		wallet:  wallet,
		cfg:     cfg,
	}
}

// Run run worker
func (w *Cashier) Run(ctx context.Context) error {
	f := w.sync
	if w.cfg.Capacity > 1 {
		f = w.parallel(w.cfg.Capacity)
	}

	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx, f)
	})
}

func (w *Cashier) onWork(ctx context.Context, f func(context.Context, []*core.Transfer) error) error {
	log := logger.FromContext(ctx).WithField("worker", "cashier")

	transfers, err := w.custody.ListPendingTransfers(ctx, w.cfg.Batch)
	if err != nil {
		log.WithError(err).Errorln("list pending transfers")
		return err
	}

	if len(transfers) == 0 {
		return errors.New("EOF")
	}

	return f(ctx, transfers)
}

func (w *Cashier) sync(ctx context.Context, transfers []*core.Transfer) error {
	for _, transfer := range transfers {
		if err := w.handleTransfer(ctx, transfer); err != nil {
			return err
		}
	}

	return nil
}

func (w *Cashier) parallel(capacity int64) func(ctx context.Context, transfers []*core.Transfer) error {
	sem := semaphore.NewWeighted(capacity)

	return func(ctx context.Context, transfers []*core.Transfer) error {
		g := errgroup.Group{}

		for idx := range transfers {
			transfer := transfers[idx]

			if err := sem.Acquire(ctx, 1); err != nil {
				return g.Wait()
			}

			g.Go(func() error {
				defer sem.Release(1)
				return w.handleTransfer(ctx, transfer)
			})
		}

		return g.Wait()
	}
}

// handleTransfer pays one transfer and marks it handled. A crash between the
// two steps resends on the next tick; the trace id dedupes on the far side.
func (w *Cashier) handleTransfer(ctx context.Context, transfer *core.Transfer) error {
	log := logger.FromContext(ctx)

	if err := w.wallet.HandleTransfer(ctx, transfer); err != nil {
		log.WithError(err).Errorln("wallet.HandleTransfer:", transfer.TraceID)
		return err
	}

	return w.db.Tx(func(tx *db.DB) error {
		return w.custody.MarkTransferHandled(ctx, tx, transfer)
	})
}
