package keeper

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/worker"

	"github.com/fatih/structs"
	"github.com/fox-one/pkg/logger"
)

// Config keeper worker config
type Config struct {
	// Delay between ticks once the loop is healthy
	Delay       time.Duration
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// Keeper drives the liquidation scheduler. The loop itself stays dumb: scan,
// act, and on failure retry with exponential backoff until the next success.
type Keeper struct {
	keepers core.IKeeperService
	cfg     Config
}

// New new keeper worker
func New(keepers core.IKeeperService, cfg Config) *Keeper {
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}

	return &Keeper{keepers: keepers, cfg: cfg}
}

// Run run worker
func (w *Keeper) Run(ctx context.Context) error {
	attempt := 0
	dur := time.Millisecond
	timer := time.NewTimer(dur)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := w.onWork(ctx); err != nil {
				dur = worker.Backoff(w.cfg.BackoffBase, w.cfg.BackoffCap, attempt)
				attempt++
			} else {
				attempt = 0
				dur = w.cfg.Delay
			}
			timer.Reset(dur)
		}
	}
}

func (w *Keeper) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "keeper")

	candidates, err := w.keepers.CheckUpkeep(ctx, time.Now())
	if err != nil {
		log.WithError(err).Errorln("check upkeep")
		return err
	}

	if len(candidates) == 0 {
		return nil
	}

	run, err := w.keepers.PerformUpkeep(ctx, candidates)
	if err != nil {
		log.WithError(err).Errorln("perform upkeep")
		return err
	}

	log.WithFields(structs.Map(run)).Infoln("keeper run finished")
	return nil
}
