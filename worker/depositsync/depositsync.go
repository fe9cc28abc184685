package depositsync

import (
	"context"
	"errors"
	"time"

	"lagoon/core"
	"lagoon/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
)

const checkpointKey = "deposit_sync_checkpoint"

// Config deposit sync config
type Config struct {
	Batch int `json:"batch"`
}

// Sync mirrors inbound payments into custody accounts. The checkpoint only
// advances after a batch lands, and every snapshot is recorded under its
// unique id, so replays after a crash never double credit.
type Sync struct {
	worker.TickWorker
	db         *db.DB
	custody    core.ICustodyStore
	wallet     core.IWalletService
	properties property.Store
	cfg        Config
}

// New new deposit sync worker
func New(
	db *db.DB,
	custody core.ICustodyStore,
	wallet core.IWalletService,
	properties property.Store,
	cfg Config,
) *Sync {
	return &Sync{
		db:         db,
		custody:    custody,
		wallet:     wallet,
		properties: properties,
		cfg:        cfg,
	}
}

// Run run worker
func (w *Sync) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Sync) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "depositsync")

	v, err := w.properties.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	// a fresh deployment starts from now instead of replaying ledger history
	offset := v.Time()
	if offset.IsZero() {
		offset = time.Now().UTC()
	}

	snapshots, next, err := w.wallet.PullSnapshots(ctx, offset, w.cfg.Batch)
	if err != nil {
		log.WithError(err).Errorln("wallet.PullSnapshots")
		return err
	}

	if len(snapshots) == 0 {
		return errors.New("EOF")
	}

	for _, snapshot := range snapshots {
		if err := w.handleSnapshot(ctx, snapshot); err != nil {
			log.WithError(err).Errorln("handle snapshot:", snapshot.SnapshotID)
			return err
		}
	}

	if err := w.properties.Save(ctx, checkpointKey, next); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	return nil
}

func (w *Sync) handleSnapshot(ctx context.Context, snapshot *core.Snapshot) error {
	// outgoing payments and mints carry no depositor
	if !snapshot.Amount.IsPositive() || snapshot.OpponentID == "" {
		return nil
	}

	return w.db.Tx(func(tx *db.DB) error {
		created, err := w.custody.CreateDeposit(ctx, tx, &core.Deposit{
			SnapshotID: snapshot.SnapshotID,
			UserID:     snapshot.OpponentID,
			AssetID:    snapshot.AssetID,
			Amount:     snapshot.Amount,
			Memo:       snapshot.Memo,
			CreatedAt:  snapshot.CreatedAt,
		})
		if err != nil || !created {
			return err
		}

		account, err := w.custody.FindAccount(ctx, snapshot.OpponentID, snapshot.AssetID)
		if err != nil {
			return err
		}

		account.Balance = account.Balance.Add(snapshot.Amount)
		return w.custody.SaveAccount(ctx, tx, account)
	})
}
