package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lagoon/core"

	"github.com/fox-one/mixin-sdk-go"
	"github.com/shopspring/decimal"
)

// Config wallet service config
type Config struct {
	Pin string
}

type walletService struct {
	client *mixin.Client
	cfg    Config
}

// New new wallet service over the custody dapp client
func New(client *mixin.Client, cfg Config) core.IWalletService {
	return &walletService{client: client, cfg: cfg}
}

// HandleTransfer pays one pending transfer out. The trace id makes the call
// idempotent on the external ledger, so resending after a crash is safe.
func (s *walletService) HandleTransfer(ctx context.Context, transfer *core.Transfer) error {
	input := &mixin.TransferInput{
		AssetID:    transfer.AssetID,
		OpponentID: transfer.OpponentID,
		Amount:     transfer.Amount,
		TraceID:    transfer.TraceID,
		Memo:       transfer.Memo,
	}

	_, err := s.client.Transfer(ctx, input, s.cfg.Pin)
	return err
}

func (s *walletService) PullSnapshots(ctx context.Context, offset time.Time, limit int) ([]*core.Snapshot, time.Time, error) {
	if offset.IsZero() {
		offset = time.Now().UTC()
	}

	snapshots, err := s.client.ReadNetworkSnapshots(ctx, "", offset, "ASC", limit)
	if err != nil {
		return nil, offset, err
	}

	out := make([]*core.Snapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		out = append(out, &core.Snapshot{
			SnapshotID: snapshot.SnapshotID,
			OpponentID: snapshot.OpponentID,
			AssetID:    snapshot.AssetID,
			Amount:     snapshot.Amount,
			Memo:       snapshot.Memo,
			CreatedAt:  snapshot.CreatedAt,
		})
		offset = snapshot.CreatedAt
	}

	return out, offset, nil
}

// PaySchemaURL builds the wallet deep link for a deposit.
func PaySchemaURL(amount decimal.Decimal, asset, recipient, trace, memo string) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) || asset == "" || recipient == "" || trace == "" {
		return "", errors.New("invalid parameters")
	}

	return fmt.Sprintf("mixin://pay?amount=%s&asset=%s&recipient=%s&trace=%s&memo=%s", amount.String(), asset, recipient, trace, memo), nil
}
