package custody

import (
	"context"
	"testing"

	"lagoon/core"
	"lagoon/pkg/number"

	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustodyStore struct {
	accounts  map[string]*core.CustodyAccount
	transfers map[string]*core.Transfer
}

func newFakeCustodyStore() *fakeCustodyStore {
	return &fakeCustodyStore{
		accounts:  map[string]*core.CustodyAccount{},
		transfers: map[string]*core.Transfer{},
	}
}

func acctKey(userID, assetID string) string {
	return userID + "/" + assetID
}

func (s *fakeCustodyStore) FindAccount(ctx context.Context, userID, assetID string) (*core.CustodyAccount, error) {
	if account, ok := s.accounts[acctKey(userID, assetID)]; ok {
		copied := *account
		return &copied, nil
	}

	return &core.CustodyAccount{UserID: userID, AssetID: assetID}, nil
}

func (s *fakeCustodyStore) SaveAccount(ctx context.Context, tx *db.DB, account *core.CustodyAccount) error {
	copied := *account
	s.accounts[acctKey(account.UserID, account.AssetID)] = &copied
	return nil
}

func (s *fakeCustodyStore) CreateTransfer(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	if _, ok := s.transfers[transfer.TraceID]; ok {
		return nil
	}

	copied := *transfer
	s.transfers[transfer.TraceID] = &copied
	return nil
}

func (s *fakeCustodyStore) ListPendingTransfers(ctx context.Context, limit int) ([]*core.Transfer, error) {
	var out []*core.Transfer
	for _, transfer := range s.transfers {
		if transfer.Status == core.TransferStatusPending {
			out = append(out, transfer)
		}
	}

	return out, nil
}

func (s *fakeCustodyStore) MarkTransferHandled(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	transfer.Status = core.TransferStatusHandled
	s.transfers[transfer.TraceID] = transfer
	return nil
}

func (s *fakeCustodyStore) CreateDeposit(ctx context.Context, tx *db.DB, deposit *core.Deposit) (bool, error) {
	return true, nil
}

func TestDebit(t *testing.T) {
	ctx := context.Background()
	action := core.TransferAction{Source: core.ActionLend, PoolID: 1, FollowID: "trace-1"}

	t.Run("rejects zero amount", func(t *testing.T) {
		ledger := New(newFakeCustodyStore())

		err := ledger.Debit(ctx, nil, "alice", "eth", decimal.Zero, action)
		assert.Equal(t, core.ErrZeroAmount, err)
	})

	t.Run("rejects when the account never deposited", func(t *testing.T) {
		ledger := New(newFakeCustodyStore())

		err := ledger.Debit(ctx, nil, "alice", "eth", number.One, action)
		assert.Equal(t, core.ErrInsufficientBalance, err)
	})

	t.Run("rejects overdraft", func(t *testing.T) {
		store := newFakeCustodyStore()
		store.accounts[acctKey("alice", "eth")] = &core.CustodyAccount{
			UserID: "alice", AssetID: "eth", Balance: number.Decimal("2"),
		}
		ledger := New(store)

		err := ledger.Debit(ctx, nil, "alice", "eth", number.Decimal("3"), action)
		assert.Equal(t, core.ErrInsufficientBalance, err)
		assert.True(t, number.Decimal("2").Equal(store.accounts[acctKey("alice", "eth")].Balance))
	})

	t.Run("spends the balance", func(t *testing.T) {
		store := newFakeCustodyStore()
		store.accounts[acctKey("alice", "eth")] = &core.CustodyAccount{
			UserID: "alice", AssetID: "eth", Balance: number.Decimal("10"),
		}
		ledger := New(store)

		require.NoError(t, ledger.Debit(ctx, nil, "alice", "eth", number.Decimal("3"), action))
		assert.True(t, number.Decimal("7").Equal(store.accounts[acctKey("alice", "eth")].Balance))
	})
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	action := core.TransferAction{Source: core.ActionWithdraw, PoolID: 1, FollowID: "trace-9"}

	t.Run("rejects zero amount", func(t *testing.T) {
		ledger := New(newFakeCustodyStore())

		err := ledger.Credit(ctx, nil, "alice", "eth", decimal.Zero, action)
		assert.Equal(t, core.ErrZeroAmount, err)
	})

	t.Run("enqueues one pending transfer", func(t *testing.T) {
		store := newFakeCustodyStore()
		ledger := New(store)

		require.NoError(t, ledger.Credit(ctx, nil, "alice", "eth", number.Decimal("4"), action))

		trace := foxuuid.Modify(action.FollowID, "credit:eth")
		transfer, ok := store.transfers[trace]
		require.True(t, ok)
		assert.Equal(t, "alice", transfer.OpponentID)
		assert.Equal(t, "eth", transfer.AssetID)
		assert.True(t, number.Decimal("4").Equal(transfer.Amount))
		assert.Equal(t, core.TransferStatusPending, transfer.Status)

		decoded, err := core.DecodeTransferAction(transfer.Memo)
		require.NoError(t, err)
		assert.Equal(t, core.ActionWithdraw, decoded.Source)
		assert.Equal(t, uint64(1), decoded.PoolID)
		assert.Equal(t, "trace-9", decoded.FollowID)
	})

	t.Run("replays collapse onto one transfer", func(t *testing.T) {
		store := newFakeCustodyStore()
		ledger := New(store)

		require.NoError(t, ledger.Credit(ctx, nil, "alice", "eth", number.Decimal("4"), action))
		require.NoError(t, ledger.Credit(ctx, nil, "alice", "eth", number.Decimal("4"), action))
		assert.Len(t, store.transfers, 1)

		// a different asset under the same follow id is its own transfer
		require.NoError(t, ledger.Credit(ctx, nil, "alice", "usdc", number.Decimal("4"), action))
		assert.Len(t, store.transfers, 2)
	})
}
