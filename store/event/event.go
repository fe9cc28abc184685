package event

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LedgerEvent{})
		if err := tx.AutoMigrate(core.LedgerEvent{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, event *core.LedgerEvent) error {
	return tx.Update().Create(event).Error
}

// Find returns an empty event when the trace is unknown, so callers can use
// a zero ID as the idempotency probe.
func (s *eventStore) Find(ctx context.Context, traceID string) (*core.LedgerEvent, error) {
	var event core.LedgerEvent
	if err := s.db.View().Where("trace_id = ?", traceID).First(&event).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.LedgerEvent{}, nil
		}

		return nil, err
	}

	return &event, nil
}

func (s *eventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.LedgerEvent, error) {
	var events []*core.LedgerEvent
	if err := s.db.View().
		Where("id > ?", fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByPool(ctx context.Context, poolID uint64, fromID uint64, limit int) ([]*core.LedgerEvent, error) {
	var events []*core.LedgerEvent
	if err := s.db.View().
		Where("pool_id = ? AND id > ?", poolID, fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByUser(ctx context.Context, poolID uint64, userID string, fromID uint64, limit int) ([]*core.LedgerEvent, error) {
	var events []*core.LedgerEvent
	if err := s.db.View().
		Where("pool_id = ? AND user_id = ? AND id > ?", poolID, userID, fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
