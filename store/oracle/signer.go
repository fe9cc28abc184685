package oracle

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store/db"
)

type signerStore struct {
	db *db.DB
}

// New new oracle signer store
func New(db *db.DB) core.IOracleSignerStore {
	return &signerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.OracleSigner{})
		if err := tx.AutoMigrate(core.OracleSigner{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *signerStore) Save(ctx context.Context, signer *core.OracleSigner) error {
	var existing core.OracleSigner
	return s.db.Update().
		Where("`index` = ?", signer.Index).
		Assign(core.OracleSigner{
			Index:     signer.Index,
			Name:      signer.Name,
			PublicKey: signer.PublicKey,
		}).
		FirstOrCreate(&existing).Error
}

func (s *signerStore) Delete(ctx context.Context, index uint64) error {
	return s.db.Update().Where("`index` = ?", index).Delete(core.OracleSigner{}).Error
}

// FindAll returns signers ordered by index so signature masks line up.
func (s *signerStore) FindAll(ctx context.Context) ([]*core.OracleSigner, error) {
	var signers []*core.OracleSigner
	if err := s.db.View().Order("`index`").Find(&signers).Error; err != nil {
		return nil, err
	}

	return signers, nil
}
