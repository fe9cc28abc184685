package core

import (
	"context"
	"encoding/base64"

	"github.com/pandodao/blst"
)

// OracleSigner is a registered price feed signer.
type OracleSigner struct {
	ID        uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Index     uint64 `sql:"unique_index:signer_index_idx" json:"index"`
	Name      string `sql:"size:64" json:"name"`
	PublicKey string `sql:"size:256" json:"public_key"`
}

// Signer is the runtime form of an oracle signer with the decoded key.
type Signer struct {
	Index     uint64          `json:"index"`
	VerifyKey *blst.PublicKey `json:"verify_key"`
}

// Signer decodes the stored public key.
func (s *OracleSigner) Signer() (*Signer, error) {
	bts, err := base64.StdEncoding.DecodeString(s.PublicKey)
	if err != nil {
		return nil, err
	}

	pub := blst.PublicKey{}
	if err := pub.FromBytes(bts); err != nil {
		return nil, err
	}

	return &Signer{Index: s.Index, VerifyKey: &pub}, nil
}

// IOracleSignerStore oracle signer store interface
type IOracleSignerStore interface {
	Save(ctx context.Context, signer *OracleSigner) error
	Delete(ctx context.Context, index uint64) error
	FindAll(ctx context.Context) ([]*OracleSigner, error)
}
