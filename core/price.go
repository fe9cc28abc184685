package core

import (
	"context"
	"time"

	"github.com/fox-one/msgpack"
	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/pandodao/blst"
	"github.com/shopspring/decimal"
)

// PriceTick is the latest accepted oracle price of one asset, USD per unit.
type PriceTick struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:price_asset_idx" json:"asset_id"`
	Symbol    string          `sql:"size:20" json:"symbol"`
	PriceUSD  decimal.Decimal `sql:"type:decimal(40,18)" json:"price_usd"`
	Time      time.Time       `json:"time"`
	Content   types.JSONText  `sql:"type:varchar(1024)" json:"content,omitempty"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CosiSignature aggregated feed signature with the bitmask of signers that
// participated.
type CosiSignature struct {
	Signature blst.Signature `json:"signature"`
	Mask      uint64         `json:"mask"`
}

// PriceData is one signed ticker as delivered by the oracle feed.
type PriceData struct {
	AssetID   string          `json:"asset_id" msgpack:"a"`
	Symbol    string          `json:"symbol" msgpack:"s"`
	Price     decimal.Decimal `json:"price" msgpack:"p"`
	Timestamp int64           `json:"timestamp" msgpack:"t"`
	Signature *CosiSignature  `json:"signature" msgpack:"-"`
}

// Payload is the byte string the feed signers actually signed: the ticker
// without its signature, msgpack encoded for a stable layout.
func (p *PriceData) Payload() []byte {
	bts, err := msgpack.Marshal(PriceData{
		AssetID:   p.AssetID,
		Symbol:    p.Symbol,
		Price:     p.Price,
		Timestamp: p.Timestamp,
	})
	if err != nil {
		return nil
	}

	return bts
}

// Verify checks the aggregated signature against the registered signers.
// At least threshold signers must be present in the mask.
func (p *PriceData) Verify(signers []*Signer, threshold uint8) bool {
	if p.Signature == nil {
		return false
	}

	var pubs []*blst.PublicKey
	for _, signer := range signers {
		if p.Signature.Mask&(0x1<<signer.Index) != 0 {
			pubs = append(pubs, signer.VerifyKey)
		}
	}

	return len(pubs) >= int(threshold) &&
		blst.AggregatePublicKeys(pubs).Verify(p.Payload(), &p.Signature.Signature)
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, tx *db.DB, tick *PriceTick) error
	Find(ctx context.Context, assetID string) (*PriceTick, error)
	All(ctx context.Context) ([]*PriceTick, error)
}

// IPriceOracleService oracle price service interface.
//
// GetPriceUSD reports the latest price and whether it is older than the
// stale threshold. Risk decisions must treat stale as a hard failure.
type IPriceOracleService interface {
	GetPriceUSD(ctx context.Context, assetID string) (decimal.Decimal, bool, error)
	SetStaleThreshold(ctx context.Context, d time.Duration) error
	StaleThreshold(ctx context.Context) time.Duration
	PullPriceTickers(ctx context.Context, t time.Time) ([]*PriceData, error)
}
