package views

import (
	"lagoon/core"

	"github.com/shopspring/decimal"
)

// Token token view
type Token struct {
	core.Token
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	BorrowRate      decimal.Decimal `json:"borrow_rate"`
	SupplyRate      decimal.Decimal `json:"supply_rate"`
	BorrowAPY       decimal.Decimal `json:"borrow_apy"`
	SupplyAPY       decimal.Decimal `json:"supply_apy"`
	PriceUSD        decimal.Decimal `json:"price_usd"`
}
