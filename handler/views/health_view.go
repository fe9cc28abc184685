package views

import (
	"lagoon/core"

	"github.com/shopspring/decimal"
)

// Health account health view
type Health struct {
	core.HealthSnapshot
	BorrowPowerUSD decimal.Decimal `json:"borrow_power_usd"`
	Liquidatable   bool            `json:"liquidatable"`
}
