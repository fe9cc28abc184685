package views

import (
	"lagoon/core"

	"github.com/shopspring/decimal"
)

// Position position view
type Position struct {
	core.Position
	Supplied decimal.Decimal `json:"supplied"`
	Borrowed decimal.Decimal `json:"borrowed"`
}
