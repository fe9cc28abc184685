package liquidation

import (
	"testing"

	"lagoon/core"
	"lagoon/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSeize(t *testing.T) {
	pool := &core.Pool{
		LiquidationBonus: number.Decimal("0.08"),
	}

	s := New()

	cases := map[string]struct {
		requestedRepay string
		currentDebt    string
		debtPrice      string
		collPrice      string
		collBalance    string

		wantRepay  string
		wantRefund string
		wantSeize  string
	}{
		"plain": {
			requestedRepay: "100", currentDebt: "1000",
			debtPrice: "1", collPrice: "2", collBalance: "1000",
			// 100 usd repaid, 108 usd seized at 2 usd a unit
			wantRepay: "100", wantRefund: "0", wantSeize: "54",
		},
		"repay capped at debt": {
			requestedRepay: "500", currentDebt: "200",
			debtPrice: "1", collPrice: "1", collBalance: "1000",
			wantRepay: "200", wantRefund: "300", wantSeize: "216",
		},
		"seize capped at balance": {
			requestedRepay: "100", currentDebt: "1000",
			debtPrice: "1", collPrice: "1", collBalance: "50",
			wantRepay: "100", wantRefund: "0", wantSeize: "50",
		},
		"cross price": {
			requestedRepay: "10", currentDebt: "100",
			debtPrice: "1800", collPrice: "30000", collBalance: "10",
			// 18000 usd repaid, 19440 usd of collateral at 30000
			wantRepay: "10", wantRefund: "0", wantSeize: "0.648",
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			plan, err := s.PlanSeize(pool,
				number.Decimal(c.requestedRepay),
				number.Decimal(c.currentDebt),
				number.Decimal(c.debtPrice),
				number.Decimal(c.collPrice),
				number.Decimal(c.collBalance),
			)
			require.NoError(t, err)

			assert.Equal(t, c.wantRepay, plan.RepayAmount.String())
			assert.Equal(t, c.wantRefund, plan.Refund.String())
			assert.Equal(t, c.wantSeize, plan.SeizeAmount.String())

			assert.Equal(t, number.Truncate(plan.RepayAmount.Mul(number.Decimal(c.debtPrice))).String(), plan.RepayUSD.String())
			assert.Equal(t, number.Truncate(plan.SeizeAmount.Mul(number.Decimal(c.collPrice))).String(), plan.SeizeUSD.String())
		})
	}
}

func TestPlanSeizeRejects(t *testing.T) {
	pool := &core.Pool{LiquidationBonus: number.Decimal("0.05")}
	s := New()

	t.Run("zero repay", func(t *testing.T) {
		_, err := s.PlanSeize(pool, number.Decimal("0"), number.Decimal("100"), number.Decimal("1"), number.Decimal("1"), number.Decimal("100"))
		assert.Equal(t, core.ErrZeroAmount, err)
	})

	t.Run("zero debt", func(t *testing.T) {
		_, err := s.PlanSeize(pool, number.Decimal("10"), number.Decimal("0"), number.Decimal("1"), number.Decimal("1"), number.Decimal("100"))
		assert.Equal(t, core.ErrZeroAmount, err)
	})

	t.Run("no debt price", func(t *testing.T) {
		_, err := s.PlanSeize(pool, number.Decimal("10"), number.Decimal("100"), number.Decimal("0"), number.Decimal("1"), number.Decimal("100"))
		assert.Equal(t, core.ErrPriceNotFound, err)
	})

	t.Run("no collateral price", func(t *testing.T) {
		_, err := s.PlanSeize(pool, number.Decimal("10"), number.Decimal("100"), number.Decimal("1"), number.Decimal("0"), number.Decimal("100"))
		assert.Equal(t, core.ErrPriceNotFound, err)
	})
}

func TestPlanSeizeBonusNeverShrinksValue(t *testing.T) {
	pool := &core.Pool{LiquidationBonus: number.Decimal("0.1")}
	s := New()

	plan, err := s.PlanSeize(pool, number.Decimal("77.7"), number.Decimal("200"), number.Decimal("3.14"), number.Decimal("0.5"), number.Decimal("100000"))
	require.NoError(t, err)

	// uncapped, the seized value must carry the full bonus over the repaid value
	assert.True(t, plan.SeizeUSD.GreaterThanOrEqual(plan.RepayUSD))
	want := number.Truncate(plan.RepayUSD.Mul(number.Decimal("1.1")))
	assert.Equal(t, want.String(), plan.SeizeUSD.String())
}
