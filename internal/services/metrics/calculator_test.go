package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fiscus/internal/common"
)

func TestCalculate(t *testing.T) {
	calc := NewCalculator(common.GetLogger())

	t.Run("full variable set yields full ratio set", func(t *testing.T) {
		data := map[string]float64{
			"revenue":             1000,
			"cost_of_goods_sold":  600,
			"operating_income":    200,
			"net_income":          150,
			"total_assets":        2000,
			"current_assets":      800,
			"current_liabilities": 400,
			"shareholders_equity": 1000,
			"total_debt":          600,
			"inventory":           300,
			"cash":                100,
			"accounts_receivable": 250,
		}

		out := calc.Calculate(data)

		assert.Equal(t, 40.0, out["gross_profit_margin"])
		assert.Equal(t, 20.0, out["operating_profit_margin"])
		assert.Equal(t, 15.0, out["net_profit_margin"])
		assert.Equal(t, 7.5, out["return_on_assets"])
		assert.Equal(t, 15.0, out["return_on_equity"])
		// NOPAT 150 over invested capital 1600
		assert.Equal(t, 9.38, out["return_on_invested_capital"])
		assert.Equal(t, 2.0, out["current_ratio"])
		assert.Equal(t, 1.25, out["quick_ratio"])
		assert.Equal(t, 0.25, out["cash_ratio"])
		assert.Equal(t, 0.2, out["working_capital_ratio"])
		assert.Equal(t, 0.6, out["debt_to_equity"])
		assert.Equal(t, 0.3, out["debt_ratio"])
		assert.Equal(t, 0.5, out["asset_turnover"])
		assert.Equal(t, 2.0, out["inventory_turnover"])
		assert.Equal(t, 4.0, out["receivables_turnover"])
	})

	t.Run("missing inputs omit ratios instead of zero-filling", func(t *testing.T) {
		out := calc.Calculate(map[string]float64{
			"revenue":    1000,
			"net_income": 150,
		})

		assert.Contains(t, out, "net_profit_margin")
		assert.NotContains(t, out, "return_on_assets")
		assert.NotContains(t, out, "current_ratio")
		assert.NotContains(t, out, "debt_to_equity")
	})

	t.Run("missing cogs treats gross margin as 100 percent", func(t *testing.T) {
		out := calc.Calculate(map[string]float64{"revenue": 500})
		assert.Equal(t, 100.0, out["gross_profit_margin"])
	})

	t.Run("zero denominators produce no ratios", func(t *testing.T) {
		out := calc.Calculate(map[string]float64{
			"revenue":             0,
			"net_income":          100,
			"total_assets":        0,
			"shareholders_equity": 0,
		})
		assert.Empty(t, out)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, calc.Calculate(nil))
	})
}

func TestMatchKeywords(t *testing.T) {
	computed := map[string]float64{
		"gross_profit_margin": 40,
		"net_profit_margin":   15,
		"current_ratio":       2,
		"debt_to_equity":      0.6,
		"return_on_equity":    15,
	}

	t.Run("margin question matches margin metrics", func(t *testing.T) {
		matched := MatchKeywords("What is the profit margin?", computed)
		require.NotEmpty(t, matched)
		assert.Contains(t, matched, "gross_profit_margin")
		assert.Contains(t, matched, "net_profit_margin")
	})

	t.Run("only computed metrics are returned", func(t *testing.T) {
		matched := MatchKeywords("How is liquidity?", computed)
		assert.Equal(t, []string{"current_ratio"}, matched)
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		matched := MatchKeywords("TELL ME ABOUT DEBT", computed)
		assert.Equal(t, []string{"debt_to_equity"}, matched)
	})

	t.Run("unrelated question matches nothing", func(t *testing.T) {
		assert.Empty(t, MatchKeywords("Who is the CEO?", computed))
	})

	t.Run("result is sorted and duplicate free", func(t *testing.T) {
		matched := MatchKeywords("profit margin and return on equity ratio", computed)
		seen := map[string]bool{}
		prev := ""
		for _, key := range matched {
			assert.False(t, seen[key], "duplicate key %s", key)
			seen[key] = true
			assert.Greater(t, key, prev)
			prev = key
		}
	})
}
