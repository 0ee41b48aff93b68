package metrics

import (
	"math"

	"github.com/ternarybob/arbor"
)

// Calculator derives financial ratios from the resolved variable set.
// Ratios with missing inputs are omitted from the result, never zero-filled.
type Calculator struct {
	logger arbor.ILogger
}

// NewCalculator creates a new financial metrics calculator
func NewCalculator(logger arbor.ILogger) *Calculator {
	return &Calculator{logger: logger}
}

// Calculate computes every ratio whose inputs are present. Margins and
// returns are percentages; the rest are plain ratios. All values are
// rounded to 2 decimal places.
func (c *Calculator) Calculate(data map[string]float64) map[string]float64 {
	out := make(map[string]float64)

	get := func(key string) (float64, bool) {
		v, ok := data[key]
		return v, ok
	}
	put := func(key string, value float64) {
		out[key] = math.Round(value*100) / 100
	}

	revenue, hasRevenue := get("revenue")
	netIncome, hasNetIncome := get("net_income")
	totalAssets, hasTotalAssets := get("total_assets")
	currentAssets, hasCurrentAssets := get("current_assets")
	currentLiabilities, hasCurrentLiabilities := get("current_liabilities")
	equity, hasEquity := get("shareholders_equity")
	totalDebt, hasTotalDebt := get("total_debt")

	// Profitability
	if hasRevenue && revenue != 0 {
		cogs, _ := get("cost_of_goods_sold")
		put("gross_profit_margin", (revenue-cogs)/revenue*100)

		if operatingIncome, ok := get("operating_income"); ok && operatingIncome != 0 {
			put("operating_profit_margin", operatingIncome/revenue*100)
		}
		if hasNetIncome && netIncome != 0 {
			put("net_profit_margin", netIncome/revenue*100)
		}
	}
	if hasNetIncome && netIncome != 0 {
		if hasTotalAssets && totalAssets != 0 {
			put("return_on_assets", netIncome/totalAssets*100)
		}
		if hasEquity && equity != 0 {
			put("return_on_equity", netIncome/equity*100)
		}
	}
	if operatingIncome, ok := get("operating_income"); ok && operatingIncome != 0 &&
		hasTotalAssets && hasCurrentLiabilities {
		investedCapital := totalAssets - currentLiabilities
		if investedCapital != 0 {
			// NOPAT approximated as operating income at an assumed 25% tax rate
			nopat := operatingIncome * 0.75
			put("return_on_invested_capital", nopat/investedCapital*100)
		}
	}

	// Liquidity
	if hasCurrentLiabilities && currentLiabilities != 0 {
		if hasCurrentAssets && currentAssets != 0 {
			put("current_ratio", currentAssets/currentLiabilities)

			inventory, _ := get("inventory")
			put("quick_ratio", (currentAssets-inventory)/currentLiabilities)
		}
		if cash, ok := get("cash"); ok && cash != 0 {
			put("cash_ratio", cash/currentLiabilities)
		}
	}
	if hasTotalAssets && totalAssets != 0 && hasCurrentAssets && hasCurrentLiabilities {
		put("working_capital_ratio", (currentAssets-currentLiabilities)/totalAssets)
	}

	// Leverage
	if hasTotalDebt && totalDebt != 0 {
		if hasEquity && equity != 0 {
			put("debt_to_equity", totalDebt/equity)
		}
		if hasTotalAssets && totalAssets != 0 {
			put("debt_ratio", totalDebt/totalAssets)
		}
	}

	// Efficiency
	if hasRevenue && revenue != 0 {
		if hasTotalAssets && totalAssets != 0 {
			put("asset_turnover", revenue/totalAssets)
		}
		if receivables, ok := get("accounts_receivable"); ok && receivables != 0 {
			put("receivables_turnover", revenue/receivables)
		}
	}
	if cogs, ok := get("cost_of_goods_sold"); ok && cogs != 0 {
		if inventory, ok := get("inventory"); ok && inventory != 0 {
			put("inventory_turnover", cogs/inventory)
		}
	}

	c.logger.Debug().
		Int("metrics", len(out)).
		Int("variables", len(data)).
		Msg("Calculated financial metrics")

	return out
}
