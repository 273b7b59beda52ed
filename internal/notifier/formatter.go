package notifier

import (
	"fmt"
	"strings"

	"TrendSentry/internal/model"
)

// FormatBuyEvent renders an executed entry for operator delivery.
func FormatBuyEvent(rec *model.CycleRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Bought %.8f at %.2f (notional %.2f)\n", rec.Quantity, rec.Price, rec.Notional))
	b.WriteString(fmt.Sprintf("Regime: %s (%s) | Winter: %v | Shadow leverage: %.1fx\n",
		rec.Regime.Regime, rec.Regime.Source, rec.IsWinter, rec.ShadowLeverage))
	b.WriteString(rec.Reason)
	return b.String()
}

// FormatSellEvent renders an executed exit with realized P/L.
func FormatSellEvent(rec *model.CycleRecord, entryPrice, profitLoss float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Sold %.8f at %.2f (entry %.2f, P/L %+.2f)\n",
		rec.Quantity, rec.Price, entryPrice, profitLoss))
	b.WriteString(fmt.Sprintf("Regime: %s (%s)\n", rec.Regime.Regime, rec.Regime.Source))
	b.WriteString(rec.Reason)
	return b.String()
}

// FormatErrorEvent renders a failed cycle.
func FormatErrorEvent(rec *model.CycleRecord) string {
	return fmt.Sprintf("Cycle %s failed: %s\n%s", rec.ID, rec.ErrorKind, rec.ErrorMsg)
}
