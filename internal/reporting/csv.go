package reporting

import (
	"fmt"
	"strings"

	"meeting-pick-lab/internal/domain"
)

// RenderCSV renders the per-pick detail table as a CSV string.
func RenderCSV(details []PickDetailRow) string {
	var sb strings.Builder

	sb.WriteString("meeting_date,ticker,ticker_raw,sentiment,acted,acted_reason,sector,")
	sb.WriteString("base_price,return_30d,excess_30d,return_90d,excess_90d\n")

	for _, d := range details {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%t,%s,%s,%s,%s,%s,%s,%s\n",
			domain.DateKey(d.MeetingDate),
			d.Ticker,
			d.TickerRaw,
			d.Sentiment,
			d.ActedOn,
			d.ActedReason,
			d.Sector,
			csvFloat(d.BasePrice),
			csvFloat(d.Return30),
			csvFloat(d.Excess30),
			csvFloat(d.Return90),
			csvFloat(d.Excess90),
		))
	}

	return sb.String()
}

// csvFloat formats a nullable value, empty cell when nil.
func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
