// Package report renders detection results and system status as plain text
// for the CLI and for notification messages.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// RenderOpportunities formats a result set, one block per opportunity.
func RenderOpportunities(opps []domain.Opportunity) string {
	if len(opps) == 0 {
		return "no opportunities found\n"
	}

	var b strings.Builder
	for i, opp := range opps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderOpportunity(opp))
	}
	return b.String()
}

func renderOpportunity(opp domain.Opportunity) string {
	var b strings.Builder

	header := fmt.Sprintf("[%s] %s %s", opp.Category, opp.EventID, opp.Market)
	if opp.Player != "" {
		header += " " + opp.Player
	}
	b.WriteString(header + "\n")

	if opp.Category.IsMiddle() {
		fmt.Fprintf(&b, "  gap %.1f  window prob %.1f%%  EV %+.2f (%.2f%%)\n",
			opp.Gap, opp.MiddleProb*100, opp.EV, opp.EVPercent*100)
		fmt.Fprintf(&b, "  both win %+.2f  worst case %+.2f  total stake %.2f\n",
			opp.BothWinProfit, opp.WorstCaseLoss, opp.TotalStake)
	} else {
		fmt.Fprintf(&b, "  margin %.2f%%  guaranteed profit %+.2f on stake %.2f\n",
			opp.Margin*100, opp.GuaranteedProfit, opp.TotalStake)
	}

	for _, leg := range opp.Legs {
		o := leg.Observation
		line := ""
		if o.Line != 0 {
			line = fmt.Sprintf(" %+.1f", o.Line)
		}
		fmt.Fprintf(&b, "  %-5s%s @ %.3f  %s/%s  stake %.2f\n",
			o.Side, line, o.Price, o.Source, o.Provider, leg.Stake)
	}
	return b.String()
}

// RenderStatus formats stored-data counts, per-source poll state, and the
// latest run summaries.
func RenderStatus(events, latestPrices, historyRows int64, sources []domain.SourcePollState, runs []domain.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "events: %d   latest prices: %d   history rows: %d\n\n", events, latestPrices, historyRows)

	b.WriteString("sources:\n")
	if len(sources) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, src := range sources {
		fmt.Fprintf(&b, "  %-12s %-16s calls %d (lifetime %d)",
			src.Source, src.Status, src.CallsThisWindow, src.LifetimeCalls)
		if !src.LastPollAt.IsZero() {
			fmt.Fprintf(&b, "  last poll %s", src.LastPollAt.UTC().Format(time.RFC3339))
			if !src.LastPollSuccess && src.LastError != "" {
				fmt.Fprintf(&b, "  error: %s", src.LastError)
			}
		}
		if src.Status == domain.PollQuotaExhausted {
			fmt.Fprintf(&b, "  resets %s", src.QuotaResetAt.UTC().Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	if len(runs) > 0 {
		b.WriteString("\nlast detection runs:\n")
		for _, r := range runs {
			fmt.Fprintf(&b, "  %-22s %3d found  at %s\n",
				r.Category, r.Count, r.RunAt.UTC().Format(time.RFC3339))
		}
	}

	return b.String()
}
