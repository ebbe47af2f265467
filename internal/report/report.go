// Package report assembles the markdown summary for a finished run.
package report

import (
	"fmt"
	"strings"

	"github.com/prosentry/prosentry/internal/database"
)

// Compose builds the full markdown report for one session. It works
// from the persisted records, so it renders the same whether the run
// just finished or is being reviewed weeks later.
func Compose(session *database.Session, results []database.Result, alerts []database.AlertRecord) string {
	if session == nil {
		return "No session data available."
	}

	var sections []string
	sections = append(sections, header(session, results))
	if len(results) > 0 {
		sections = append(sections, trajectory(results))
	}
	if len(alerts) > 0 {
		sections = append(sections, alertSection(alerts))
	}
	if recs := collectRecommendations(results); len(recs) > 0 {
		sections = append(sections, "## Recommended Actions\n\n"+strings.Join(recs, "\n"))
	}

	return strings.Join(sections, "\n\n---\n\n")
}

func header(session *database.Session, results []database.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session Report\n\n")
	fmt.Fprintf(&b, "- **Session:** %s\n", session.ID)
	fmt.Fprintf(&b, "- **Status:** %s\n", session.Status)
	fmt.Fprintf(&b, "- **Data source:** %s", session.DataSource)
	if session.FileName != nil && *session.FileName != "" {
		fmt.Fprintf(&b, " (%s)", *session.FileName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Started:** %s\n", session.StartTime)
	if session.EndTime != nil {
		fmt.Fprintf(&b, "- **Ended:** %s\n", *session.EndTime)
	}
	fmt.Fprintf(&b, "- **Steps processed:** %d of %d\n", len(results), session.TotalSteps)

	if peak, ok := peakResult(results); ok {
		fmt.Fprintf(&b, "- **Peak risk:** %d/100 (%s) at step %d\n",
			peak.RiskScore, peak.RiskLevel, peak.StepNumber+1)
	}
	return strings.TrimRight(b.String(), "\n")
}

func trajectory(results []database.Result) string {
	var b strings.Builder
	b.WriteString("## Risk Trajectory\n\n")
	b.WriteString("| Step | Time | Hours | Near Misses | Usage | Shift | Score | Level |\n")
	b.WriteString("|------|------|-------|-------------|-------|-------|-------|-------|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %d | %s | %.1f | %d | %s | %s | %d | %s |\n",
			r.StepNumber+1, r.Timestamp, r.WorkHours, r.NearMissCount,
			r.MachineUsage, r.ShiftType, r.RiskScore, r.RiskLevel)
	}

	if factors := dominantFactors(results); len(factors) > 0 {
		b.WriteString("\n**Dominant risk factors:**\n")
		for _, f := range factors {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func alertSection(alerts []database.AlertRecord) string {
	var b strings.Builder
	b.WriteString("## Alerts\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n**%s** (risk %d/100, %s)\n\n%s\n", a.Title, a.RiskScore, a.RiskLevel, a.Message)
		if a.AcknowledgedAt != nil {
			fmt.Fprintf(&b, "\nAcknowledged at %s.\n", *a.AcknowledgedAt)
		} else {
			b.WriteString("\nNot acknowledged.\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func peakResult(results []database.Result) (database.Result, bool) {
	if len(results) == 0 {
		return database.Result{}, false
	}
	peak := results[0]
	for _, r := range results[1:] {
		if r.RiskScore > peak.RiskScore {
			peak = r
		}
	}
	return peak, true
}

// dominantFactors returns the distinct factors seen across the run,
// most frequent first, capped at five.
func dominantFactors(results []database.Result) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range results {
		for _, f := range r.Factors {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}

	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if counts[order[j]] > counts[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	if len(order) > 5 {
		order = order[:5]
	}
	return order
}

// collectRecommendations gathers the distinct recommendations from
// the final third of the run, where the picture is most complete.
func collectRecommendations(results []database.Result) []string {
	start := len(results) * 2 / 3
	seen := make(map[string]bool)
	var recs []string
	for _, r := range results[start:] {
		for _, rec := range r.Recommendations {
			if !seen[rec] {
				seen[rec] = true
				recs = append(recs, "- "+rec)
			}
		}
	}
	return recs
}
