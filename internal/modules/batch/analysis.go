package batch

import (
	"fmt"
	"strings"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/pkg/formulas"
)

// summarize computes the aggregate statistics of the accepted games.
func summarize(games []domain.ScoredCombination, table *frequency.Table, drawsChecked int) domain.BatchSummary {
	summary := domain.BatchSummary{DrawsChecked: drawsChecked}
	if len(games) == 0 {
		return summary
	}

	scores := make([]float64, len(games))
	for i, g := range games {
		scores[i] = float64(g.ProbabilityScore)
		for q, v := range g.QuadrantAnalysis {
			summary.QuadrantTotals[q] += v
		}
		for _, n := range g.Numbers {
			p, err := table.Profile(n)
			if err != nil {
				continue
			}
			if p.Hot {
				summary.HotNumbers++
			}
			if p.Cold {
				summary.ColdNumbers++
			}
		}
	}

	summary.AverageScore = formulas.Round(formulas.Mean(scores), 1)
	summary.ScoreStdDev = formulas.Round(formulas.StdDev(scores), 1)
	return summary
}

// generalAnalysis renders the summary as text. The output depends only on its
// arguments.
func generalAnalysis(summary domain.BatchSummary, requested, accepted, relaxed int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generated %d of %d %s, each checked against %d past %s; none repeats a historical result.",
		accepted, requested, plural(requested, "combination"), summary.DrawsChecked, plural(summary.DrawsChecked, "draw"))

	if accepted > 0 {
		fmt.Fprintf(&b, " Average score %.1f (std dev %.1f).", summary.AverageScore, summary.ScoreStdDev)

		totals := make([]string, domain.QuadrantCount)
		for q, v := range summary.QuadrantTotals {
			totals[q] = fmt.Sprintf("%s %d", domain.Quadrant(q), v)
		}
		fmt.Fprintf(&b, " Quadrant totals: %s.", strings.Join(totals, ", "))
		fmt.Fprintf(&b, " Frequency mix: %d hot and %d cold %s.",
			summary.HotNumbers, summary.ColdNumbers, plural(summary.HotNumbers+summary.ColdNumbers, "pick"))
	}

	if relaxed > 0 {
		fmt.Fprintf(&b, " Parity balance was relaxed for %d %s.", relaxed, plural(relaxed, "game"))
	}
	if unmet := requested - accepted; unmet > 0 {
		fmt.Fprintf(&b, " %d %s could not be produced within the attempt budget.", unmet, plural(unmet, "combination"))
	}

	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
