// Package report renders a team's record distribution as plain text.
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
)

// Write prints the nonzero records of dist in sorted order, then every
// tie-free split of weeks games including the ones that never happened,
// then the win summary.
func Write(w io.Writer, team model.Team, dist record.Distribution, weeks int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "%s\n", heading(team))
	fmt.Fprintln(tw, "all nonzero records:")
	for _, c := range dist.Records() {
		fmt.Fprintf(tw, "  %s\t%s\t\n", c.Record, count(c.Count))
	}
	fmt.Fprintln(tw, "all win/loss records without ties:")
	for _, c := range dist.Completeness(weeks) {
		fmt.Fprintf(tw, "  %s\t%s\t\n", c.Record, count(c.Count))
	}

	s := record.Summarize(dist)
	fmt.Fprintf(tw, "expected wins: %.2f ± %.2f over %s schedules (min %d, max %d)\n\n",
		s.MeanWins, s.StdDevWins, count(s.Schedules), s.MinWins, s.MaxWins)

	return tw.Flush()
}

// WriteFailure prints a one-line notice for a team that did not finish.
func WriteFailure(w io.Writer, team model.Team, cause error) error {
	_, err := fmt.Fprintf(w, "%s\nfailed: %v\n\n", heading(team), cause)
	return err
}

func heading(team model.Team) string {
	switch {
	case team.Name != "" && team.Manager != "":
		return fmt.Sprintf("%s (%s, managed by %s)", team.Name, team.ID, team.Manager)
	case team.Name != "":
		return fmt.Sprintf("%s (%s)", team.Name, team.ID)
	default:
		return string(team.ID)
	}
}

func count(n uint64) string {
	if n > math.MaxInt64 {
		return fmt.Sprintf("%d", n)
	}
	return humanize.Comma(int64(n))
}
