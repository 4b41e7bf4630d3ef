package ingest

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/noticiando/rssingest/pkg/domain"
)

// Summary aggregates feed reports of a run
type Summary struct {
	Feeds       []FeedReport
	Total       domain.IngestionResult
	FailedFeeds int // feeds with a feed level error
}

// NewSummary totals the reports
func NewSummary(reports []FeedReport) Summary {
	s := Summary{Feeds: reports}
	for _, r := range reports {
		s.Total.Add(r.Result)
		if r.Err != nil {
			s.FailedFeeds++
		}
	}
	return s
}

// Print writes per-feed lines and totals. Colors follow color.NoColor.
func (s Summary) Print(w io.Writer) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range s.Feeds {
		if r.Err != nil && r.Result == (domain.IngestionResult{}) {
			fmt.Fprintf(w, "%s: %s\n", r.FeedURL, red("error: "+r.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%s: %s inserted", r.FeedURL, green(r.Result.Inserted))
		if r.Result.DuplicatesSkipped > 0 {
			fmt.Fprintf(w, ", %s duplicates skipped", yellow(r.Result.DuplicatesSkipped))
		}
		if r.Result.Failures > 0 {
			fmt.Fprintf(w, ", %s failures", red(r.Result.Failures))
		}
		if r.Err != nil {
			fmt.Fprintf(w, " (%s)", red(r.Err.Error()))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "total inserted: %s\n", green(s.Total.Inserted))
	if s.Total.DuplicatesSkipped > 0 {
		fmt.Fprintf(w, "total duplicates skipped: %s\n", yellow(s.Total.DuplicatesSkipped))
	}
	if s.Total.Failures > 0 {
		fmt.Fprintf(w, "total failures: %s\n", red(s.Total.Failures))
	}
	if s.FailedFeeds > 0 {
		fmt.Fprintf(w, "failed feeds: %s\n", red(s.FailedFeeds))
	}
}
