package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the user-visible report of one run.
type Summary struct {
	StartedAt     time.Time
	Duration      time.Duration
	SourcesOK     int
	SourcesFailed int
	FailedSources []string
	Fetched       int
	New           int
	Updated       int
	Scored        int
	High          int
	Good          int
	Skipped       int
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sources ok=%d failed=%d", s.SourcesOK, s.SourcesFailed)
	if len(s.FailedSources) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(s.FailedSources, ", "))
	}
	fmt.Fprintf(&b, "; records fetched=%d new=%d updated=%d scored=%d", s.Fetched, s.New, s.Updated, s.Scored)
	fmt.Fprintf(&b, "; buckets high=%d good=%d skipped=%d", s.High, s.Good, s.Skipped)
	fmt.Fprintf(&b, "; took %s", s.Duration.Round(time.Millisecond))
	return b.String()
}
