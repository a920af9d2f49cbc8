package insights

import (
	"fmt"
	"math"
)

// MaxMessages caps each list the generator returns
const MaxMessages = 4

// Rule is one heuristic: when When holds, Message is emitted
type Rule struct {
	Name    string
	When    func(Stats) bool
	Message func(Stats) string
}

// Insights are observations, evaluated in order
var Insights = []Rule{
	{
		Name: "peak-period",
		When: func(s Stats) bool { return s.PeakHours > 0 },
		Message: func(s Stats) string {
			return fmt.Sprintf("Most time was logged in %s (%.2f h)", s.PeakPeriod, s.PeakHours)
		},
	},
	{
		Name: "total-logged",
		When: func(s Stats) bool { return s.TotalHours > 0 },
		Message: func(s Stats) string {
			return fmt.Sprintf("%.2f hours logged across %d %s this %s", s.TotalHours, s.Sessions, plural(s.Sessions, "session", "sessions"), s.Range)
		},
	},
	{
		Name: "weekday-share",
		When: func(s Stats) bool { return s.WeekdayHours+s.WeekendHours > 0 },
		Message: func(s Stats) string {
			return fmt.Sprintf("%.0f%% of tracked time was on weekdays", math.Round((1-s.WeekendShare())*100))
		},
	},
	{
		Name: "average-session",
		When: func(s Stats) bool { return s.Sessions > 0 },
		Message: func(s Stats) string {
			return fmt.Sprintf("Average session length is %.1f h", s.AverageSession)
		},
	},
	{
		Name: "in-progress",
		When: func(s Stats) bool { return s.OpenSessions > 0 },
		Message: func(s Stats) string {
			return fmt.Sprintf("%d %s currently in progress", s.OpenSessions, plural(s.OpenSessions, "session is", "sessions are"))
		},
	},
	{
		Name: "spread",
		When: func(s Stats) bool { return s.ActiveBuckets > 1 },
		Message: func(s Stats) string {
			return fmt.Sprintf("Work was spread across %d of %d periods", s.ActiveBuckets, s.Buckets)
		},
	},
}

// Recommendations are suggested actions, evaluated in order
var Recommendations = []Rule{
	{
		Name:    "no-data",
		When:    func(s Stats) bool { return s.Sessions == 0 },
		Message: func(Stats) string { return "Start a timer to see where the time goes" },
	},
	{
		Name: "short-sessions",
		When: func(s Stats) bool { return s.Sessions > 0 && s.AverageSession < 0.5 },
		Message: func(Stats) string {
			return "Sessions average under 30 minutes; try longer focus blocks"
		},
	},
	{
		Name: "scope-creep",
		When: func(s Stats) bool { return s.EstimateRatio() > 1.5 },
		Message: func(s Stats) string {
			return fmt.Sprintf("Tracked time is %.1fx the estimate; the scope may have grown", s.EstimateRatio())
		},
	},
	{
		Name: "weekend-work",
		When: func(s Stats) bool { return s.WeekendShare() > 0.3 },
		Message: func(Stats) string {
			return "More than 30% of time was logged on weekends; consider protecting rest days"
		},
	},
	{
		Name: "long-sessions",
		When: func(s Stats) bool { return s.LongestSession > 4 },
		Message: func(Stats) string {
			return "A session ran longer than 4 hours; schedule regular breaks"
		},
	},
}

// Evaluate returns the messages of the rules that hold, in order, capped at
// MaxMessages
func Evaluate(rules []Rule, s Stats) []string {
	out := make([]string, 0, MaxMessages)
	for _, r := range rules {
		if len(out) == MaxMessages {
			break
		}
		if r.When(s) {
			out = append(out, r.Message(s))
		}
	}
	return out
}

// Generate evaluates the default insight and recommendation tables
func Generate(s Stats) (insights []string, recommendations []string) {
	return Evaluate(Insights, s), Evaluate(Recommendations, s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
