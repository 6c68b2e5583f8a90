package tools

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aldante1/mcp-todoist/internal/todoist"
)

// DefaultOverviewLimit is the per-bucket item limit when none is configured.
const DefaultOverviewLimit = 10

// Overview classifies tasks into the four daily buckets. Counts are the true
// bucket sizes before truncation; the slices hold at most the configured
// limit, highest priority first.
type Overview struct {
	AsOf time.Time

	Overdue        []todoist.Task
	Today          []todoist.Task
	Upcoming       []todoist.Task
	CompletedToday []todoist.Task

	OverdueCount        int
	TodayCount          int
	UpcomingCount       int
	CompletedTodayCount int
}

// IsEmpty reports whether every bucket is empty.
func (o *Overview) IsEmpty() bool {
	return o.OverdueCount == 0 && o.TodayCount == 0 && o.UpcomingCount == 0 && o.CompletedTodayCount == 0
}

// dueDay extracts the calendar day a task is due, at day granularity. The
// second return value is false when the task has no parseable due date; such
// tasks are excluded from every bucket rather than treated as errors.
func dueDay(task todoist.Task) (time.Time, bool) {
	if task.Due == nil {
		return time.Time{}, false
	}
	if task.Due.Date != "" {
		day, err := time.Parse("2006-01-02", task.Due.Date)
		if err == nil {
			return day, true
		}
	}
	if task.Due.Datetime != "" {
		ts, err := time.Parse(time.RFC3339, task.Due.Datetime)
		if err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// sortPriority returns the task's priority for ordering, defaulting absent or
// out-of-range values to 4 (lowest).
func sortPriority(task todoist.Task) int {
	if task.Priority < 1 || task.Priority > 4 {
		return 4
	}
	return task.Priority
}

// BuildOverview classifies the given tasks against the as-of date and applies
// per-bucket sorting and truncation. limit <= 0 falls back to the default.
func BuildOverview(tasks []todoist.Task, asOf time.Time, limit int) *Overview {
	if limit <= 0 {
		limit = DefaultOverviewLimit
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	weekOut := today.AddDate(0, 0, 7)

	o := &Overview{AsOf: today}
	for _, task := range tasks {
		day, ok := dueDay(task)
		if !ok {
			continue
		}
		switch {
		case task.IsCompleted:
			if day.Equal(today) {
				o.CompletedToday = append(o.CompletedToday, task)
			}
		case day.Before(today):
			o.Overdue = append(o.Overdue, task)
		case day.Equal(today):
			o.Today = append(o.Today, task)
		case day.After(today) && !day.After(weekOut):
			o.Upcoming = append(o.Upcoming, task)
		}
	}

	o.OverdueCount = len(o.Overdue)
	o.TodayCount = len(o.Today)
	o.UpcomingCount = len(o.Upcoming)
	o.CompletedTodayCount = len(o.CompletedToday)

	// Highest priority first; truncation after sorting keeps the most urgent
	// items. Completed-today stays in discovery order.
	for _, bucket := range []*[]todoist.Task{&o.Overdue, &o.Today, &o.Upcoming} {
		tasks := *bucket
		sort.SliceStable(tasks, func(i, j int) bool {
			return sortPriority(tasks[i]) < sortPriority(tasks[j])
		})
		if len(tasks) > limit {
			*bucket = tasks[:limit]
		}
	}
	if len(o.CompletedToday) > limit {
		o.CompletedToday = o.CompletedToday[:limit]
	}
	return o
}

// Render produces the sectioned human-readable report. Empty buckets are
// omitted; a fully empty overview renders a single all-caught-up message.
func (o *Overview) Render() string {
	if o.IsEmpty() {
		return fmt.Sprintf("Daily overview for %s: you're all caught up! Nothing overdue, due today, or coming up this week.",
			o.AsOf.Format("2006-01-02"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily overview for %s\n", o.AsOf.Format("2006-01-02"))

	writeBucket := func(name string, tasks []todoist.Task, total int) {
		if total == 0 {
			return
		}
		b.WriteString("\n")
		if total > len(tasks) {
			fmt.Fprintf(&b, "%s (%d, showing %d):\n", name, total, len(tasks))
		} else {
			fmt.Fprintf(&b, "%s (%d):\n", name, total)
		}
		for _, task := range tasks {
			b.WriteString(formatTaskLine(task))
			b.WriteString("\n")
		}
	}

	writeBucket("Overdue", o.Overdue, o.OverdueCount)
	writeBucket("Due today", o.Today, o.TodayCount)
	writeBucket("Upcoming (next 7 days)", o.Upcoming, o.UpcomingCount)
	writeBucket("Completed today", o.CompletedToday, o.CompletedTodayCount)

	return strings.TrimRight(b.String(), "\n")
}
