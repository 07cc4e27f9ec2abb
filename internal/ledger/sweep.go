// Package ledger computes allocation totals over inclusive day ranges.
//
// An entry covering [Start, End] contributes Allocation to every day d with
// Start <= d <= End. Ranges that share a boundary day overlap on that day.
package ledger

import (
	"sort"
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

const day = 24 * time.Hour

// Entry is an allocation active on every day of [Start, End].
type Entry struct {
	Start      time.Time
	End        time.Time
	Allocation int
}

// FromAssignments converts assignments into ledger entries.
func FromAssignments(assignments []domain.Assignment) []Entry {
	entries := make([]Entry, 0, len(assignments))
	for _, a := range assignments {
		entries = append(entries, Entry{
			Start:      domain.Day(a.StartDate),
			End:        domain.Day(a.EndDate),
			Allocation: a.AllocationPercentage,
		})
	}
	return entries
}

// Overlaps reports whether two inclusive ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

type event struct {
	at    time.Time
	delta int
}

// events builds the sweep events for entries clipped to [from, to].
// Each entry yields +allocation on its first day and -allocation on the day after its last.
func events(entries []Entry, from, to time.Time) []event {
	evs := make([]event, 0, 2*len(entries))
	for _, e := range entries {
		start, end := domain.Day(e.Start), domain.Day(e.End)
		if end.Before(start) || !Overlaps(start, end, from, to) {
			continue
		}
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		evs = append(evs, event{at: start, delta: e.Allocation}, event{at: end.Add(day), delta: -e.Allocation})
	}
	// departures first on a shared day: an entry ending the day before is no longer active
	sort.Slice(evs, func(i, j int) bool {
		if evs[i].at.Equal(evs[j].at) {
			return evs[i].delta < evs[j].delta
		}
		return evs[i].at.Before(evs[j].at)
	})
	return evs
}

// Peak returns the maximum summed allocation on any single day of [from, to].
func Peak(entries []Entry, from, to time.Time) int {
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return 0
	}
	running, peak := 0, 0
	for _, ev := range events(entries, from, to) {
		running += ev.delta
		if running > peak {
			peak = running
		}
	}
	return peak
}

// PeakWith returns the peak over the candidate's own range once the candidate is added.
func PeakWith(existing []Entry, candidate Entry) int {
	all := make([]Entry, 0, len(existing)+1)
	all = append(all, existing...)
	all = append(all, candidate)
	return Peak(all, candidate.Start, candidate.End)
}

// ActiveOn returns the summed allocation of entries covering the given day.
func ActiveOn(entries []Entry, on time.Time) int {
	d := domain.Day(on)
	total := 0
	for _, e := range entries {
		if Overlaps(domain.Day(e.Start), domain.Day(e.End), d, d) {
			total += e.Allocation
		}
	}
	return total
}

// Step is a maximal run of days over which the committed allocation is constant.
type Step struct {
	Start     time.Time
	End       time.Time
	Allocated int
}

// Timeline returns the committed allocation over [from, to] as contiguous steps.
func Timeline(entries []Entry, from, to time.Time) []Step {
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return nil
	}
	var steps []Step
	cursor, running := from, 0
	emit := func(until time.Time) {
		if !until.After(cursor) {
			return
		}
		last := until.Add(-day)
		if n := len(steps); n > 0 && steps[n-1].Allocated == running {
			steps[n-1].End = last
		} else {
			steps = append(steps, Step{Start: cursor, End: last, Allocated: running})
		}
		cursor = until
	}
	for _, ev := range events(entries, from, to) {
		emit(ev.at)
		running += ev.delta
	}
	emit(to.Add(day))
	return steps
}
