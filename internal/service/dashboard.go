package service

import (
	"fmt"
	"sort"
	"time"

	"meditrack/internal/model"
)

// DoseStatus classifies one dose inside its display group.
type DoseStatus int

const (
	StatusPending DoseStatus = iota
	StatusCurrent
	StatusDone
)

// DoseView is a dose plus its display status.
type DoseView struct {
	model.DoseInstance
	Status DoseStatus
}

// DaysRemaining summarizes how much of a treatment is left.
type DaysRemaining struct {
	Continuous bool
	Days       int
}

func (d DaysRemaining) Label() string {
	switch {
	case d.Continuous:
		return "Continuous"
	case d.Days < 0:
		return "Finished"
	case d.Days == 0:
		return "Last day"
	case d.Days == 1:
		return "1 day remaining"
	default:
		return fmt.Sprintf("%d days remaining", d.Days)
	}
}

// DoseGroup is every displayed dose of one drug name, sorted by time.
// Remaining is computed from the drug's whole dose set, not just the
// displayed window.
type DoseGroup struct {
	Name      string
	Doses     []DoseView
	Remaining DaysRemaining
}

// Progress counts completed doses in a window.
type Progress struct {
	Done  int
	Total int
}

// Fraction is Done over Total, zero for an empty window.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Dashboard is the projection the UI renders on every tick.
type Dashboard struct {
	Today    []DoseGroup
	Upcoming []DoseGroup
	Progress Progress
}

// currentWindow is how far past its time a dose still counts as the one to
// act on now.
const currentWindow = time.Hour

// GroupForDisplay classifies the full dose set at a reference instant.
// Doses group by drug name, so separate treatment episodes of the same drug
// share a card. Recomputed from scratch on every call.
func GroupForDisplay(all []model.DoseInstance, ref time.Time) Dashboard {
	byName := make(map[string][]model.DoseInstance)
	var names []string
	for _, dose := range all {
		if _, ok := byName[dose.Name]; !ok {
			names = append(names, dose.Name)
		}
		byName[dose.Name] = append(byName[dose.Name], dose)
	}

	var dash Dashboard
	for _, name := range names {
		doses := byName[name]
		sort.SliceStable(doses, func(i, j int) bool {
			return doses[i].ScheduledAt.Before(doses[j].ScheduledAt)
		})

		views := classify(doses, ref)
		remaining := daysRemaining(doses, ref)

		var today, upcoming []DoseView
		for _, v := range views {
			switch {
			case sameDay(v.ScheduledAt, ref):
				today = append(today, v)
			case !v.IsDone && !v.ScheduledAt.Before(ref):
				upcoming = append(upcoming, v)
			}
		}

		if len(today) > 0 {
			dash.Today = append(dash.Today, DoseGroup{Name: name, Doses: today, Remaining: remaining})
			for _, v := range today {
				dash.Progress.Total++
				if v.IsDone {
					dash.Progress.Done++
				}
			}
		}
		if len(upcoming) > 0 {
			dash.Upcoming = append(dash.Upcoming, DoseGroup{Name: name, Doses: upcoming, Remaining: remaining})
		}
	}
	return dash
}

// classify marks each dose done, current or pending. At most one dose per
// group is current: the earliest not-done one no more than an hour past.
func classify(doses []model.DoseInstance, ref time.Time) []DoseView {
	views := make([]DoseView, 0, len(doses))
	currentTaken := false
	for _, dose := range doses {
		status := StatusPending
		switch {
		case dose.IsDone:
			status = StatusDone
		case !currentTaken && dose.ScheduledAt.After(ref.Add(-currentWindow)):
			status = StatusCurrent
			currentTaken = true
		}
		views = append(views, DoseView{DoseInstance: dose, Status: status})
	}
	return views
}

// daysRemaining measures whole days from the reference day to the day of the
// group's last dose. doses must be sorted ascending.
func daysRemaining(doses []model.DoseInstance, ref time.Time) DaysRemaining {
	if len(doses) == 0 {
		return DaysRemaining{}
	}
	if doses[0].Continuous() {
		return DaysRemaining{Continuous: true}
	}

	last := doses[len(doses)-1].ScheduledAt
	delta := int(startOfDay(last, ref.Location()).Sub(startOfDay(ref, ref.Location())).Hours() / 24)
	return DaysRemaining{Days: delta}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
