package aggregate

import (
	"github.com/okian/cupstats/internal/domain/dataset"
)

// EditionGoals lists goals scored per edition, optionally for one host.
func EditionGoals(ds *dataset.Dataset, host Filter[string]) Result {
	rows := EditionsByHost(ds.Editions(), host)
	goals := make([]float64, len(rows))
	for i, e := range rows {
		goals[i] = e.GoalsScored
	}
	if len(rows) == 0 || allMissing(goals) {
		return Empty(LabelNoHostEditions)
	}
	t := NewTable("year", "country", "goals_scored", "winner", "runners_up", "qualified_teams")
	for _, e := range rows {
		t.Append(e.Year, e.Country, e.GoalsScored, e.Winner, e.RunnersUp, e.QualifiedTeams)
	}
	return Result{Table: t}
}

// EditionAttendance lists total attendance per edition, optionally for one host.
func EditionAttendance(ds *dataset.Dataset, host Filter[string]) Result {
	rows := EditionsByHost(ds.Editions(), host)
	attendance := make([]float64, len(rows))
	for i, e := range rows {
		attendance[i] = e.Attendance
	}
	if len(rows) == 0 || allMissing(attendance) {
		return Empty(LabelNoHostAttendance)
	}
	t := NewTable("year", "attendance")
	for _, e := range rows {
		t.Append(e.Year, e.Attendance)
	}
	return Result{Table: t}
}

// Titles counts titles per winning country, optionally for one host.
func Titles(ds *dataset.Dataset, host Filter[string]) Result {
	rows := EditionsByHost(ds.Editions(), host)
	if len(rows) == 0 {
		return Empty(LabelNoHostTitles)
	}
	counts := GroupCount(rows,
		func(e dataset.Edition) (string, bool) { return nonBlank(e.Winner) },
		func(dataset.Edition) bool { return true },
	)
	return Of(countTable("country", "titles", counts), LabelNoTitles)
}

// Edition metric labels.
const (
	MetricGoals          = "goals"
	MetricAttendance     = "attendance"
	MetricQualifiedTeams = "qualified_teams"
)

// EditionMetrics extracts goals, attendance and qualified teams for one
// edition as a label/value table. An unknown year yields zeros rather than
// no-data; without a year the earliest edition is used.
func EditionMetrics(ds *dataset.Dataset, year Filter[int]) Result {
	rows := EditionsByYear(ds.Editions(), year)
	goals, attendance, teams := 0.0, 0.0, 0.0
	if len(rows) > 0 {
		goals, attendance, teams = rows[0].GoalsScored, rows[0].Attendance, rows[0].QualifiedTeams
	}
	t := NewTable("metric", "value")
	t.Append(MetricGoals, goals)
	t.Append(MetricAttendance, attendance)
	t.Append(MetricQualifiedTeams, teams)
	return Result{Table: t}
}

// editionIndex maps year to edition for joins.
func editionIndex(editions []dataset.Edition) map[int]dataset.Edition {
	idx := make(map[int]dataset.Edition, len(editions))
	for _, e := range editions {
		if _, dup := idx[e.Year]; !dup {
			idx[e.Year] = e
		}
	}
	return idx
}
