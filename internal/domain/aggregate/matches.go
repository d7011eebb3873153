package aggregate

import (
	"math"
	"sort"

	"github.com/okian/cupstats/internal/domain/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the bin count used for the match goals distribution.
const HistogramBins = 15

// StageDistribution counts matches per stage, optionally for one stage.
func StageDistribution(ds *dataset.Dataset, stage Filter[string]) Result {
	rows := MatchesByStage(ds.Matches(), stage)
	if len(rows) == 0 {
		return Empty(LabelNoStageMatches)
	}
	counts := GroupCount(rows,
		func(m dataset.Match) (string, bool) { return nonBlank(m.Stage) },
		func(dataset.Match) bool { return true },
	)
	return Of(countTable("stage", "matches", counts), LabelNoStageMatches)
}

// MatchGoalHistogram bins total goals per match, optionally for one stage.
func MatchGoalHistogram(ds *dataset.Dataset, stage Filter[string]) Result {
	rows := MatchesByStage(ds.Matches(), stage)
	if len(rows) == 0 {
		return Empty(LabelNoStageMatches)
	}
	totals := make([]float64, len(rows))
	for i, m := range rows {
		totals[i] = m.TotalGoals()
	}
	goals := present(totals)
	if len(goals) == 0 {
		return Empty(LabelNoGoals)
	}
	sort.Float64s(goals)

	lo, hi := goals[0], goals[len(goals)-1]
	bins := HistogramBins
	if lo == hi {
		bins = 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// The last divider is exclusive in stat.Histogram.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, goals, nil)

	t := NewTable("bin_start", "bin_end", "matches")
	for i, c := range counts {
		t.Append(dividers[i], dividers[i+1], int(c))
	}
	return Result{Table: t}
}

// Attendance summary metric labels.
const (
	StatCount  = "count"
	StatMean   = "mean"
	StatMin    = "min"
	StatQ1     = "q1"
	StatMedian = "median"
	StatQ3     = "q3"
	StatMax    = "max"
)

// AttendanceView is the pair of tables behind the match attendance box plot.
type AttendanceView struct {
	Matches Result `json:"matches"`
	Summary Result `json:"summary"`
}

// MatchAttendance lists per-match attendance, optionally for one stage, with
// the five-number summary of the listed values. Matches without attendance
// are left out of both tables.
func MatchAttendance(ds *dataset.Dataset, stage Filter[string]) AttendanceView {
	rows := MatchesByStage(ds.Matches(), stage)
	t := NewTable("match_id", "year", "stage", "attendance")
	var values []float64
	for _, m := range rows {
		if math.IsNaN(m.Attendance) {
			continue
		}
		values = append(values, m.Attendance)
		t.Append(m.MatchID, m.Year, m.Stage, m.Attendance)
	}
	if len(values) == 0 {
		return AttendanceView{Matches: Empty(LabelNoStageAttendance), Summary: Empty(LabelNoStageAttendance)}
	}

	s := Summarize(values)
	summary := NewTable("metric", "value")
	summary.Append(StatCount, s.Count)
	summary.Append(StatMean, s.Mean)
	summary.Append(StatMin, s.Min)
	summary.Append(StatQ1, s.Q1)
	summary.Append(StatMedian, s.Median)
	summary.Append(StatQ3, s.Q3)
	summary.Append(StatMax, s.Max)
	return AttendanceView{Matches: Result{Table: t}, Summary: Result{Table: summary}}
}

// Edition match stat labels.
const (
	StatTotalMatches          = "total_matches"
	StatAvgGoalsPerMatch      = "avg_goals_per_match"
	StatAvgAttendancePerMatch = "avg_attendance_per_match"
)

// EditionMatchStats summarizes the matches of one edition (or all editions):
// match count, mean goals per match and mean attendance per match.
func EditionMatchStats(ds *dataset.Dataset, year Filter[int]) Result {
	rows := MatchesByYear(ds.Matches(), year)
	if len(rows) == 0 {
		return Empty(LabelNoEditionMatches)
	}
	goals := make([]float64, len(rows))
	attendance := make([]float64, len(rows))
	for i, m := range rows {
		goals[i] = m.TotalGoals()
		attendance[i] = m.Attendance
	}
	t := NewTable("metric", "value")
	t.Append(StatTotalMatches, len(rows))
	t.Append(StatAvgGoalsPerMatch, Mean(goals))
	t.Append(StatAvgAttendancePerMatch, Mean(attendance))
	return Result{Table: t}
}

// YearGoals is the per-edition aggregate of match goals.
type YearGoals struct {
	Year       int
	TotalGoals float64
	AvgGoals   float64
	Matches    int
}

// GroupGoalsByYear groups matches by year and aggregates total goals. Matches
// without a year are dropped; missing goals are skipped by the sum and mean
// but still count towards Matches. Output is ordered by year.
func GroupGoalsByYear(matches []dataset.Match) []YearGoals {
	byYear := make(map[int][]float64)
	for _, m := range matches {
		if m.Year == 0 {
			continue
		}
		byYear[m.Year] = append(byYear[m.Year], m.TotalGoals())
	}
	out := make([]YearGoals, 0, len(byYear))
	for y, goals := range byYear {
		out = append(out, YearGoals{Year: y, TotalGoals: Sum(goals), AvgGoals: Mean(goals), Matches: len(goals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// GoalsByYear reports total and mean goals per edition computed from matches.
func GoalsByYear(ds *dataset.Dataset, year Filter[int]) Result {
	var groups []YearGoals
	var totals []float64
	for _, g := range GroupGoalsByYear(ds.Matches()) {
		if year.Match(g.Year) {
			groups = append(groups, g)
			totals = append(totals, g.TotalGoals)
		}
	}
	if len(groups) == 0 || allMissing(totals) {
		return Empty(LabelNoGoals)
	}
	t := NewTable("year", "total_goals", "avg_goals", "matches")
	for _, g := range groups {
		t.Append(g.Year, g.TotalGoals, g.AvgGoals, g.Matches)
	}
	return Result{Table: t}
}

// MatchGoalSummary joins the per-year match goal aggregate with the editions
// on year (inner join) so mean goals per match can be correlated with the
// edition-level goal total. The year filter applies after the join.
func MatchGoalSummary(ds *dataset.Dataset, year Filter[int]) Result {
	editions := editionIndex(ds.Editions())
	var avg, scored []float64
	t := NewTable("year", "avg_goals", "matches", "goals_scored", "qualified_teams")
	for _, g := range GroupGoalsByYear(ds.Matches()) {
		e, ok := editions[g.Year]
		if !ok || !year.Match(g.Year) {
			continue
		}
		avg = append(avg, g.AvgGoals)
		scored = append(scored, e.GoalsScored)
		t.Append(g.Year, g.AvgGoals, g.Matches, e.GoalsScored, e.QualifiedTeams)
	}
	// Either side entirely missing leaves nothing to correlate.
	if t.Len() == 0 || allMissing(avg) || allMissing(scored) {
		return Empty(LabelNoCorrelation)
	}
	return Result{Table: t}
}

// YearMean is a per-year mean of a match column.
type YearMean struct {
	Year  int
	Value float64
}

// MeanAttendanceByYear averages match attendance per year, ordered by year.
// Years whose attendance is entirely missing carry NaN.
func MeanAttendanceByYear(matches []dataset.Match) []YearMean {
	byYear := make(map[int][]float64)
	for _, m := range matches {
		if m.Year == 0 {
			continue
		}
		byYear[m.Year] = append(byYear[m.Year], m.Attendance)
	}
	out := make([]YearMean, 0, len(byYear))
	for y, values := range byYear {
		out = append(out, YearMean{Year: y, Value: Mean(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
