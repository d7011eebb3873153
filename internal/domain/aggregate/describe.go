package aggregate

import (
	"sort"

	"github.com/okian/cupstats/internal/domain/dataset"
)

// ColumnSummary describes one numeric column of a dataset.
type ColumnSummary struct {
	Dataset string
	Column  string
	Summary
}

// Descriptive bundles per-column summaries with the custom per-edition tables.
type Descriptive struct {
	Columns []ColumnSummary
	// GoalsPerEdition is the sum of match goals per year.
	GoalsPerEdition []YearMean
	// AttendancePerMatch is the mean match attendance per year.
	AttendancePerMatch []YearMean
	// PlayersPerEdition is the distinct-players-per-match total per year.
	PlayersPerEdition []YearMean
}

// Dataset names used in descriptive output.
const (
	DatasetEditions    = "WorldCups"
	DatasetMatches     = "WorldCupMatches"
	DatasetAppearances = "WorldCupPlayers"
)

// Describe computes descriptive statistics for every numeric column of the
// three datasets plus the custom per-edition aggregates.
func Describe(ds *dataset.Dataset) Descriptive {
	editions := ds.Editions()
	matches := ds.Matches()
	appearances := ds.Appearances()

	col := func(n int, get func(int) float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = get(i)
		}
		return out
	}

	var d Descriptive
	add := func(set, name string, values []float64) {
		d.Columns = append(d.Columns, ColumnSummary{Dataset: set, Column: name, Summary: Summarize(values)})
	}

	add(DatasetEditions, "Year", col(len(editions), func(i int) float64 { return float64(editions[i].Year) }))
	add(DatasetEditions, "GoalsScored", col(len(editions), func(i int) float64 { return editions[i].GoalsScored }))
	add(DatasetEditions, "QualifiedTeams", col(len(editions), func(i int) float64 { return editions[i].QualifiedTeams }))
	add(DatasetEditions, "MatchesPlayed", col(len(editions), func(i int) float64 { return editions[i].MatchesPlayed }))
	add(DatasetEditions, "Attendance", col(len(editions), func(i int) float64 { return editions[i].Attendance }))

	add(DatasetMatches, "Home Team Goals", col(len(matches), func(i int) float64 { return matches[i].HomeGoals }))
	add(DatasetMatches, "Away Team Goals", col(len(matches), func(i int) float64 { return matches[i].AwayGoals }))
	add(DatasetMatches, "Attendance", col(len(matches), func(i int) float64 { return matches[i].Attendance }))

	add(DatasetAppearances, "Shirt Number", col(len(appearances), func(i int) float64 { return appearances[i].ShirtNumber }))

	for _, g := range GroupGoalsByYear(matches) {
		d.GoalsPerEdition = append(d.GoalsPerEdition, YearMean{Year: g.Year, Value: g.TotalGoals})
	}
	d.AttendancePerMatch = MeanAttendanceByYear(matches)
	d.PlayersPerEdition = PlayersPerEdition(ds)
	return d
}

func sortedYearMeans(byYear map[int]float64) []YearMean {
	out := make([]YearMean, 0, len(byYear))
	for y, v := range byYear {
		out = append(out, YearMean{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
