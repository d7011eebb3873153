// Package dataset holds the immutable tournament data the engines compute from.
//
// A Dataset is built once by a loader and shared read-only afterwards; every
// accessor hands out a copy so callers can never mutate the shared rows.
package dataset

import (
	"slices"
	"sort"
)

// Edition is one tournament edition. Numeric fields use NaN for missing values.
type Edition struct {
	Year           int
	Country        string
	Winner         string
	RunnersUp      string
	Third          string
	Fourth         string
	GoalsScored    float64
	QualifiedTeams float64
	MatchesPlayed  float64
	Attendance     float64
}

// Match is one played match. Year is 0 when the source row had no usable year.
type Match struct {
	Year         int
	Datetime     string
	Stage        string
	Stadium      string
	City         string
	HomeTeam     string
	AwayTeam     string
	HomeGoals    float64
	AwayGoals    float64
	Attendance   float64
	RoundID      int64
	MatchID      int64
	HomeInitials string
	AwayInitials string
}

// TotalGoals returns home plus away goals; NaN if either side is missing.
func (m Match) TotalGoals() float64 {
	return m.HomeGoals + m.AwayGoals
}

// Appearance is one player line in a match report.
type Appearance struct {
	RoundID      int64
	MatchID      int64
	TeamInitials string
	CoachName    string
	LineUp       string
	ShirtNumber  float64
	PlayerName   string
	Position     string
	Event        string
}

// Dataset is the process-lifetime, read-only data context.
type Dataset struct {
	editions    []Edition
	matches     []Match
	appearances []Appearance
}

// New builds a Dataset from already cleaned rows. Editions are ordered by year;
// the input slices are copied.
func New(editions []Edition, matches []Match, appearances []Appearance) *Dataset {
	e := slices.Clone(editions)
	sort.SliceStable(e, func(i, j int) bool { return e[i].Year < e[j].Year })
	return &Dataset{
		editions:    e,
		matches:     slices.Clone(matches),
		appearances: slices.Clone(appearances),
	}
}

// Editions returns a copy of the edition rows ordered by year.
func (d *Dataset) Editions() []Edition { return slices.Clone(d.editions) }

// Matches returns a copy of the match rows in source order.
func (d *Dataset) Matches() []Match { return slices.Clone(d.matches) }

// Appearances returns a copy of the appearance rows in source order.
func (d *Dataset) Appearances() []Appearance { return slices.Clone(d.appearances) }

// Counts reports row counts per dataset.
type Counts struct {
	Editions    int `json:"editions"`
	Matches     int `json:"matches"`
	Appearances int `json:"appearances"`
}

// Counts returns the number of rows held for each dataset.
func (d *Dataset) Counts() Counts {
	return Counts{
		Editions:    len(d.editions),
		Matches:     len(d.matches),
		Appearances: len(d.appearances),
	}
}

// Options lists the distinct selector values offered to clients.
type Options struct {
	Hosts  []string `json:"hosts"`
	Stages []string `json:"stages"`
	Teams  []string `json:"teams"`
	Years  []int    `json:"years"`
}

// Options returns the sorted distinct hosts, stages, teams and edition years.
func (d *Dataset) Options() Options {
	hosts := make([]string, 0, len(d.editions))
	years := make([]int, 0, len(d.editions))
	for _, e := range d.editions {
		if e.Country != "" {
			hosts = append(hosts, e.Country)
		}
		years = append(years, e.Year)
	}
	stages := make([]string, 0, len(d.matches))
	for _, m := range d.matches {
		stages = append(stages, m.Stage)
	}
	teams := make([]string, 0, len(d.appearances))
	for _, a := range d.appearances {
		teams = append(teams, a.TeamInitials)
	}
	return Options{
		Hosts:  distinct(hosts),
		Stages: distinct(stages),
		Teams:  distinct(teams),
		Years:  distinct(years),
	}
}

func distinct[T interface{ ~int | ~string }](in []T) []T {
	slices.Sort(in)
	return slices.Compact(in)
}
