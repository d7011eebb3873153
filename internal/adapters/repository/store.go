// Package repository loads the tournament datasets from their backing store
// and cleans them into an immutable dataset.Dataset.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/cupstats/internal/domain/dataset"
)

// Store produces the dataset once at process start.
type Store interface {
	// Load reads and cleans all three record sets.
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Source column names as published in the CSV files.
const (
	colYear           = "Year"
	colCountry        = "Country"
	colWinner         = "Winner"
	colRunnersUp      = "Runners-Up"
	colThird          = "Third"
	colFourth         = "Fourth"
	colGoalsScored    = "GoalsScored"
	colQualifiedTeams = "QualifiedTeams"
	colMatchesPlayed  = "MatchesPlayed"
	colAttendance     = "Attendance"

	colDatetime     = "Datetime"
	colStage        = "Stage"
	colStadium      = "Stadium"
	colCity         = "City"
	colHomeTeam     = "Home Team Name"
	colAwayTeam     = "Away Team Name"
	colHomeGoals    = "Home Team Goals"
	colAwayGoals    = "Away Team Goals"
	colRoundID      = "RoundID"
	colMatchID      = "MatchID"
	colHomeInitials = "Home Team Initials"
	colAwayInitials = "Away Team Initials"

	colTeamInitials = "Team Initials"
	colCoachName    = "Coach Name"
	colLineUp       = "Line-up"
	colShirtNumber  = "Shirt Number"
	colPlayerName   = "Player Name"
	colPosition     = "Position"
	colEvent        = "Event"
)

// Columns each record set must provide.
var (
	requiredEditionColumns    = []string{colYear, colCountry, colWinner, colRunnersUp, colGoalsScored, colAttendance, colQualifiedTeams}
	requiredMatchColumns      = []string{colYear, colStage, colHomeGoals, colAwayGoals, colAttendance}
	requiredAppearanceColumns = []string{colPlayerName, colPosition, colShirtNumber, colEvent, colTeamInitials}
)

// record is one source row keyed by trimmed column name.
type record map[string]string

func (r record) get(column string) string {
	return strings.TrimSpace(r[column])
}

// requireColumns checks that every required column is present.
func requireColumns(set string, columns, required []string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[strings.TrimSpace(c)] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrMissingColumn, set, strings.Join(missing, ", "))
	}
	return nil
}

// cleanEditions drops rows without a usable year or host country.
func cleanEditions(records []record) []dataset.Edition {
	out := make([]dataset.Edition, 0, len(records))
	for _, r := range records {
		year, ok := dataset.ParseYear(r.get(colYear))
		country := r.get(colCountry)
		if !ok || country == "" {
			continue
		}
		out = append(out, dataset.Edition{
			Year:           year,
			Country:        country,
			Winner:         r.get(colWinner),
			RunnersUp:      r.get(colRunnersUp),
			Third:          r.get(colThird),
			Fourth:         r.get(colFourth),
			GoalsScored:    dataset.ParseNumber(r.get(colGoalsScored)),
			QualifiedTeams: dataset.ParseNumber(r.get(colQualifiedTeams)),
			MatchesPlayed:  dataset.ParseNumber(r.get(colMatchesPlayed)),
			Attendance:     dataset.ParseAttendance(r.get(colAttendance)),
		})
	}
	return out
}

// cleanMatches drops rows without a stage. A missing year is kept as 0.
func cleanMatches(records []record) []dataset.Match {
	out := make([]dataset.Match, 0, len(records))
	for _, r := range records {
		stage := r.get(colStage)
		if stage == "" {
			continue
		}
		year, _ := dataset.ParseYear(r.get(colYear))
		out = append(out, dataset.Match{
			Year:         year,
			Datetime:     r.get(colDatetime),
			Stage:        stage,
			Stadium:      r.get(colStadium),
			City:         r.get(colCity),
			HomeTeam:     r.get(colHomeTeam),
			AwayTeam:     r.get(colAwayTeam),
			HomeGoals:    dataset.ParseNumber(r.get(colHomeGoals)),
			AwayGoals:    dataset.ParseNumber(r.get(colAwayGoals)),
			Attendance:   dataset.ParseNumber(r.get(colAttendance)),
			RoundID:      dataset.ParseID(r.get(colRoundID)),
			MatchID:      dataset.ParseID(r.get(colMatchID)),
			HomeInitials: r.get(colHomeInitials),
			AwayInitials: r.get(colAwayInitials),
		})
	}
	return out
}

// cleanAppearances drops rows without a player, team or event and, when
// goalsOnly is set, rows whose event records no goal.
func cleanAppearances(records []record, goalsOnly bool) []dataset.Appearance {
	out := make([]dataset.Appearance, 0, len(records))
	for _, r := range records {
		name, team, event := r.get(colPlayerName), r.get(colTeamInitials), r.get(colEvent)
		if name == "" || team == "" || event == "" {
			continue
		}
		if goalsOnly && !dataset.HasGoalEvent(event) {
			continue
		}
		out = append(out, dataset.Appearance{
			RoundID:      dataset.ParseID(r.get(colRoundID)),
			MatchID:      dataset.ParseID(r.get(colMatchID)),
			TeamInitials: team,
			CoachName:    r.get(colCoachName),
			LineUp:       r.get(colLineUp),
			ShirtNumber:  dataset.ParseNumber(r.get(colShirtNumber)),
			PlayerName:   name,
			Position:     r.get(colPosition),
			Event:        event,
		})
	}
	return out
}
