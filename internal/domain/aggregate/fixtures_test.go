package aggregate_test

import (
	"math"

	"github.com/okian/cupstats/internal/domain/dataset"
)

var nan = math.NaN()

func fixture() *dataset.Dataset {
	editions := []dataset.Edition{
		{Year: 1930, Country: "Uruguay", Winner: "Uruguay", RunnersUp: "Argentina", GoalsScored: 70, QualifiedTeams: 13, MatchesPlayed: 18, Attendance: 590549},
		{Year: 1934, Country: "Italy", Winner: "Italy", RunnersUp: "Czechoslovakia", GoalsScored: 70, QualifiedTeams: 16, MatchesPlayed: 17, Attendance: 363000},
		{Year: 1938, Country: "France", Winner: "Italy", RunnersUp: "Hungary", GoalsScored: 84, QualifiedTeams: 15, MatchesPlayed: 18, Attendance: 375700},
		{Year: 1950, Country: "Brazil", Winner: "Uruguay", RunnersUp: "Brazil", GoalsScored: 88, QualifiedTeams: 13, MatchesPlayed: 22, Attendance: nan},
	}
	matches := []dataset.Match{
		{Year: 1930, Stage: "Group 1", HomeGoals: 4, AwayGoals: 1, Attendance: 4444, MatchID: 1096},
		{Year: 1930, Stage: "Final", HomeGoals: 4, AwayGoals: 2, Attendance: 68346, MatchID: 1099},
		{Year: 1934, Stage: "Final", HomeGoals: 2, AwayGoals: 1, Attendance: 55000, MatchID: 1200},
		{Year: 1938, Stage: "Final", HomeGoals: 4, AwayGoals: 2, Attendance: nan, MatchID: 1300},
		{Year: 1938, Stage: "Semi-finals", HomeGoals: 2, AwayGoals: nan, Attendance: 33000, MatchID: 1301},
		{Year: 0, Stage: "Group 3", HomeGoals: 1, AwayGoals: 1, Attendance: 1000, MatchID: 0},
	}
	appearances := []dataset.Appearance{
		{MatchID: 1096, TeamInitials: "FRA", PlayerName: "Lucien LAURENT", Position: "", ShirtNumber: nan, Event: "G19'"},
		{MatchID: 1096, TeamInitials: "FRA", PlayerName: "Marcel LANGILLER", Position: "", Event: "G40'"},
		{MatchID: 1099, TeamInitials: "URU", PlayerName: "Pablo DORADO", Position: "", Event: "G12'"},
		{MatchID: 1099, TeamInitials: "URU", PlayerName: "Hector CASTRO", Position: "C", Event: "G89'"},
		{MatchID: 1099, TeamInitials: "ARG", PlayerName: "Guillermo STABILE", Position: "GK", Event: "G37'"},
		{MatchID: 1200, TeamInitials: "ITA", PlayerName: "Angelo SCHIAVIO", Position: "C", Event: "G95'"},
	}
	return dataset.New(editions, matches, appearances)
}
