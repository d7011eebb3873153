package aggregate

import (
	"github.com/okian/cupstats/internal/domain/dataset"
)

// PlayerEvents is the pair of tables behind the team view.
type PlayerEvents struct {
	Players   Result `json:"players"`
	Positions Result `json:"positions"`
}

// TeamPlayerEvents lists the players of a team (or all teams) and counts
// their events per position. Appearances without a position are left out of
// the position counts.
func TeamPlayerEvents(ds *dataset.Dataset, team Filter[string]) PlayerEvents {
	rows := AppearancesByTeam(ds.Appearances(), team)
	if len(rows) == 0 {
		return PlayerEvents{Players: Empty(LabelNoTeamPlayers), Positions: Empty(LabelNoEvents)}
	}

	players := NewTable("player_name", "team", "position", "shirt_number", "event")
	for _, a := range rows {
		players.Append(a.PlayerName, a.TeamInitials, a.Position, a.ShirtNumber, a.Event)
	}

	counts := GroupCount(rows,
		func(a dataset.Appearance) (string, bool) { return nonBlank(a.Position) },
		func(a dataset.Appearance) bool { return a.Event != "" },
	)
	return PlayerEvents{
		Players:   Result{Table: players},
		Positions: Of(countTable("position", "events", counts), LabelNoEvents),
	}
}

// PlayersPerEdition counts distinct players per match and sums those counts
// per edition year through the match join. Match rows repeated in the source
// contribute once per repetition.
func PlayersPerEdition(ds *dataset.Dataset) []YearMean {
	perMatch := make(map[int64]map[string]struct{})
	for _, a := range ds.Appearances() {
		if a.MatchID == 0 {
			continue
		}
		names, ok := perMatch[a.MatchID]
		if !ok {
			names = make(map[string]struct{})
			perMatch[a.MatchID] = names
		}
		names[a.PlayerName] = struct{}{}
	}

	totals := make(map[int]float64)
	for _, m := range ds.Matches() {
		names, ok := perMatch[m.MatchID]
		if !ok || m.Year == 0 {
			continue
		}
		totals[m.Year] += float64(len(names))
	}
	return sortedYearMeans(totals)
}
