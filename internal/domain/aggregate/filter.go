package aggregate

import (
	"strings"

	"github.com/okian/cupstats/internal/domain/dataset"
)

// Filter selects rows whose key equals a value. The zero Filter matches
// everything.
type Filter[K comparable] struct {
	value K
	set   bool
}

// All returns the pass-through filter.
func All[K comparable]() Filter[K] { return Filter[K]{} }

// Equal returns a filter matching rows whose key equals v.
func Equal[K comparable](v K) Filter[K] { return Filter[K]{value: v, set: true} }

// Text builds a string filter; blank input means no filter.
func Text(v string) Filter[string] {
	v = strings.TrimSpace(v)
	if v == "" {
		return All[string]()
	}
	return Equal(v)
}

// Year builds a year filter; 0 means no filter.
func Year(y int) Filter[int] {
	if y == 0 {
		return All[int]()
	}
	return Equal(y)
}

// IsSet reports whether the filter constrains anything.
func (f Filter[K]) IsSet() bool { return f.set }

// Value returns the filter value and whether it is set.
func (f Filter[K]) Value() (K, bool) { return f.value, f.set }

// Match reports whether k passes the filter.
func (f Filter[K]) Match(k K) bool { return !f.set || f.value == k }

// By keeps the rows whose key passes f. Without a value the input slice is
// returned unchanged.
func By[R any, K comparable](rows []R, key func(R) K, f Filter[K]) []R {
	if !f.set {
		return rows
	}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if key(r) == f.value {
			out = append(out, r)
		}
	}
	return out
}

// EditionsByHost filters editions on host country.
func EditionsByHost(rows []dataset.Edition, host Filter[string]) []dataset.Edition {
	return By(rows, func(e dataset.Edition) string { return e.Country }, host)
}

// EditionsByYear filters editions on year.
func EditionsByYear(rows []dataset.Edition, year Filter[int]) []dataset.Edition {
	return By(rows, func(e dataset.Edition) int { return e.Year }, year)
}

// MatchesByStage filters matches on stage.
func MatchesByStage(rows []dataset.Match, stage Filter[string]) []dataset.Match {
	return By(rows, func(m dataset.Match) string { return m.Stage }, stage)
}

// MatchesByYear filters matches on edition year.
func MatchesByYear(rows []dataset.Match, year Filter[int]) []dataset.Match {
	return By(rows, func(m dataset.Match) int { return m.Year }, year)
}

// AppearancesByTeam filters appearances on team initials.
func AppearancesByTeam(rows []dataset.Appearance, team Filter[string]) []dataset.Appearance {
	return By(rows, func(a dataset.Appearance) string { return a.TeamInitials }, team)
}
