package widgets

import (
	"sort"

	"github.com/mcd-community/handbook/internal/models"
)

// RankByID returns the rank with the given id.
func RankByID(ranks []models.Rank, id string) (models.Rank, bool) {
	for _, r := range ranks {
		if r.ID == id {
			return r, true
		}
	}
	return models.Rank{}, false
}

// RanksByBranch groups ranks by branch, each ordered by clearance. Ranks of
// equal clearance keep their definition order.
func RanksByBranch(ranks []models.Rank) map[string][]models.Rank {
	out := make(map[string][]models.Rank)
	for _, r := range ranks {
		out[r.Branch] = append(out[r.Branch], r)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Clearance < list[j].Clearance })
	}
	return out
}

// Branches returns the branch names in order of first appearance.
func Branches(ranks []models.Rank) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range ranks {
		if _, ok := seen[r.Branch]; ok {
			continue
		}
		seen[r.Branch] = struct{}{}
		out = append(out, r.Branch)
	}
	return out
}
