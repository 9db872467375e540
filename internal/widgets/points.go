package widgets

import (
	"sort"

	"github.com/mcd-community/handbook/internal/models"
)

// PointLine is one row of a point calculation.
type PointLine struct {
	Activity string `json:"activity"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Points   int    `json:"points"`
}

// PointTotal is the result of a point calculation.
type PointTotal struct {
	Lines   []PointLine `json:"lines"`
	Total   int         `json:"total"`
	Unknown []string    `json:"unknown,omitempty"`
}

// Calculate totals the points for counts keyed by activity id. Lines follow
// the activity table order; negative counts count as zero.
func Calculate(activities []models.Activity, counts map[string]int) PointTotal {
	out := PointTotal{Lines: []PointLine{}}
	known := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		known[a.ID] = struct{}{}
		n, ok := counts[a.ID]
		if !ok {
			continue
		}
		n = max(n, 0)
		line := PointLine{Activity: a.ID, Label: a.Label, Count: n, Points: n * a.Points}
		out.Lines = append(out.Lines, line)
		out.Total += line.Points
	}
	for id := range counts {
		if _, ok := known[id]; !ok {
			out.Unknown = append(out.Unknown, id)
		}
	}
	sort.Strings(out.Unknown)
	return out
}
