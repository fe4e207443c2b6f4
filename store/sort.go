package store

import (
	"slices"
	"strings"

	"folio/models"
)

// SortProjects orders projects newest first. Creation time comes from
// createdAt or, failing that, from the id (see models.Project.Timestamp).
// Projects without a usable time go last. Ties fall back to ascending id.
func SortProjects(projects []models.Project) {
	slices.SortStableFunc(projects, compareProjects)
}

func compareProjects(a, b models.Project) int {
	ta, okA := a.Timestamp()
	tb, okB := b.Timestamp()

	switch {
	case okA && okB:
		if c := tb.Compare(ta); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
