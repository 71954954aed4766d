package contexts

import "github.com/JaimeStill/lectern/internal/catalog"

// Coverage reports, for one facet value, how many of the selected students
// own at least one document tagged with that value.
type Coverage struct {
	Total       int `json:"total"`
	WithDocs    int `json:"with_docs"`
	WithoutDocs int `json:"without_docs"`
}

// CoverageLevel classifies a Coverage for display coloring.
type CoverageLevel string

const (
	CoverageFull    CoverageLevel = "full"
	CoveragePartial CoverageLevel = "partial"
	CoverageNone    CoverageLevel = "none"
)

// Level classifies the coverage: full when every selected student has
// documents, none when none do, partial otherwise. A zero total carries no
// signal and classifies as full so the UI leaves the value unflagged.
func (c Coverage) Level() CoverageLevel {
	switch {
	case c.Total == 0, c.WithDocs == c.Total:
		return CoverageFull
	case c.WithDocs == 0:
		return CoverageNone
	}
	return CoveragePartial
}

// Intersections holds per-facet-value coverage for the three hierarchy
// facets, keyed by value identifier.
type Intersections struct {
	Subjects    map[string]Coverage `json:"subjects"`
	Classes     map[string]Coverage `json:"classes"`
	Assignments map[string]Coverage `json:"assignments"`
}

// ComputeIntersections calculates coverage for every subject, class, and
// assignment value appearing in the catalog, against the selected students.
// With no students selected the calculation is undefined by policy and every
// map comes back empty; callers apply no coloring in that case.
func ComputeIntersections(docs []catalog.Document, studentIDs []string) Intersections {
	result := Intersections{
		Subjects:    map[string]Coverage{},
		Classes:     map[string]Coverage{},
		Assignments: map[string]Coverage{},
	}

	if len(studentIDs) == 0 {
		return result
	}

	selected := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		selected[id] = true
	}
	total := len(selected)

	// owners[value] is the set of selected students owning a document
	// tagged with that facet value. Base documents count toward no student.
	subjects := map[string]map[string]bool{}
	classes := map[string]map[string]bool{}
	assignments := map[string]map[string]bool{}

	for _, d := range docs {
		tally(subjects, d.SubjectID, d.StudentID, selected)
		tally(classes, d.ClassID, d.StudentID, selected)
		tally(assignments, d.AssignmentID, d.StudentID, selected)
	}

	collect(result.Subjects, subjects, total)
	collect(result.Classes, classes, total)
	collect(result.Assignments, assignments, total)

	return result
}

func tally(
	owners map[string]map[string]bool,
	value *string,
	student *string,
	selected map[string]bool,
) {
	if value == nil {
		return
	}

	set, ok := owners[*value]
	if !ok {
		set = map[string]bool{}
		owners[*value] = set
	}

	if student != nil && selected[*student] {
		set[*student] = true
	}
}

func collect(dst map[string]Coverage, owners map[string]map[string]bool, total int) {
	for value, set := range owners {
		dst[value] = Coverage{
			Total:       total,
			WithDocs:    len(set),
			WithoutDocs: total - len(set),
		}
	}
}
