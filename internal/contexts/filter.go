package contexts

import "github.com/JaimeStill/lectern/internal/catalog"

// VisibleDocuments applies the filter engine to the catalog snapshot,
// preserving catalog order. In filtered mode every active facet is an
// independent AND-combined predicate; in all and manual modes only the
// hide-data-files flag applies.
func VisibleDocuments(
	docs []catalog.Document,
	facets *FacetState,
	mode Mode,
	hideDataFiles bool,
) []catalog.Document {
	visible := make([]catalog.Document, 0, len(docs))

	for _, d := range docs {
		if hideDataFiles && d.IsDataFile() {
			continue
		}
		if mode == ModeFiltered && !MatchesFacets(d, facets) {
			continue
		}
		visible = append(visible, d)
	}

	return visible
}

// MatchesFacets evaluates the filtered-mode facet predicate for one document.
// Inactive facets impose no constraint. Base documents (no student) always
// pass the student facet; every other facet requires the document to carry a
// selected value.
func MatchesFacets(d catalog.Document, facets *FacetState) bool {
	if facets.Active(FacetStudent) {
		if !d.IsBase() && !facets.Contains(FacetStudent, *d.StudentID) {
			return false
		}
	}

	if !matchesRef(facets, FacetSubject, d.SubjectID) {
		return false
	}
	if !matchesRef(facets, FacetClass, d.ClassID) {
		return false
	}
	if !matchesRef(facets, FacetAssignment, d.AssignmentID) {
		return false
	}

	if facets.Active(FacetDocumentType) {
		if !facets.Contains(FacetDocumentType, string(d.Type)) {
			return false
		}
	}

	return true
}

func matchesRef(facets *FacetState, facet Facet, ref *string) bool {
	if !facets.Active(facet) {
		return true
	}
	return ref != nil && facets.Contains(facet, *ref)
}

// ClassifyDocument computes the display state for one document. Override
// marks take precedence; otherwise a document owned by a student outside the
// non-empty selected-student set renders as no-intersection.
func ClassifyDocument(
	d catalog.Document,
	selectedStudents []string,
	tracker *Tracker,
) DisplayState {
	switch {
	case tracker.ForcedIncluded(d.ID):
		return DisplayOverrideIncluded
	case tracker.ForcedExcluded(d.ID):
		return DisplayOverrideExcluded
	}

	if len(selectedStudents) > 0 && !d.IsBase() {
		found := false
		for _, s := range selectedStudents {
			if s == *d.StudentID {
				found = true
				break
			}
		}
		if !found {
			return DisplayNoIntersection
		}
	}

	return DisplayNormal
}
