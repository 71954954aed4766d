package contexts

import "github.com/JaimeStill/lectern/internal/catalog"

// Tracker records per-document exceptions layered on top of filter results:
// the manual-mode inclusion set, the filtered/all exclusion set, and the two
// override display marks. The forced-included and forced-excluded sets stay
// disjoint after every toggle.
type Tracker struct {
	included       map[string]struct{}
	excluded       map[string]struct{}
	forcedIncluded map[string]struct{}
	forcedExcluded map[string]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset clears every set. Mode transitions call this: switching modes is a
// hard reset of override state, never preserved.
func (t *Tracker) Reset() {
	t.included = make(map[string]struct{})
	t.excluded = make(map[string]struct{})
	t.forcedIncluded = make(map[string]struct{})
	t.forcedExcluded = make(map[string]struct{})
}

// Included reports membership in the manual-mode inclusion set.
func (t *Tracker) Included(id string) bool {
	_, ok := t.included[id]
	return ok
}

// Excluded reports membership in the filtered/all exclusion set.
func (t *Tracker) Excluded(id string) bool {
	_, ok := t.excluded[id]
	return ok
}

// ForcedIncluded reports whether the document carries the included-despite-
// filters override mark.
func (t *Tracker) ForcedIncluded(id string) bool {
	_, ok := t.forcedIncluded[id]
	return ok
}

// ForcedExcluded reports whether the document carries the excluded-despite-
// filters override mark.
func (t *Tracker) ForcedExcluded(id string) bool {
	_, ok := t.forcedExcluded[id]
	return ok
}

// ToggleManual flips membership in the manual inclusion set. When including a
// document that the facet predicate would not have selected while the student
// facet is active, the forced-included mark is set as a display hint; manual
// mode never consults facets for visibility.
func (t *Tracker) ToggleManual(d catalog.Document, facets *FacetState) {
	if t.Included(d.ID) {
		delete(t.included, d.ID)
		delete(t.forcedIncluded, d.ID)
		delete(t.forcedExcluded, d.ID)
		return
	}

	t.included[d.ID] = struct{}{}
	if facets.Active(FacetStudent) && !MatchesFacets(d, facets) {
		t.forcedIncluded[d.ID] = struct{}{}
		delete(t.forcedExcluded, d.ID)
	}
}

// ToggleFiltered flips a document's effective selection in filtered/all mode.
// selected is the document's current resolved selection state. Including a
// document the facets would not have matched marks it forced-included;
// excluding a document the facets did match marks it forced-excluded.
func (t *Tracker) ToggleFiltered(d catalog.Document, facets *FacetState, selected bool) {
	if selected {
		t.excluded[d.ID] = struct{}{}
		delete(t.forcedIncluded, d.ID)
		if MatchesFacets(d, facets) {
			t.forcedExcluded[d.ID] = struct{}{}
		}
		return
	}

	delete(t.excluded, d.ID)
	delete(t.forcedExcluded, d.ID)
	if !MatchesFacets(d, facets) {
		t.forcedIncluded[d.ID] = struct{}{}
	}
}
