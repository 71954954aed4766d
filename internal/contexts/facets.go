package contexts

import "slices"

// FacetState holds the current selection for each facet. A nil selection
// means the facet is inactive (no constraint); a selection is never empty —
// setting an empty list collapses to nil so that "no filter" stays distinct
// from "filter matches nothing".
type FacetState struct {
	selections map[Facet][]string
}

// NewFacetState creates a FacetState with every facet inactive.
func NewFacetState() *FacetState {
	return &FacetState{selections: make(map[Facet][]string)}
}

// Set replaces the selection for a facet, deduplicating while preserving
// order. An empty or nil values list deactivates the facet.
func (f *FacetState) Set(facet Facet, values []string) {
	deduped := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(deduped, v) {
			deduped = append(deduped, v)
		}
	}

	if len(deduped) == 0 {
		delete(f.selections, facet)
		return
	}

	f.selections[facet] = deduped
}

// Get returns the ordered selection for a facet, or nil when inactive.
// The returned slice is a copy.
func (f *FacetState) Get(facet Facet) []string {
	sel, ok := f.selections[facet]
	if !ok {
		return nil
	}
	return slices.Clone(sel)
}

// Active reports whether the facet imposes a constraint.
func (f *FacetState) Active(facet Facet) bool {
	_, ok := f.selections[facet]
	return ok
}

// Contains reports whether value is selected under the facet.
func (f *FacetState) Contains(facet Facet, value string) bool {
	return slices.Contains(f.selections[facet], value)
}

// Clear deactivates a facet.
func (f *FacetState) Clear(facet Facet) {
	delete(f.selections, facet)
}

// Prune drops selected values no longer present in the facet's candidate
// domain. Invalid references are discarded silently; if nothing survives the
// facet collapses to inactive.
func (f *FacetState) Prune(facet Facet, domain []string) {
	sel, ok := f.selections[facet]
	if !ok {
		return
	}

	kept := sel[:0]
	for _, v := range sel {
		if slices.Contains(domain, v) {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		delete(f.selections, facet)
		return
	}

	f.selections[facet] = kept
}

// Reset deactivates every facet.
func (f *FacetState) Reset() {
	clear(f.selections)
}
