// Package contexts implements the document-context resolution domain for
// Lectern. A context session owns the transient selection state behind the
// chat view: facet filters with cascading dependent domains, per-student
// intersection coverage, selection modes, manual overrides, and the resolved
// document set handed to the chat consumer. State lives for one view and is
// never persisted.
package contexts

import "fmt"

// Facet names one of the five independent filter dimensions.
type Facet string

const (
	FacetStudent      Facet = "student"
	FacetSubject      Facet = "subject"
	FacetClass        Facet = "class"
	FacetAssignment   Facet = "assignment"
	FacetDocumentType Facet = "document_type"
)

// Facets lists every facet in cascade order.
func Facets() []Facet {
	return []Facet{
		FacetStudent,
		FacetSubject,
		FacetClass,
		FacetAssignment,
		FacetDocumentType,
	}
}

// ParseFacet validates a facet name from transport input.
func ParseFacet(s string) (Facet, error) {
	switch Facet(s) {
	case FacetStudent, FacetSubject, FacetClass, FacetAssignment, FacetDocumentType:
		return Facet(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFacet, s)
}

// Dependent returns the facet whose candidate domain is scoped by f, if any.
// Selecting subjects loads the class domain; selecting classes loads the
// assignment domain.
func (f Facet) Dependent() (Facet, bool) {
	switch f {
	case FacetSubject:
		return FacetClass, true
	case FacetClass:
		return FacetAssignment, true
	}
	return "", false
}

// Mode is the overall selection strategy governing how facets and overrides
// combine.
type Mode string

const (
	// ModeAll selects every browsable document; facets are ignored.
	ModeAll Mode = "all"
	// ModeFiltered selects documents matching every active facet.
	ModeFiltered Mode = "filtered"
	// ModeManual selects exactly the documents the user toggled on.
	ModeManual Mode = "manual"
)

// ParseMode validates a mode name from transport input.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeFiltered, ModeManual:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// DisplayState classifies how a document renders in the browse list.
// Override states take precedence over intersection states.
type DisplayState string

const (
	DisplayNormal           DisplayState = "normal"
	DisplayOverrideIncluded DisplayState = "override_included"
	DisplayOverrideExcluded DisplayState = "override_excluded"
	DisplayNoIntersection   DisplayState = "no_intersection"
)
