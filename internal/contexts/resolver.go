package contexts

import (
	"fmt"

	"github.com/JaimeStill/lectern/internal/catalog"
	"github.com/JaimeStill/lectern/pkg/formatting"
)

// DocumentView is a browse-list entry: the catalog document plus its
// resolved selection and display classification.
type DocumentView struct {
	catalog.Document
	Visible  bool         `json:"visible"`
	Selected bool         `json:"selected"`
	Display  DisplayState `json:"display"`
}

// StatusState labels the selection summary projection.
type StatusState string

const (
	StatusUnavailable StatusState = "unavailable"
	StatusEmpty       StatusState = "empty"
	StatusPartial     StatusState = "partial"
	StatusAll         StatusState = "all"
)

// Status is the human-readable selection summary, recomputed on demand. It
// is a projection, not state: advisory only, even when empty.
type Status struct {
	State    StatusState `json:"state"`
	Selected int         `json:"selected"`
	Total    int         `json:"total"`
	Summary  string      `json:"summary"`
}

// SelectedDocumentIDs resolves the final ordered document set handed to the
// chat consumer. Computed fresh on every call, in catalog order, with no
// side effects: repeated calls without intervening mutation return identical
// lists. A degraded session resolves to an empty list.
func (s *Session) SelectedDocumentIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.documents))
	for _, d := range s.documents {
		if s.isSelectedLocked(d) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// isSelectedLocked evaluates one document's resolved selection under the
// current mode. Hidden data files are never selected in any mode.
func (s *Session) isSelectedLocked(d catalog.Document) bool {
	if s.hideDataFiles && d.IsDataFile() {
		return false
	}

	switch s.mode {
	case ModeManual:
		return s.tracker.Included(d.ID)
	case ModeAll:
		return !s.tracker.Excluded(d.ID)
	}

	// Filtered: the facet-visible set minus exclusions, plus force-included
	// documents toggled on from outside the filter.
	if s.tracker.ForcedIncluded(d.ID) {
		return true
	}
	return MatchesFacets(d, s.facets) && !s.tracker.Excluded(d.ID)
}

// SelectedDocuments resolves the selected set as full document records, in
// catalog order. Same semantics as SelectedDocumentIDs.
func (s *Session) SelectedDocuments() []catalog.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]catalog.Document, 0, len(s.documents))
	for _, d := range s.documents {
		if s.isSelectedLocked(d) {
			docs = append(docs, d)
		}
	}
	return docs
}

// VisibleDocuments returns the filter engine output for the current state,
// in catalog order.
func (s *Session) VisibleDocuments() []catalog.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return VisibleDocuments(s.documents, s.facets, s.mode, s.hideDataFiles)
}

// Documents returns the browsable list — the snapshot minus hidden data
// files — with per-document selection and display classification.
func (s *Session) Documents() []DocumentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectedStudents := s.facets.Get(FacetStudent)

	views := make([]DocumentView, 0, len(s.documents))
	for _, d := range s.documents {
		if s.hideDataFiles && d.IsDataFile() {
			continue
		}

		visible := s.mode != ModeFiltered || MatchesFacets(d, s.facets)

		views = append(views, DocumentView{
			Document: d,
			Visible:  visible,
			Selected: s.isSelectedLocked(d),
			Display:  ClassifyDocument(d, selectedStudents, s.tracker),
		})
	}
	return views
}

// Intersections computes per-facet-value coverage for the selected students.
func (s *Session) Intersections() Intersections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeIntersections(s.documents, s.facets.Get(FacetStudent))
}

// Status summarizes the current selection for display. It distinguishes an
// unavailable catalog, an empty selection, and a full selection; callers
// decide whether sending with no context deserves a warning.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available {
		return Status{State: StatusUnavailable, Summary: "document catalog unavailable"}
	}

	var total, selected int
	var selectedBytes int64
	for _, d := range s.documents {
		if s.hideDataFiles && d.IsDataFile() {
			continue
		}
		total++
		if s.isSelectedLocked(d) {
			selected++
			selectedBytes += d.SizeBytes
		}
	}

	status := Status{Selected: selected, Total: total}
	switch {
	case selected == 0:
		status.State = StatusEmpty
		status.Summary = "no documents selected"
	case selected == total:
		status.State = StatusAll
		status.Summary = fmt.Sprintf(
			"all %d documents selected (%s)",
			total, formatting.FormatBytes(selectedBytes, 1),
		)
	default:
		status.State = StatusPartial
		status.Summary = fmt.Sprintf(
			"%d of %d documents selected (%s)",
			selected, total, formatting.FormatBytes(selectedBytes, 1),
		)
	}
	return status
}
