package contexts

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/catalog"
)

// SessionView is the full session state returned to the UI.
type SessionView struct {
	ID            uuid.UUID              `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	Available     bool                   `json:"available"`
	Mode          Mode                   `json:"mode"`
	HideDataFiles bool                   `json:"hide_data_files"`
	Facets        map[Facet][]string     `json:"facets"`
	Students      []catalog.FacetValue   `json:"students"`
	Subjects      []catalog.FacetValue   `json:"subjects"`
	Candidates    map[Facet]Candidates   `json:"candidates"`
	DocumentTypes []catalog.DocumentType `json:"document_types"`
	Documents     []DocumentView         `json:"documents"`
	Status        Status                 `json:"status"`
}

// Candidates is the transport shape of a dependent facet's domain state.
type Candidates struct {
	Phase  CandidatePhase       `json:"phase"`
	Values []catalog.FacetValue `json:"values"`
}

// SelectionView pairs the resolved document set with the status projection.
type SelectionView struct {
	DocumentIDs []string `json:"document_ids"`
	Status      Status   `json:"status"`
}

// View assembles the full session view under a consistent lock scope.
func (s *Session) View() SessionView {
	s.mu.Lock()
	facets := make(map[Facet][]string, len(Facets()))
	for _, f := range Facets() {
		if s.facets.Active(f) {
			facets[f] = s.facets.Get(f)
		}
	}

	candidates := make(map[Facet]Candidates, len(s.loaders))
	for f, loader := range s.loaders {
		candidates[f] = Candidates{Phase: loader.Phase(), Values: loader.Candidates()}
	}

	view := SessionView{
		ID:            s.id,
		CreatedAt:     s.created,
		Available:     s.available,
		Mode:          s.mode,
		HideDataFiles: s.hideDataFiles,
		Facets:        facets,
		Students:      s.students,
		Subjects:      s.subjects,
		Candidates:    candidates,
		DocumentTypes: catalog.DocumentTypes(),
	}
	s.mu.Unlock()

	view.Documents = s.Documents()
	view.Status = s.Status()
	return view
}

// Selection assembles the resolver output with its status summary.
func (s *Session) Selection() SelectionView {
	return SelectionView{
		DocumentIDs: s.SelectedDocumentIDs(),
		Status:      s.Status(),
	}
}
