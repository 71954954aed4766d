package contexts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/catalog"
)

// Session owns the document-context state for one open chat view: the
// catalog snapshot, facet selections, dependent-facet loaders, selection
// mode, and override tracker. All mutation happens under one mutex — user
// interactions are serialized, matching the one-action-at-a-time model the
// state machine assumes.
type Session struct {
	mu      sync.Mutex
	id      uuid.UUID
	created time.Time
	catalog catalog.System
	logger  *slog.Logger

	available bool
	documents []catalog.Document
	docIndex  map[string]int
	students  []catalog.FacetValue
	subjects  []catalog.FacetValue

	facets        *FacetState
	loaders       map[Facet]*Loader
	mode          Mode
	hideDataFiles bool
	tracker       *Tracker
}

// CandidateRequest describes a dependent-facet candidate fetch the caller
// must perform against the catalog. The token must be presented back through
// ApplyCandidates; a superseding facet edit invalidates it.
type CandidateRequest struct {
	Facet   Facet
	Token   uint64
	Parents []string
}

func newSession(ctx context.Context, cat catalog.System, logger *slog.Logger) *Session {
	s := &Session{
		id:      uuid.New(),
		created: time.Now(),
		catalog: cat,
		logger:  logger,
	}
	s.load(ctx)
	return s
}

// load fetches the catalog snapshot and resets all transient state. On fetch
// failure the session opens degraded: no documents are selectable until a
// successful reload.
func (s *Session) load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.facets = NewFacetState()
	s.loaders = map[Facet]*Loader{
		FacetClass:      NewLoader(),
		FacetAssignment: NewLoader(),
	}
	s.mode = ModeFiltered
	s.hideDataFiles = false
	s.tracker = NewTracker()

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("session opened degraded", "session", s.id, "error", err)
		s.available = false
		s.documents = nil
		s.docIndex = map[string]int{}
		s.students = nil
		s.subjects = nil
		return
	}

	s.available = true
	s.documents = snap.Documents
	s.docIndex = make(map[string]int, len(snap.Documents))
	for i, d := range snap.Documents {
		s.docIndex[d.ID] = i
	}
	s.students = snap.Students
	s.subjects = snap.Subjects
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// Available reports whether the catalog snapshot loaded successfully.
func (s *Session) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Reload refetches the catalog snapshot, discarding all selection state.
func (s *Session) Reload(ctx context.Context) {
	s.load(ctx)
}

// SetMode switches the selection mode. Every switch is a hard reset of
// override and inclusion/exclusion state. Callers validate the mode with
// ParseMode before invoking.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.tracker.Reset()
}

// Mode returns the current selection mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetHideDataFiles toggles the raw-data-file filter, applied in every mode.
func (s *Session) SetHideDataFiles(hide bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideDataFiles = hide
}

// SetFacet replaces a facet's selection and runs cascading invalidation.
// When the edit requires a dependent candidate fetch (subject→class,
// class→assignment), the returned CandidateRequest describes it; the caller
// fetches from the catalog and reports back through ApplyCandidates. A nil
// request means no fetch is needed.
func (s *Session) SetFacet(facet Facet, values []string) (*CandidateRequest, error) {
	if _, err := ParseFacet(string(facet)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Child facet selections are constrained to their loaded domain.
	if loader, ok := s.loaders[facet]; ok {
		switch loader.Phase() {
		case PhaseAwaitingParent:
			values = nil
		case PhaseReady:
			values = intersectDomain(values, loader.Domain())
		}
	}

	s.facets.Set(facet, values)
	return s.cascadeLocked(facet), nil
}

// cascadeLocked invalidates dependent facets after a parent edit. Child
// selections are cleared unconditionally; the child loader either resets to
// awaiting-parent (parent inactive) or begins a new fetch.
func (s *Session) cascadeLocked(facet Facet) *CandidateRequest {
	child, ok := facet.Dependent()
	if !ok {
		return nil
	}

	// Clear the whole chain below the edited facet first.
	for f, ok := child, true; ok; f, ok = f.Dependent() {
		s.facets.Clear(f)
		if f != child {
			s.loaders[f].AwaitParent()
		}
	}

	parents := s.facets.Get(facet)
	if parents == nil {
		s.loaders[child].AwaitParent()
		return nil
	}

	token := s.loaders[child].Begin()
	return &CandidateRequest{Facet: child, Token: token, Parents: parents}
}

// ApplyCandidates reports a completed candidate fetch. Stale completions —
// those superseded by a newer facet edit — are discarded and return false.
// On a fetch error the domain resolves empty rather than failing the session.
func (s *Session) ApplyCandidates(req *CandidateRequest, values []catalog.FacetValue, fetchErr error) bool {
	if req == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loader, ok := s.loaders[req.Facet]
	if !ok {
		return false
	}

	if fetchErr != nil {
		s.logger.Warn(
			"candidate fetch failed",
			"session", s.id,
			"facet", req.Facet,
			"error", fetchErr,
		)
		values = nil
	}

	if !loader.Finish(req.Token, values) {
		return false
	}

	s.facets.Prune(req.Facet, loader.Domain())
	return true
}

// ResolveFacet sets a facet and, when a dependent fetch is required,
// performs it against the catalog before returning. Concurrent edits still
// win by token: a fetch outlived by a newer edit is discarded on completion.
func (s *Session) ResolveFacet(ctx context.Context, facet Facet, values []string) error {
	req, err := s.SetFacet(facet, values)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	candidates, fetchErr := s.fetchCandidates(ctx, req)
	s.ApplyCandidates(req, candidates, fetchErr)
	return nil
}

func (s *Session) fetchCandidates(ctx context.Context, req *CandidateRequest) ([]catalog.FacetValue, error) {
	switch req.Facet {
	case FacetClass:
		return s.catalog.Classes(ctx, req.Parents)
	case FacetAssignment:
		return s.catalog.Assignments(ctx, req.Parents)
	}
	return nil, ErrUnknownFacet
}

// Facet returns the current selection for a facet, nil when inactive.
func (s *Session) Facet(facet Facet) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facets.Get(facet)
}

// Candidates returns the candidate phase and domain for a dependent facet.
func (s *Session) Candidates(facet Facet) (CandidatePhase, []catalog.FacetValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loader, ok := s.loaders[facet]
	if !ok {
		return "", nil, ErrUnknownFacet
	}
	return loader.Phase(), loader.Candidates(), nil
}

// Toggle flips a document's selection according to the current mode.
func (s *Session) Toggle(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.docIndex[documentID]
	if !ok {
		return ErrUnknownDocument
	}
	doc := s.documents[idx]

	if s.mode == ModeManual {
		s.tracker.ToggleManual(doc, s.facets)
		return nil
	}

	s.tracker.ToggleFiltered(doc, s.facets, s.isSelectedLocked(doc))
	return nil
}

func intersectDomain(values, domain []string) []string {
	allowed := make(map[string]bool, len(domain))
	for _, d := range domain {
		allowed[d] = true
	}

	kept := make([]string, 0, len(values))
	for _, v := range values {
		if allowed[v] {
			kept = append(kept, v)
		}
	}
	return kept
}
