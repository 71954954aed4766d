package contexts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/lectern/internal/catalog"
	"github.com/JaimeStill/lectern/internal/contexts"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureCatalog() *catalog.Static {
	static := catalog.NewStatic(fixtureDocs())
	static.StudentSet = []catalog.FacetValue{
		{ID: "s1", Name: "Ana"},
		{ID: "s2", Name: "Bruno"},
		{ID: "s3", Name: "Carla"},
	}
	static.SubjectSet = []catalog.FacetValue{
		{ID: "math", Name: "Mathematics"},
		{ID: "science", Name: "Science"},
	}
	return static
}

func newSession(t *testing.T) *contexts.Session {
	t.Helper()
	sys := contexts.New(fixtureCatalog(), discard())
	return sys.Create(context.Background())
}

func selectedIDs(s *contexts.Session) []string {
	return s.SelectedDocumentIDs()
}

func TestSessionDefaultsToFilteredAllSelected(t *testing.T) {
	s := newSession(t)

	if s.Mode() != contexts.ModeFiltered {
		t.Errorf("mode: got %s, want filtered", s.Mode())
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d2", "d3", "d4", "d5"}) {
		t.Errorf("selection: got %v, want all documents", got)
	}
}

func TestSessionResolutionIsIdempotent(t *testing.T) {
	s := newSession(t)

	if err := s.ResolveFacet(context.Background(), contexts.FacetStudent, []string{"s1"}); err != nil {
		t.Fatalf("set student facet: %v", err)
	}

	first := selectedIDs(s)
	second := selectedIDs(s)
	if !equalIDs(first, second) {
		t.Errorf("repeated resolution diverged: %v then %v", first, second)
	}
	if !equalIDs(first, []string{"d1", "d2", "d4"}) {
		t.Errorf("selection: got %v, want [d1 d2 d4]", first)
	}
}

func TestToggleFilteredMode(t *testing.T) {
	s := newSession(t)

	if err := s.ResolveFacet(context.Background(), contexts.FacetStudent, []string{"s1"}); err != nil {
		t.Fatalf("set student facet: %v", err)
	}

	// Excluding a matching document removes it from the selection.
	if err := s.Toggle("d2"); err != nil {
		t.Fatalf("toggle d2: %v", err)
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d4"}) {
		t.Errorf("after excluding d2: got %v, want [d1 d4]", got)
	}

	// Including a document outside the filter force-includes it.
	if err := s.Toggle("d5"); err != nil {
		t.Fatalf("toggle d5: %v", err)
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d4", "d5"}) {
		t.Errorf("after including d5: got %v, want [d1 d4 d5]", got)
	}

	// Toggling back restores the filter verdict.
	if err := s.Toggle("d2"); err != nil {
		t.Fatalf("re-toggle d2: %v", err)
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d2", "d4", "d5"}) {
		t.Errorf("after re-including d2: got %v", got)
	}
}

func TestToggleAllMode(t *testing.T) {
	s := newSession(t)

	s.SetMode(contexts.ModeAll)
	if got := selectedIDs(s); len(got) != 5 {
		t.Fatalf("all mode selection: got %d, want 5", len(got))
	}

	if err := s.Toggle("d3"); err != nil {
		t.Fatalf("toggle d3: %v", err)
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d2", "d4", "d5"}) {
		t.Errorf("after excluding d3: got %v", got)
	}
}

func TestToggleManualModeCatalogOrder(t *testing.T) {
	s := newSession(t)

	s.SetMode(contexts.ModeManual)
	if got := selectedIDs(s); len(got) != 0 {
		t.Fatalf("manual mode starts empty, got %v", got)
	}

	// Toggle in reverse order; resolution stays in catalog order.
	for _, id := range []string{"d5", "d1", "d3"} {
		if err := s.Toggle(id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d3", "d5"}) {
		t.Errorf("manual selection: got %v, want catalog order [d1 d3 d5]", got)
	}

	if err := s.Toggle("d3"); err != nil {
		t.Fatalf("untoggle d3: %v", err)
	}
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d5"}) {
		t.Errorf("after untoggle: got %v, want [d1 d5]", got)
	}
}

func TestToggleUnknownDocument(t *testing.T) {
	s := newSession(t)

	if err := s.Toggle("missing"); !errors.Is(err, contexts.ErrUnknownDocument) {
		t.Errorf("got %v, want ErrUnknownDocument", err)
	}
}

func TestModeSwitchResetsOverrides(t *testing.T) {
	s := newSession(t)

	if err := s.Toggle("d2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := selectedIDs(s); len(got) != 4 {
		t.Fatalf("exclusion not applied: %v", got)
	}

	s.SetMode(contexts.ModeAll)
	if got := selectedIDs(s); len(got) != 5 {
		t.Errorf("exclusions should clear on mode switch: got %v", got)
	}

	// Switching back does not restore them either.
	s.SetMode(contexts.ModeFiltered)
	if got := selectedIDs(s); len(got) != 5 {
		t.Errorf("overrides must not survive a round trip: got %v", got)
	}
}

func TestHideDataFilesAffectsSelection(t *testing.T) {
	s := newSession(t)

	s.SetHideDataFiles(true)
	if got := selectedIDs(s); !equalIDs(got, []string{"d1", "d2", "d3", "d5"}) {
		t.Errorf("selection with hidden data files: got %v", got)
	}

	s.SetHideDataFiles(false)
	if got := selectedIDs(s); len(got) != 5 {
		t.Errorf("selection after unhiding: got %v", got)
	}
}

func TestCascadingCandidates(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	phase, _, err := s.Candidates(contexts.FacetClass)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if phase != contexts.PhaseAwaitingParent {
		t.Fatalf("initial class phase: got %s, want awaiting_parent", phase)
	}

	if err := s.ResolveFacet(ctx, contexts.FacetSubject, []string{"math"}); err != nil {
		t.Fatalf("set subject: %v", err)
	}

	phase, values, err := s.Candidates(contexts.FacetClass)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if phase != contexts.PhaseReady {
		t.Fatalf("class phase after subject edit: got %s, want ready", phase)
	}
	if len(values) != 1 || values[0].ID != "class-a" {
		t.Fatalf("class candidates: got %v, want [class-a]", values)
	}

	if err := s.ResolveFacet(ctx, contexts.FacetClass, []string{"class-a"}); err != nil {
		t.Fatalf("set class: %v", err)
	}

	phase, values, err = s.Candidates(contexts.FacetAssignment)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if phase != contexts.PhaseReady {
		t.Fatalf("assignment phase: got %s, want ready", phase)
	}
	if len(values) != 1 || values[0].ID != "hw1" {
		t.Fatalf("assignment candidates: got %v, want [hw1]", values)
	}
}

func TestClearingParentResetsChain(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if err := s.ResolveFacet(ctx, contexts.FacetSubject, []string{"math"}); err != nil {
		t.Fatalf("set subject: %v", err)
	}
	if err := s.ResolveFacet(ctx, contexts.FacetClass, []string{"class-a"}); err != nil {
		t.Fatalf("set class: %v", err)
	}
	if err := s.ResolveFacet(ctx, contexts.FacetAssignment, []string{"hw1"}); err != nil {
		t.Fatalf("set assignment: %v", err)
	}

	if err := s.ResolveFacet(ctx, contexts.FacetSubject, nil); err != nil {
		t.Fatalf("clear subject: %v", err)
	}

	if got := s.Facet(contexts.FacetClass); got != nil {
		t.Errorf("class selection should clear: got %v", got)
	}
	if got := s.Facet(contexts.FacetAssignment); got != nil {
		t.Errorf("assignment selection should clear: got %v", got)
	}

	for _, facet := range []contexts.Facet{contexts.FacetClass, contexts.FacetAssignment} {
		phase, _, err := s.Candidates(facet)
		if err != nil {
			t.Fatalf("candidates %s: %v", facet, err)
		}
		if phase != contexts.PhaseAwaitingParent {
			t.Errorf("%s phase: got %s, want awaiting_parent", facet, phase)
		}
	}
}

func TestChildSelectionConstrainedToDomain(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	// No parent selected: child selections are ignored entirely.
	if err := s.ResolveFacet(ctx, contexts.FacetClass, []string{"class-a"}); err != nil {
		t.Fatalf("set class: %v", err)
	}
	if got := s.Facet(contexts.FacetClass); got != nil {
		t.Errorf("class selection without parent: got %v, want nil", got)
	}

	// With a loaded domain, values outside it are dropped.
	if err := s.ResolveFacet(ctx, contexts.FacetSubject, []string{"math"}); err != nil {
		t.Fatalf("set subject: %v", err)
	}
	if err := s.ResolveFacet(ctx, contexts.FacetClass, []string{"class-a", "class-z"}); err != nil {
		t.Fatalf("set class: %v", err)
	}
	if got := s.Facet(contexts.FacetClass); !equalIDs(got, []string{"class-a"}) {
		t.Errorf("class selection: got %v, want [class-a]", got)
	}
}

func TestStaleCandidateCompletionDiscarded(t *testing.T) {
	s := newSession(t)

	stale, err := s.SetFacet(contexts.FacetSubject, []string{"math"})
	if err != nil {
		t.Fatalf("first edit: %v", err)
	}
	current, err := s.SetFacet(contexts.FacetSubject, []string{"science"})
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}

	if s.ApplyCandidates(stale, []catalog.FacetValue{{ID: "class-a"}}, nil) {
		t.Error("stale completion should be discarded")
	}

	phase, _, err := s.Candidates(contexts.FacetClass)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if phase != contexts.PhaseLoading {
		t.Errorf("phase after stale completion: got %s, want loading", phase)
	}

	if !s.ApplyCandidates(current, []catalog.FacetValue{{ID: "class-b"}}, nil) {
		t.Fatal("current completion should apply")
	}

	_, values, err := s.Candidates(contexts.FacetClass)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(values) != 1 || values[0].ID != "class-b" {
		t.Errorf("candidates: got %v, want [class-b]", values)
	}
}

func TestCandidateFetchErrorYieldsEmptyDomain(t *testing.T) {
	sys := contexts.New(fixtureCatalog(), discard())
	s := sys.Create(context.Background())

	req, err := s.SetFacet(contexts.FacetSubject, []string{"math"})
	if err != nil {
		t.Fatalf("set subject: %v", err)
	}

	if !s.ApplyCandidates(req, nil, errors.New("catalog down")) {
		t.Fatal("errored completion should still settle the loader")
	}

	phase, values, err := s.Candidates(contexts.FacetClass)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if phase != contexts.PhaseReady {
		t.Errorf("phase: got %s, want ready", phase)
	}
	if len(values) != 0 {
		t.Errorf("domain should be empty on fetch error, got %v", values)
	}
}

func TestDegradedSessionAndReload(t *testing.T) {
	static := fixtureCatalog()
	static.Err = errors.New("catalog down")

	sys := contexts.New(static, discard())
	s := sys.Create(context.Background())

	if s.Available() {
		t.Fatal("session should open degraded when the snapshot fails")
	}
	if got := selectedIDs(s); len(got) != 0 {
		t.Errorf("degraded session selection: got %v, want empty", got)
	}

	status := s.Status()
	if status.State != contexts.StatusUnavailable {
		t.Errorf("status state: got %s, want unavailable", status.State)
	}

	static.Err = nil
	s.Reload(context.Background())

	if !s.Available() {
		t.Fatal("session should recover after reload")
	}
	if got := selectedIDs(s); len(got) != 5 {
		t.Errorf("selection after reload: got %v", got)
	}
}

func TestReloadDiscardsSelectionState(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if err := s.ResolveFacet(ctx, contexts.FacetStudent, []string{"s1"}); err != nil {
		t.Fatalf("set student: %v", err)
	}
	if err := s.Toggle("d2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	s.SetMode(contexts.ModeManual)

	s.Reload(ctx)

	if s.Mode() != contexts.ModeFiltered {
		t.Errorf("mode after reload: got %s, want filtered", s.Mode())
	}
	if got := s.Facet(contexts.FacetStudent); got != nil {
		t.Errorf("student facet after reload: got %v, want nil", got)
	}
	if got := selectedIDs(s); len(got) != 5 {
		t.Errorf("selection after reload: got %v", got)
	}
}

func TestSessionStatus(t *testing.T) {
	s := newSession(t)

	status := s.Status()
	if status.State != contexts.StatusAll {
		t.Errorf("initial state: got %s, want all", status.State)
	}
	if status.Selected != 5 || status.Total != 5 {
		t.Errorf("counts: got %d/%d, want 5/5", status.Selected, status.Total)
	}

	if err := s.Toggle("d2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	status = s.Status()
	if status.State != contexts.StatusPartial {
		t.Errorf("state after exclusion: got %s, want partial", status.State)
	}

	s.SetMode(contexts.ModeManual)
	status = s.Status()
	if status.State != contexts.StatusEmpty {
		t.Errorf("manual empty state: got %s, want empty", status.State)
	}
	if status.Summary != "no documents selected" {
		t.Errorf("summary: got %q", status.Summary)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	sys := contexts.New(fixtureCatalog(), discard())

	s := sys.Create(context.Background())

	found, err := sys.Find(s.ID())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID() != s.ID() {
		t.Error("found session does not match created session")
	}

	if err := sys.Delete(s.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := sys.Find(s.ID()); !errors.Is(err, contexts.ErrSessionNotFound) {
		t.Errorf("find after delete: got %v, want ErrSessionNotFound", err)
	}
	if err := sys.Delete(s.ID()); !errors.Is(err, contexts.ErrSessionNotFound) {
		t.Errorf("double delete: got %v, want ErrSessionNotFound", err)
	}
}

func TestDocumentViews(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if err := s.ResolveFacet(ctx, contexts.FacetStudent, []string{"s1"}); err != nil {
		t.Fatalf("set student: %v", err)
	}
	if err := s.Toggle("d5"); err != nil {
		t.Fatalf("toggle d5: %v", err)
	}

	views := s.Documents()
	if len(views) != 5 {
		t.Fatalf("views: got %d, want 5", len(views))
	}

	byID := map[string]contexts.DocumentView{}
	for _, v := range views {
		byID[v.ID] = v
	}

	if !byID["d1"].Visible || !byID["d1"].Selected {
		t.Error("base document should be visible and selected")
	}
	if byID["d3"].Visible {
		t.Error("d3 should be outside the filter")
	}
	if byID["d3"].Display != contexts.DisplayNoIntersection {
		t.Errorf("d3 display: got %s, want no_intersection", byID["d3"].Display)
	}
	if !byID["d5"].Selected {
		t.Error("force-included d5 should be selected")
	}
	if byID["d5"].Display != contexts.DisplayOverrideIncluded {
		t.Errorf("d5 display: got %s, want override_included", byID["d5"].Display)
	}
}
