package contexts

import (
	"slices"

	"github.com/JaimeStill/lectern/internal/catalog"
)

// CandidatePhase is the state of a dependent facet's candidate domain.
type CandidatePhase string

const (
	// PhaseAwaitingParent means no parent facet value has been chosen yet.
	PhaseAwaitingParent CandidatePhase = "awaiting_parent"
	// PhaseLoading means a candidate fetch is in flight.
	PhaseLoading CandidatePhase = "loading"
	// PhaseReady means the candidate domain is populated.
	PhaseReady CandidatePhase = "ready"
)

// Loader tracks the candidate-domain state machine for one dependent facet
// (class or assignment). A monotonic request token implements
// last-request-wins: completions carrying a superseded token are discarded.
type Loader struct {
	phase      CandidatePhase
	candidates []catalog.FacetValue
	seq        uint64
}

// NewLoader creates a Loader in the awaiting-parent phase.
func NewLoader() *Loader {
	return &Loader{phase: PhaseAwaitingParent}
}

// Phase returns the current candidate phase.
func (l *Loader) Phase() CandidatePhase {
	return l.phase
}

// Candidates returns the current candidate domain. Only meaningful in the
// ready phase; empty otherwise.
func (l *Loader) Candidates() []catalog.FacetValue {
	return slices.Clone(l.candidates)
}

// AwaitParent resets the loader to awaiting-parent, invalidating any fetch
// still in flight. Used when the parent facet collapses to inactive: the UI
// distinguishes "no parent chosen" from an empty candidate list.
func (l *Loader) AwaitParent() {
	l.seq++
	l.phase = PhaseAwaitingParent
	l.candidates = nil
}

// Begin transitions to loading and returns the token the eventual completion
// must present. Any earlier in-flight fetch is superseded.
func (l *Loader) Begin() uint64 {
	l.seq++
	l.phase = PhaseLoading
	l.candidates = nil
	return l.seq
}

// Finish applies a fetch completion. Returns false when the completion is
// stale (a newer Begin or AwaitParent superseded it), in which case the
// result is discarded without any state change.
func (l *Loader) Finish(token uint64, candidates []catalog.FacetValue) bool {
	if token != l.seq || l.phase != PhaseLoading {
		return false
	}

	l.phase = PhaseReady
	l.candidates = slices.Clone(candidates)
	return true
}

// Domain returns the candidate value identifiers, for pruning selections
// against the current domain.
func (l *Loader) Domain() []string {
	ids := make([]string, len(l.candidates))
	for i, c := range l.candidates {
		ids[i] = c.ID
	}
	return ids
}
