package catalog

import (
	"context"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
)

// System defines the public contract for catalog access.
//
// Snapshot is fetched once when a context session opens; Classes and
// Assignments serve the cascading dependent facets; Content feeds document
// context into chat completions. Retry policy belongs to implementations,
// not to callers.
type System interface {
	// Snapshot returns the full document list and independent facet domains.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Classes returns the class facet domain scoped to the given subjects.
	Classes(ctx context.Context, subjectIDs []string) ([]FacetValue, error)

	// Assignments returns the assignment facet domain scoped to the given classes.
	Assignments(ctx context.Context, classIDs []string) ([]FacetValue, error)

	// Content returns the textual content of a single document.
	Content(ctx context.Context, documentID string) (string, error)

	// Start registers lifecycle hooks, such as a reachability probe.
	Start(lc *lifecycle.Coordinator) error
}
