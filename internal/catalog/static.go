package catalog

import (
	"context"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
)

// Static is an in-memory System backed by a fixed snapshot. It serves tests
// and local development without a running catalog service. Class and
// assignment domains are derived from the document list; content comes from
// the Contents map keyed by document ID.
type Static struct {
	Docs       []Document
	StudentSet []FacetValue
	SubjectSet []FacetValue
	ClassSet   []FacetValue
	Assignset  []FacetValue
	Contents   map[string]string

	// Err, when set, is returned by every fetch to simulate an outage.
	Err error
}

// NewStatic creates a Static catalog over the given documents.
func NewStatic(docs []Document) *Static {
	return &Static{Docs: docs, Contents: map[string]string{}}
}

func (s *Static) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return &Snapshot{
		Documents: s.Docs,
		Students:  s.StudentSet,
		Subjects:  s.SubjectSet,
	}, nil
}

func (s *Static) Classes(ctx context.Context, subjectIDs []string) ([]FacetValue, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.ClassSet) > 0 {
		return s.ClassSet, nil
	}

	keep := toSet(subjectIDs)
	var values []FacetValue
	seen := map[string]bool{}
	for _, d := range s.Docs {
		if d.ClassID == nil || d.SubjectID == nil || !keep[*d.SubjectID] {
			continue
		}
		if !seen[*d.ClassID] {
			seen[*d.ClassID] = true
			values = append(values, FacetValue{ID: *d.ClassID, Name: *d.ClassID})
		}
	}
	return values, nil
}

func (s *Static) Assignments(ctx context.Context, classIDs []string) ([]FacetValue, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Assignset) > 0 {
		return s.Assignset, nil
	}

	keep := toSet(classIDs)
	var values []FacetValue
	seen := map[string]bool{}
	for _, d := range s.Docs {
		if d.AssignmentID == nil || d.ClassID == nil || !keep[*d.ClassID] {
			continue
		}
		if !seen[*d.AssignmentID] {
			seen[*d.AssignmentID] = true
			values = append(values, FacetValue{ID: *d.AssignmentID, Name: *d.AssignmentID})
		}
	}
	return values, nil
}

func (s *Static) Content(ctx context.Context, documentID string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	content, ok := s.Contents[documentID]
	if !ok {
		return "", ErrDocumentNotFound
	}
	return content, nil
}

func (s *Static) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
