package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
)

// client implements System against the catalog service's HTTP API.
// Dependent facet domains are cached with a short TTL keyed on the
// parent selection, since the UI re-requests them on every facet edit.
type client struct {
	base       string
	http       *http.Client
	candidates *gocache.Cache
	logger     *slog.Logger
}

// New creates a catalog client implementing the System interface.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}

	ttl := cfg.CandidateTTLDuration()

	return &client{
		base:       strings.TrimSuffix(base.String(), "/"),
		http:       &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		candidates: gocache.New(ttl, 2*ttl),
		logger:     logger.With("system", "catalog"),
	}, nil
}

func (c *client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.getJSON(gctx, "/api/documents", nil, &snap.Documents)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "/api/students", nil, &snap.Students)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "/api/subjects", nil, &snap.Subjects)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	c.logger.Info(
		"catalog snapshot fetched",
		"documents", len(snap.Documents),
		"students", len(snap.Students),
		"subjects", len(snap.Subjects),
	)

	return &snap, nil
}

func (c *client) Classes(ctx context.Context, subjectIDs []string) ([]FacetValue, error) {
	return c.candidateList(ctx, "/api/classes", "subject_id", subjectIDs)
}

func (c *client) Assignments(ctx context.Context, classIDs []string) ([]FacetValue, error) {
	return c.candidateList(ctx, "/api/assignments", "class_id", classIDs)
}

func (c *client) Content(ctx context.Context, documentID string) (string, error) {
	var payload struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}

	path := "/api/documents/" + url.PathEscape(documentID) + "/content"
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return "", err
	}

	return payload.Content, nil
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		probeCtx, cancel := context.WithTimeout(lc.Context(), c.http.Timeout)
		defer cancel()

		var subjects []FacetValue
		if err := c.getJSON(probeCtx, "/api/subjects", nil, &subjects); err != nil {
			// Degraded start is allowed: sessions open unavailable until a reload.
			c.logger.Warn("catalog unreachable at startup", "error", err)
			return
		}

		c.logger.Info("catalog reachable", "subjects", len(subjects))
	})

	return nil
}

func (c *client) candidateList(
	ctx context.Context,
	path string,
	param string,
	parentIDs []string,
) ([]FacetValue, error) {
	key := candidateKey(path, parentIDs)
	if cached, ok := c.candidates.Get(key); ok {
		return cached.([]FacetValue), nil
	}

	query := url.Values{}
	for _, id := range parentIDs {
		query.Add(param, id)
	}

	var values []FacetValue
	if err := c.getJSON(ctx, path, query, &values); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	c.candidates.SetDefault(key, values)
	return values, nil
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request %s: %w", path, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrDocumentNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog request %s: status %d", path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode catalog response %s: %w", path, err)
	}

	return nil
}

func candidateKey(path string, parentIDs []string) string {
	ids := make([]string, len(parentIDs))
	copy(ids, parentIDs)
	sort.Strings(ids)
	return path + "?" + strings.Join(ids, ",")
}
