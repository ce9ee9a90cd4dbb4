// Package history lists and manages past scored attempts.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pavelanni/examdesk/internal/backend"
	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/result"
)

// Backend is the subset of the REST client history needs.
type Backend interface {
	result.Backend
	SearchScores(ctx context.Context, keyword string) ([]model.ScoreSummary, error)
	DeleteScore(ctx context.Context, id int64) (bool, error)
}

// Client browses score history.
type Client struct {
	backend  Backend
	analyzer *result.Analyzer
}

// New creates a history client.
func New(b Backend) *Client {
	return &Client{backend: b, analyzer: result.NewAnalyzer(b)}
}

// List returns every score summary, newest first.
func (c *Client) List(ctx context.Context) ([]model.ScoreSummary, error) {
	return c.search(ctx, backend.ListAllScoresKeyword)
}

// Search returns summaries matching keyword, newest first. A blank keyword
// lists everything.
func (c *Client) Search(ctx context.Context, keyword string) ([]model.ScoreSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		keyword = backend.ListAllScoresKeyword
	}
	return c.search(ctx, keyword)
}

func (c *Client) search(ctx context.Context, keyword string) ([]model.ScoreSummary, error) {
	scores, err := c.backend.SearchScores(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search scores: %w", err)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].SubmittedAt.After(scores[j].SubmittedAt)
	})
	return scores, nil
}

// Delete removes a past attempt and its score.
func (c *Client) Delete(ctx context.Context, id int64) error {
	ok, err := c.backend.DeleteScore(ctx, id)
	if err != nil {
		return fmt.Errorf("delete score %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("delete score %d: %w", id, model.ErrRejected)
	}
	return nil
}

// Open loads a past attempt into a result report.
func (c *Client) Open(ctx context.Context, id int64) (*result.Report, error) {
	return c.analyzer.Load(ctx, id)
}

// Export loads the full report of every summary matching keyword.
func (c *Client) Export(ctx context.Context, keyword string, now time.Time) (model.HistoryExport, error) {
	scores, err := c.Search(ctx, keyword)
	if err != nil {
		return model.HistoryExport{}, err
	}
	out := model.HistoryExport{
		GeneratedAt: now,
		Keyword:     strings.TrimSpace(keyword),
		Results:     make([]model.AttemptResult, 0, len(scores)),
	}
	for _, s := range scores {
		r, err := c.Open(ctx, s.ID)
		if err != nil {
			return model.HistoryExport{}, fmt.Errorf("export: %w", err)
		}
		out.Results = append(out.Results, r.Export())
	}
	return out, nil
}
