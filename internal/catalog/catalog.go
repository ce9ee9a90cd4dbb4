// Package catalog lists, searches, and fetches exams.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelanni/examdesk/internal/model"
)

// Backend is the subset of the REST client the catalog needs.
type Backend interface {
	ListExams(ctx context.Context) ([]string, error)
	SearchExams(ctx context.Context, keyword string) ([]string, error)
	ExamNameTaken(ctx context.Context, name string) (bool, error)
	GetExam(ctx context.Context, name string) (model.Exam, error)
	UpsertExam(ctx context.Context, e model.Exam) (bool, error)
	DeleteExam(ctx context.Context, name string) (bool, error)
}

// Client is a thin wrapper over the exam endpoints.
type Client struct {
	backend Backend
}

// New creates a catalog client.
func New(b Backend) *Client {
	return &Client{backend: b}
}

// List returns exam names. An empty keyword lists everything.
func (c *Client) List(ctx context.Context, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	var (
		names []string
		err   error
	)
	if keyword == "" {
		names, err = c.backend.ListExams(ctx)
	} else {
		names, err = c.backend.SearchExams(ctx, keyword)
	}
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return names, nil
}

// Fetch returns a whole exam.
func (c *Client) Fetch(ctx context.Context, name string) (model.Exam, error) {
	e, err := c.backend.GetExam(ctx, name)
	if err != nil {
		return model.Exam{}, fmt.Errorf("fetch exam %q: %w", name, err)
	}
	return e, nil
}

// NameTaken reports whether an exam with this name exists.
func (c *Client) NameTaken(ctx context.Context, name string) (bool, error) {
	taken, err := c.backend.ExamNameTaken(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check exam name %q: %w", name, err)
	}
	return taken, nil
}

// Upsert creates or replaces an exam.
func (c *Client) Upsert(ctx context.Context, e model.Exam) error {
	ok, err := c.backend.UpsertExam(ctx, e)
	if err != nil {
		return fmt.Errorf("upsert exam %q: %w", e.Name, err)
	}
	if !ok {
		return fmt.Errorf("upsert exam %q: %w", e.Name, model.ErrRejected)
	}
	return nil
}

// Delete removes an exam.
func (c *Client) Delete(ctx context.Context, name string) error {
	ok, err := c.backend.DeleteExam(ctx, name)
	if err != nil {
		return fmt.Errorf("delete exam %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("delete exam %q: %w", name, model.ErrRejected)
	}
	return nil
}
