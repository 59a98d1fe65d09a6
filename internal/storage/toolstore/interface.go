// Package toolstore persists tool definitions, company-scoped.
package toolstore

import (
	"context"
	"time"

	"engage-platform/internal/tool"
)

// Store is the tool definition store.
type Store interface {
	// Create persists a new tool; the slug must already be unique per company.
	Create(ctx context.Context, t *tool.Tool) error
	// GetByID returns the tool; errors.ErrNotFound when absent or in another company.
	GetByID(ctx context.Context, companyID, id string) (*tool.Tool, error)
	// GetBySlug resolves a tool by its company-scoped slug.
	GetBySlug(ctx context.Context, companyID, slug string) (*tool.Tool, error)
	// Update replaces the stored tool.
	Update(ctx context.Context, t *tool.Tool) error
	// Delete removes the tool definition.
	Delete(ctx context.Context, companyID, id string) error
	// List returns all tools of a company.
	List(ctx context.Context, companyID string) ([]*tool.Tool, error)
	// SlugExists reports whether a slug is taken within a company.
	SlugExists(ctx context.Context, companyID, slug string) (bool, error)
	// TouchExecution records telemetry after an execution: last_executed_at
	// and, on failure, last_error. Last writer wins under concurrency.
	TouchExecution(ctx context.Context, id string, at time.Time, lastError string) error
	// Close releases the backing connection.
	Close() error
}
