// Package store persists requests and their artifacts in SQLite. The
// artifact table is append-only: a row, once written, is never updated
// or deleted, mirroring the in-memory append-only artifact set. Saving
// a request again only adds the rows that are new since the last save.
package store

import (
	"context"
	"time"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

// RequestSummary is one row of the request listing.
type RequestSummary struct {
	ID          types.ID  `json:"id"`
	UserPrompt  string    `json:"user_prompt"`
	CreatedAt   time.Time `json:"created_at"`
	HasContract bool      `json:"has_contract"`
}

// Store persists and recovers pipeline requests.
type Store interface {
	// SaveRequest writes the request and any artifacts and answers not yet
	// persisted. Existing artifact rows are never touched.
	SaveRequest(ctx context.Context, req *artifact.Request) error

	// GetRequest reconstructs a request, artifacts in revision order.
	GetRequest(ctx context.Context, id types.ID) (*artifact.Request, error)

	// ListRequests returns summaries of all stored requests, newest first.
	ListRequests(ctx context.Context) ([]RequestSummary, error)

	Close() error
}
