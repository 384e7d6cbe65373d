// Package history records pipeline runs.
//
// Every CLI command and server request that runs the pipeline can append a
// [Run] to a [Store]. Two backends exist:
//   - file: one JSON document per run under a local directory (CLI default)
//   - mongo: a MongoDB collection, for servers shared by several users
//
// Runs are listed newest first.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by [Store.Get] for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run kinds.
const (
	KindEntities = "entities"
	KindCalls    = "calls"
	KindRender   = "render"
)

// Run is one pipeline invocation.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	Kind      string        `json:"kind" bson:"kind"`
	Module    string        `json:"module" bson:"module"`
	Entry     string        `json:"entry,omitempty" bson:"entry,omitempty"`
	Format    string        `json:"format,omitempty" bson:"format,omitempty"`
	Output    string        `json:"output,omitempty" bson:"output,omitempty"`
	StartedAt time.Time     `json:"started_at" bson:"started_at"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Entities  int           `json:"entities" bson:"entities"`
	Members   int           `json:"members" bson:"members"`
	Methods   int           `json:"methods" bson:"methods"`
	Calls     int           `json:"calls" bson:"calls"`
	CacheHit  bool          `json:"cache_hit" bson:"cache_hit"`
	Error     string        `json:"error,omitempty" bson:"error,omitempty"`
}

// NewRun starts a run record with a fresh ID.
func NewRun(kind, module string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Module:    module,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the duration and, when err is non-nil, its message.
func (r *Run) Finish(err error) {
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Error = err.Error()
	}
}

// Failed reports whether the run ended in an error.
func (r *Run) Failed() bool { return r.Error != "" }

// Store persists runs.
type Store interface {
	// Save inserts or replaces the run with r.ID.
	Save(ctx context.Context, r *Run) error

	// Get returns the run with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}

// NullStore discards runs.
type NullStore struct{}

func (NullStore) Save(context.Context, *Run) error          { return nil }
func (NullStore) Get(context.Context, string) (*Run, error) { return nil, ErrNotFound }
func (NullStore) List(context.Context, int) ([]*Run, error) { return nil, nil }
func (NullStore) Delete(context.Context, string) error      { return nil }
func (NullStore) Close() error                              { return nil }

var _ Store = NullStore{}
