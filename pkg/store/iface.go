// iface.go defines the StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. The Recorder and the
// CLI accept StoreInterface so tests can substitute their own.
package store

import (
	"time"

	"github.com/daviddao/lamportsim/pkg/model"
)

// StoreInterface defines the full set of store operations.
type StoreInterface interface {
	// Close closes the database connection.
	Close() error

	// --- Runs ---

	// CreateRun records the start of a run.
	CreateRun(r *model.Run) error

	// FinishRun stamps a run with its event count and completion time.
	FinishRun(id string, events int64, at time.Time) error

	// GetRun retrieves a run by id.
	GetRun(id string) (*model.Run, error)

	// ListRuns returns runs newest first.
	ListRuns(limit int) ([]model.Run, error)

	// --- Observations ---

	// InsertObservations appends a batch of observations atomically.
	InsertObservations(obs []model.Observation) error

	// ListObservations returns a run's observations in Lamport total order.
	ListObservations(runID string) ([]model.Observation, error)

	// ListObservationsForProcess returns one process's observations in
	// program order.
	ListObservationsForProcess(runID string, pid int) ([]model.Observation, error)

	// CountObservations returns the number of observations for a run.
	CountObservations(runID string) int64
}

// Compile-time check that *Store implements StoreInterface.
var _ StoreInterface = (*Store)(nil)
