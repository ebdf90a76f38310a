package port

import "time"

// Snapshot is the stored output of one successful run.
type Snapshot struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Endpoints   int       `json:"endpoints"`
	Data        string    `json:"data"`
	Project     string    `json:"project"`
}

// HistoryStore keeps snapshots keyed by project version.
type HistoryStore interface {
	Put(snap Snapshot) error
	Get(version string) (Snapshot, error)
	// List returns snapshots newest version first, without Data and Project.
	List() ([]Snapshot, error)
	Close() error
}
