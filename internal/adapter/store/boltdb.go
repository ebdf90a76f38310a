package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.etcd.io/bbolt"

	"apidoc/internal/port"
)

var (
	bucketSnapshots = []byte("snapshots")
	bucketOutputs   = []byte("outputs")
	bucketMeta      = []byte("meta")
)

// ErrNotFound is returned by Get for an unknown version.
var ErrNotFound = errors.New("snapshot not found")

// BoltStore keeps the output of successful runs keyed by project version.
// Snapshot metadata and the (large) output texts live in separate buckets so
// listing never loads the texts.
type BoltStore struct {
	db *bbolt.DB
}

var _ port.HistoryStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketSnapshots, bucketOutputs, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

type snapshotMeta struct {
	GeneratedAt int64 `json:"generated_at"`
	Endpoints   int   `json:"endpoints"`
}

type snapshotOutput struct {
	Data    string `json:"data"`
	Project string `json:"project"`
}

// Put stores snap, replacing any snapshot of the same version.
func (s *BoltStore) Put(snap port.Snapshot) error {
	if snap.Version == "" {
		return fmt.Errorf("snapshot version is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := json.Marshal(snapshotMeta{
			GeneratedAt: snap.GeneratedAt.UTC().Unix(),
			Endpoints:   snap.Endpoints,
		})
		if err != nil {
			return err
		}
		out, err := json.Marshal(snapshotOutput{Data: snap.Data, Project: snap.Project})
		if err != nil {
			return err
		}
		key := []byte(snap.Version)
		if err := tx.Bucket(bucketSnapshots).Put(key, meta); err != nil {
			return err
		}
		return tx.Bucket(bucketOutputs).Put(key, out)
	})
}

func (s *BoltStore) Get(version string) (port.Snapshot, error) {
	snap := port.Snapshot{Version: version}
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := []byte(version)
		data := tx.Bucket(bucketSnapshots).Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, version)
		}
		var meta snapshotMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		snap.GeneratedAt = time.Unix(meta.GeneratedAt, 0).UTC()
		snap.Endpoints = meta.Endpoints

		var out snapshotOutput
		if data := tx.Bucket(bucketOutputs).Get(key); data != nil {
			if err := json.Unmarshal(data, &out); err != nil {
				return err
			}
		}
		snap.Data, snap.Project = out.Data, out.Project
		return nil
	})
	return snap, err
}

// List returns snapshot metadata, newest version first. Versions that are not
// semantic versions sort after those that are, in byte order.
func (s *BoltStore) List() ([]port.Snapshot, error) {
	var snaps []port.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			var meta snapshotMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			snaps = append(snaps, port.Snapshot{
				Version:     string(k),
				GeneratedAt: time.Unix(meta.GeneratedAt, 0).UTC(),
				Endpoints:   meta.Endpoints,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		return newer(snaps[i].Version, snaps[j].Version)
	})
	return snaps, nil
}

func newer(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.GreaterThan(vb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Delete removes the snapshot of version. An unknown version is ErrNotFound.
func (s *BoltStore) Delete(version string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(version)
		snaps := tx.Bucket(bucketSnapshots)
		if snaps.Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, version)
		}
		if err := snaps.Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketOutputs).Delete(key)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
