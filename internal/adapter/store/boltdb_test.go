package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"apidoc/internal/port"
)

func openTemp(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return st, path
}

func TestPutGet(t *testing.T) {
	st, _ := openTemp(t)
	defer st.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := port.Snapshot{Version: "1.0.0", GeneratedAt: at, Endpoints: 3, Data: "[]", Project: "{}"}
	if err := st.Put(snap); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get("1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !got.GeneratedAt.Equal(at) {
		t.Errorf("expected GeneratedAt=%v, got %v", at, got.GeneratedAt)
	}
	if got.Endpoints != 3 || got.Data != "[]" || got.Project != "{}" {
		t.Errorf("unexpected snapshot %+v", got)
	}

	if _, err := st.Get("9.9.9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := st.Put(port.Snapshot{}); err == nil {
		t.Error("expected error for empty version")
	}
}

func TestList_NewestFirst(t *testing.T) {
	st, _ := openTemp(t)
	defer st.Close()

	for _, v := range []string{"1.2.0", "nightly", "1.10.0", "1.0.0", "beta"} {
		if err := st.Put(port.Snapshot{Version: v, Data: "[]"}); err != nil {
			t.Fatal(err)
		}
	}

	snaps, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range snaps {
		got = append(got, s.Version)
		if s.Data != "" {
			t.Errorf("List should not load output texts for %s", s.Version)
		}
	}
	expected := []string{"1.10.0", "1.2.0", "1.0.0", "beta", "nightly"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestDelete(t *testing.T) {
	st, _ := openTemp(t)
	defer st.Close()

	if err := st.Put(port.Snapshot{Version: "1.0.0"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete("1.0.0"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get("1.0.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete("1.0.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	st, path := openTemp(t)

	info, err := st.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion {
		t.Errorf("expected schema v%d, got v%d", CurrentSchemaVersion, info.Version)
	}

	// A v1 database loses its snapshots on upgrade.
	if err := st.Put(port.Snapshot{Version: "1.0.0"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetSchemaInfo(&SchemaInfo{Version: 1}); err != nil {
		t.Fatal(err)
	}
	if err := st.Migrate(); err != nil {
		t.Fatal(err)
	}
	snaps, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected v1 snapshots to be cleared, got %d", len(snaps))
	}

	if err := st.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	if _, err := NewBoltStore(path); err == nil {
		t.Error("expected error opening a database from a newer schema")
	}
}

func TestClear(t *testing.T) {
	st, _ := openTemp(t)
	defer st.Close()

	for _, v := range []string{"1.0.0", "1.1.0", "1.2.0"} {
		if err := st.Put(port.Snapshot{Version: v}); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}

	err := st.db.View(func(tx *bbolt.Tx) error {
		if n := tx.Bucket(bucketOutputs).Stats().KeyN; n != 0 {
			t.Errorf("expected empty outputs bucket, got %d keys", n)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
