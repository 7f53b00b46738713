package sqlite

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/elmortem/assetfinder/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	ss, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { ss.Close(t.Context()) })

	if err := ss.Open(t.Context()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return ss
}

func TestSQLiteStore_LoadBeforeSave(t *testing.T) {
	ss := newTestStore(t)

	_, err := ss.Load(t.Context())
	if !errors.Is(err, store.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ss := newTestStore(t)

	saved := &store.Container{
		LastRebuildTime:     100,
		LastRebuildDuration: 5,
		Entries: []store.Entry{
			{
				Identity: "shader",
				Groups: []store.Group{{
					ProcessorID: "assetfinder.default",
					References:  []store.Reference{{Identity: "mat", Paths: []string{"Mat.shader"}}},
				}},
			},
			{
				Identity: "tex",
				Groups: []store.Group{
					{
						ProcessorID: "assetfinder.default",
						References: []store.Reference{
							{Identity: "mat", Paths: []string{"Mat.texA", "Mat.texB"}},
							{Identity: "other", Paths: []string{"Other.tex"}},
						},
					},
					{
						ProcessorID: "assetfinder.typeref",
						References:  []store.Reference{{Identity: "mat", Paths: []string{"Mat.texA (Type: Texture)"}}},
					},
				},
			},
		},
		Fingerprints: []store.Fingerprint{
			{Identity: "mat", Fingerprint: 11},
			{Identity: "other", Fingerprint: 22},
		},
	}
	if err := ss.Save(t.Context(), saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := ss.Load(t.Context())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LastRebuildTime != 100 || loaded.LastRebuildDuration != 5 {
		t.Errorf("meta values lost: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Entries, saved.Entries) {
		t.Errorf("entries changed through the round trip:\nsaved:  %+v\nloaded: %+v", saved.Entries, loaded.Entries)
	}
	if !reflect.DeepEqual(loaded.Fingerprints, saved.Fingerprints) {
		t.Errorf("fingerprints changed through the round trip: %+v", loaded.Fingerprints)
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	ss := newTestStore(t)

	first := &store.Container{
		LastRebuildTime: 1,
		Entries: []store.Entry{{
			Identity: "a",
			Groups: []store.Group{{
				ProcessorID: "p",
				References:  []store.Reference{{Identity: "b", Paths: []string{"x"}}},
			}},
		}},
	}
	if err := ss.Save(t.Context(), first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := ss.Save(t.Context(), &store.Container{LastRebuildTime: 2}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := ss.Load(t.Context())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LastRebuildTime != 2 || len(loaded.Entries) != 0 {
		t.Errorf("second save did not replace the first: %+v", loaded)
	}
}
