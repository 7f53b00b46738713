package assetfinder

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
	"github.com/elmortem/assetfinder/repository/memory"
	"github.com/elmortem/assetfinder/search"
	storemem "github.com/elmortem/assetfinder/store/memory"
)

func newTestFinder(t *testing.T, repo *memory.MemoryRepository, opts ...Option) *Finder {
	t.Helper()

	opts = append([]Option{
		WithStore(storemem.NewMemoryStore()),
		WithLogger(log.Discard()),
	}, opts...)
	f, err := New(repo, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { f.Close(t.Context()) })
	return f
}

func TestFinder_RequiresRepository(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrNilRepository) {
		t.Errorf("expected ErrNilRepository, got %v", err)
	}
}

func TestFinder_RebuildAndFind(t *testing.T) {
	repo := memory.NewMemoryRepository()
	tex := &data.Texture{ID: "tex", Name: "Grass"}
	repo.Put("textures/grass.asset", data.KindAtlas, tex)
	repo.Put("materials/m.mat", data.KindMaterial, &data.Material{
		ID:         "mat",
		Name:       "Mat",
		Properties: []data.TextureProperty{{Name: "texA", Texture: tex}},
	})

	f := newTestFinder(t, repo)
	if err := f.Rebuild(t.Context(), false, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	refs, err := f.FindReferences(t.Context(), "tex")
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}
	paths, ok := refs["mat"]
	if !ok {
		t.Fatalf("material not found among referencers: %v", refs)
	}
	if !paths.Contains("Mat.texA") {
		t.Errorf("expected path Mat.texA, got %v", paths.Paths())
	}
}

type launcher struct {
	Payload *data.Material
}

func TestFinder_TypeReferencesFromScripts(t *testing.T) {
	repo := memory.NewMemoryRepository()
	repo.Put("scripts/launcher.go", data.KindScript, &data.Script{
		ID:     "script",
		Name:   "launcher.go",
		Path:   "scripts/launcher.go",
		Source: []byte("package weapons\n\ntype launcher struct{}\n"),
	})
	repo.Put("units/u.unit", data.KindComposite, &data.Composite{
		ID:         "unit",
		Name:       "Unit",
		Components: []any{&launcher{}},
	})

	f := newTestFinder(t, repo)
	if err := f.Rebuild(t.Context(), false, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	refs, err := f.FindReferences(t.Context(), "script", search.TypeProcessorID)
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}
	if _, ok := refs["unit"]; !ok {
		t.Errorf("type reference to the script not found: %v", refs)
	}
}

func TestFinder_DefaultLocalStore(t *testing.T) {
	repo := memory.NewMemoryRepository()
	tex := &data.Texture{ID: "tex"}
	repo.Put("textures/t.asset", data.KindAtlas, tex)
	repo.Put("materials/m.mat", data.KindMaterial, &data.Material{
		ID:         "mat",
		Name:       "Mat",
		Properties: []data.TextureProperty{{Name: "texA", Texture: tex}},
	})

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	f, err := New(repo, WithCachePath(cachePath), WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := f.Rebuild(t.Context(), false, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if err := f.Close(t.Context()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A second finder over the same file answers without rebuilding
	second, err := New(repo, WithCachePath(cachePath), WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close(t.Context())

	refs, err := second.FindReferences(t.Context(), "tex")
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}
	if _, ok := refs["mat"]; !ok {
		t.Errorf("persisted cache not reused: %v", refs)
	}
}

func TestFinder_ClosedRejectsCalls(t *testing.T) {
	repo := memory.NewMemoryRepository()
	f := newTestFinder(t, repo)
	if err := f.Close(t.Context()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := f.FindReferences(t.Context(), "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from FindReferences, got %v", err)
	}
	if err := f.Rebuild(t.Context(), false, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Rebuild, got %v", err)
	}
	if _, err := f.Watch(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Watch, got %v", err)
	}
}
