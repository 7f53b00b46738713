package memory

import (
	"errors"
	"testing"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/repository"
)

func TestMemoryRepository_PutAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	tex := &data.Texture{ID: MintID(), Name: "Grass"}
	repo.Put("textures/grass.asset", data.KindAtlas, tex)

	id, ok := repo.Identify("textures/grass.asset")
	if !ok || id != tex.ID {
		t.Fatalf("Identify failed: %v %v", id, ok)
	}

	path, ok := repo.PathOf(tex.ID)
	if !ok || path != "textures/grass.asset" {
		t.Fatalf("PathOf failed: %v %v", path, ok)
	}

	asset, err := repo.LoadAsset(t.Context(), tex.ID)
	if err != nil {
		t.Fatalf("LoadAsset failed: %v", err)
	}
	if asset != data.Asset(tex) {
		t.Error("LoadAsset returned a different object")
	}

	if repo.Canonical(tex.ID) == nil {
		t.Error("Canonical missed a resident asset")
	}
}

func TestMemoryRepository_ListAssetsFiltered(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Put("textures/a.asset", data.KindAtlas, &data.Texture{ID: "a"})
	repo.Put("materials/b.mat", data.KindMaterial, &data.Material{ID: "b"})
	repo.Put("materials/sub/c.mat", data.KindMaterial, &data.Material{ID: "c"})

	all, err := repo.ListAssets(t.Context(), repository.Query{})
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 assets, got %d", len(all))
	}

	mats, err := repo.ListAssets(t.Context(), repository.Query{Kinds: []data.Kind{data.KindMaterial}})
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(mats) != 2 {
		t.Errorf("expected 2 materials, got %d", len(mats))
	}

	scoped, err := repo.ListAssets(t.Context(), repository.Query{Scope: "materials/sub"})
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0] != "c" {
		t.Errorf("expected [c], got %v", scoped)
	}
}

func TestMemoryRepository_TouchChangesStat(t *testing.T) {
	repo := NewMemoryRepository()
	tex := &data.Texture{ID: "t"}
	repo.Put("textures/t.asset", data.KindAtlas, tex)

	before, err := repo.StatAsset(t.Context(), "t")
	if err != nil {
		t.Fatalf("StatAsset failed: %v", err)
	}

	repo.Touch("t")
	after, err := repo.StatAsset(t.Context(), "t")
	if err != nil {
		t.Fatalf("StatAsset failed: %v", err)
	}
	if before == after {
		t.Error("Touch did not change the stat")
	}
}

func TestMemoryRepository_RemoveAndNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Put("textures/t.asset", data.KindAtlas, &data.Texture{ID: "t"})
	repo.Remove("t")

	if _, err := repo.LoadAsset(t.Context(), "t"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.StatAsset(t.Context(), "t"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, ok := repo.Identify("textures/t.asset"); ok {
		t.Error("removed asset still identifiable by path")
	}
}

func TestMemoryRepository_Scripts(t *testing.T) {
	repo := NewMemoryRepository()
	script := &data.Script{ID: "s", Name: "weapons.go", Path: "scripts/weapons.go"}
	repo.Put("scripts/weapons.go", data.KindScript, script)

	scripts, err := repo.Scripts(t.Context())
	if err != nil {
		t.Fatalf("Scripts failed: %v", err)
	}
	if len(scripts) != 1 || scripts[0].ID != "s" {
		t.Errorf("expected [s], got %v", scripts)
	}
}
