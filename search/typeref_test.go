package search

import (
	"reflect"
	"testing"

	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
)

type Blaster struct{}
type Cannon struct{}
type Turret struct{}

func testScripts() []*data.Script {
	return []*data.Script{
		{
			ID:     "s-weapons",
			Name:   "weapons.go",
			Path:   "scripts/weapons.go",
			Source: []byte("package weapons\n\ntype Blaster struct{}\n"),
		},
		{
			ID:     "s-cannon",
			Name:   "Cannon.go",
			Path:   "scripts/Cannon.go",
			Source: []byte("package misc\n"),
		},
		{
			ID:     "s-search",
			Name:   "search.go",
			Path:   "scripts/search.go",
			Source: []byte("package search\n"),
		},
	}
}

func TestScriptIndex_ResolutionTiers(t *testing.T) {
	idx := NewScriptIndex(testScripts())

	// Declared type name
	if id := idx.Resolve(reflect.TypeOf(Blaster{})); id != "s-weapons" {
		t.Errorf("declaration tier: expected s-weapons, got %q", id)
	}

	// File base name
	if id := idx.Resolve(reflect.TypeOf(Cannon{})); id != "s-cannon" {
		t.Errorf("file name tier: expected s-cannon, got %q", id)
	}

	// Package name (this test package is "search")
	if id := idx.Resolve(reflect.TypeOf(Turret{})); id != "s-search" {
		t.Errorf("package tier: expected s-search, got %q", id)
	}

	// Containing directory name, when no package clause matches
	dirOnly := NewScriptIndex([]*data.Script{{
		ID:     "s-dir",
		Name:   "util.bin",
		Path:   "scripts/search/util.bin",
		Source: []byte("not go source"),
	}})
	if id := dirOnly.Resolve(reflect.TypeOf(Turret{})); id != "s-dir" {
		t.Errorf("directory tier: expected s-dir, got %q", id)
	}

	// Explicit association wins over everything
	idx.Associate(reflect.TypeOf(Blaster{}), "s-pinned")
	if id := idx.Resolve(reflect.TypeOf(Blaster{})); id != "s-pinned" {
		t.Errorf("explicit tier: expected s-pinned, got %q", id)
	}
}

func TestTypeProcessor_RecordsDeclaredFieldType(t *testing.T) {
	p := NewTypeProcessor(NewScriptIndex(testScripts()))
	result := NewResult()

	// A nil-valued field still carries its declared type.
	fi := &crawler.FieldInfo{Name: "weapon", Type: reflect.TypeOf((*Blaster)(nil))}
	tc := crawler.NewContext(nil, "Root").ChildField(nil, "Root.weapon", fi)
	p.ProcessElement(nil, tc, "root", result)

	targets := result.Targets(TypeProcessorID)
	paths, ok := targets["s-weapons"]
	if !ok {
		t.Fatal("type reference not recorded for nil field")
	}
	if !paths.Contains("Root.weapon (Type: Blaster)") {
		t.Errorf("unexpected paths: %v", paths.Paths())
	}
}

func TestTypeProcessor_SliceElementTypes(t *testing.T) {
	p := NewTypeProcessor(NewScriptIndex(testScripts()))
	result := NewResult()

	fi := &crawler.FieldInfo{Name: "weapons", Type: reflect.TypeOf([]*Blaster(nil))}
	tc := crawler.NewContext(nil, "Root").ChildField(nil, "Root.weapons", fi)
	p.ProcessElement(nil, tc, "root", result)

	if _, ok := result.Targets(TypeProcessorID)["s-weapons"]; !ok {
		t.Error("slice element type not resolved")
	}
}

func TestTypeProcessor_IgnoresBuiltinsAndSelf(t *testing.T) {
	p := NewTypeProcessor(NewScriptIndex(testScripts()))
	result := NewResult()

	tc := crawler.NewContext(42, "Root.count")
	p.ProcessElement(42, tc, "root", result)
	if result.Len() != 0 {
		t.Errorf("builtin type produced a reference: %v", result)
	}

	// A script never references itself through its own types
	result = NewResult()
	node := Blaster{}
	p.ProcessElement(node, crawler.NewContext(node, "X"), "s-weapons", result)
	if result.Len() != 0 {
		t.Errorf("self type reference recorded: %v", result)
	}
}

func TestTypeProcessor_PackagePrefixes(t *testing.T) {
	p := NewTypeProcessor(NewScriptIndex(testScripts()), "example.com/other")
	result := NewResult()

	node := Blaster{}
	p.ProcessElement(node, crawler.NewContext(node, "X"), "root", result)
	if result.Len() != 0 {
		t.Errorf("out-of-prefix type was recorded: %v", result)
	}
}

func TestTypeProcessor_CachesResolution(t *testing.T) {
	idx := NewScriptIndex(testScripts())
	p := NewTypeProcessor(idx)

	node := Blaster{}
	first := NewResult()
	p.ProcessElement(node, crawler.NewContext(node, "X"), "root", first)

	// Re-pointing the index after the first resolution must not change
	// the processor's answer; it holds its own verdicts.
	idx.Associate(reflect.TypeOf(Blaster{}), "s-other")

	second := NewResult()
	p.ProcessElement(node, crawler.NewContext(node, "X"), "root", second)

	if _, ok := second.Targets(TypeProcessorID)["s-weapons"]; !ok {
		t.Errorf("cached resolution was not reused: %v", second)
	}
}
