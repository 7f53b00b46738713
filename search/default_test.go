package search

import (
	"reflect"
	"testing"

	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
)

type mapResolver map[data.ID]data.Asset

func (m mapResolver) Canonical(id data.ID) data.Asset {
	return m[id]
}

func TestDefaultProcessor_RecordsAssetNodes(t *testing.T) {
	p := NewDefaultProcessor(nil)
	result := NewResult()

	tex := &data.Texture{ID: "tex"}
	p.ProcessElement(tex, crawler.NewContext(tex, "Mat.texA"), "mat", result)

	targets := result.Targets(DefaultProcessorID)
	paths, ok := targets["tex"]
	if !ok {
		t.Fatal("texture reference not recorded")
	}
	if !paths.Contains("Mat.texA") {
		t.Errorf("expected path Mat.texA, got %v", paths.Paths())
	}
}

func TestDefaultProcessor_SkipsSelfReference(t *testing.T) {
	p := NewDefaultProcessor(nil)
	result := NewResult()

	mat := &data.Material{ID: "mat", Name: "Mat"}
	p.ProcessElement(mat, crawler.NewContext(mat, "Mat"), "mat", result)

	if result.Len() != 0 {
		t.Errorf("self reference was recorded: %v", result)
	}
}

func TestDefaultProcessor_OriginAliases(t *testing.T) {
	source := &data.Composite{ID: "template", Name: "Template"}
	resolver := mapResolver{"template": source}

	p := NewDefaultProcessor(resolver)
	result := NewResult()

	instance := &data.Composite{
		ID:     "instance",
		Name:   "Instance",
		Origin: &data.Origin{Source: "template"},
	}
	p.ProcessElement(instance, crawler.NewContext(instance, "Scene/Instance"), "scene", result)

	targets := result.Targets(DefaultProcessorID)
	if _, ok := targets["instance"]; !ok {
		t.Error("instance itself not recorded")
	}
	if _, ok := targets["template"]; !ok {
		t.Error("origin source not recorded")
	}
}

func TestDefaultProcessor_RejectsStaleOrigin(t *testing.T) {
	// The resolver answers with an asset reporting a different identity,
	// meaning the origin points at a replaced unit.
	resolver := mapResolver{"old": &data.Composite{ID: "new"}}

	p := NewDefaultProcessor(resolver)
	result := NewResult()

	instance := &data.Composite{ID: "i", Origin: &data.Origin{Source: "old"}}
	p.ProcessElement(instance, crawler.NewContext(instance, "X"), "scene", result)

	if _, ok := result.Targets(DefaultProcessorID)["old"]; ok {
		t.Error("stale origin alias was recorded")
	}
}

func TestDefaultProcessor_CrawlDeeper(t *testing.T) {
	p := NewDefaultProcessor(nil)

	mat := &data.Material{ID: "mat"}
	root := crawler.NewContext(mat, "Mat")
	if !p.ShouldCrawlDeeper(mat, root) {
		t.Error("descent vetoed at the crawl root")
	}

	fi := &crawler.FieldInfo{Name: "ref", Type: reflect.TypeOf(mat)}
	viaField := root.ChildField(mat, "Mat.ref", fi)
	if p.ShouldCrawlDeeper(mat, viaField) {
		t.Error("descent into a referenced asset was not vetoed")
	}

	plain := struct{ X int }{}
	if !p.ShouldCrawlDeeper(plain, root.ChildField(plain, "Mat.x", fi)) {
		t.Error("descent vetoed for a non-asset value")
	}
}
