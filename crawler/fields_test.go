package crawler

import (
	"reflect"
	"sort"
	"testing"

	"github.com/elmortem/assetfinder/data"
)

func childPaths(t *testing.T, node any, rootPath string) map[string]*Context {
	t.Helper()

	fc := NewFieldsCrawler()
	out := make(map[string]*Context)
	for child := range fc.Children(node, NewContext(node, rootPath)) {
		out[child.Path] = child
	}
	return out
}

func TestFieldsCrawler_TagRenameAndSkip(t *testing.T) {
	type holder struct {
		Ref     *data.Texture `asset:"ref"`
		Skipped *data.Texture `asset:"-"`
		Plain   *data.Texture
		hidden  *data.Texture
	}
	node := &holder{
		Ref:     &data.Texture{ID: "t1"},
		Skipped: &data.Texture{ID: "t2"},
		Plain:   &data.Texture{ID: "t3"},
		hidden:  &data.Texture{ID: "t4"},
	}

	children := childPaths(t, node, "Node")

	var got []string
	for p := range children {
		got = append(got, p)
	}
	sort.Strings(got)

	want := []string{"Node.Plain", "Node.ref"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFieldsCrawler_NilFieldStillEmitted(t *testing.T) {
	type holder struct {
		Ref *data.Texture
	}

	children := childPaths(t, &holder{}, "Node")

	child, ok := children["Node.Ref"]
	if !ok {
		t.Fatal("nil field was not emitted")
	}
	if child.Node != nil {
		t.Errorf("expected nil node, got %v", child.Node)
	}
	if child.Field == nil || child.Field.Type != reflect.TypeOf((*data.Texture)(nil)) {
		t.Error("declared field type not carried for nil value")
	}
}

func TestFieldsCrawler_SliceElements(t *testing.T) {
	type holder struct {
		Refs []*data.Texture
	}

	node := &holder{Refs: []*data.Texture{
		{ID: "t1"},
		nil,
		{ID: "t3"},
	}}

	children := childPaths(t, node, "Node")

	if _, ok := children["Node.Refs[0]"]; !ok {
		t.Error("missing Node.Refs[0]")
	}
	if _, ok := children["Node.Refs[1]"]; ok {
		t.Error("nil slice element was emitted")
	}
	if _, ok := children["Node.Refs[2]"]; !ok {
		t.Error("missing Node.Refs[2]")
	}
}

func TestFieldsCrawler_MaterialProperties(t *testing.T) {
	mat := &data.Material{
		ID:     "m",
		Name:   "Mat",
		Shader: &data.Shader{ID: "sh"},
		Properties: []data.TextureProperty{
			{Name: "texA", Texture: &data.Texture{ID: "ta"}},
			{Name: "texB", Texture: nil},
		},
	}

	children := childPaths(t, mat, "Mat")

	if _, ok := children["Mat.shader"]; !ok {
		t.Error("missing Mat.shader")
	}
	if _, ok := children["Mat.texA"]; !ok {
		t.Error("missing Mat.texA")
	}
	if _, ok := children["Mat.texB"]; ok {
		t.Error("unbound texture slot was emitted")
	}
}

func TestFieldsCrawler_SpriteRenderer(t *testing.T) {
	sr := &data.SpriteRenderer{Sprite: &data.Sprite{ID: "sp", Name: "Icon"}}

	children := childPaths(t, sr, "Node")
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if _, ok := children["Node.Sprite"]; !ok {
		t.Error("missing Node.Sprite")
	}
}

type providedFields struct {
	value *data.Texture
}

func (p *providedFields) AssetFields() []data.Field {
	return []data.Field{{
		Name:  "custom",
		Type:  reflect.TypeOf((*data.Texture)(nil)),
		Value: p.value,
	}}
}

func TestFieldsCrawler_FieldProvider(t *testing.T) {
	node := &providedFields{value: &data.Texture{ID: "t"}}

	children := childPaths(t, node, "Node")
	if _, ok := children["Node.custom"]; !ok {
		t.Errorf("provider-declared field missing, got %v", children)
	}
}
