package crawler

import (
	"fmt"
	"iter"
	"reflect"
	"sync"

	"github.com/elmortem/assetfinder/data"
)

// FieldsCrawler is the fallback crawler: it enumerates the crawlable
// fields of any object that is not a composite node and not a scene
// document. Types implementing data.FieldProvider supply their fields
// explicitly; everything else is reflected over once per type, with the
// result memoized process-wide.
//
// Two built-in shapes bypass field discovery and emit children from
// their property tables instead: the sprite renderer (single sprite
// slot) and the material (shader plus named texture slots).
type FieldsCrawler struct{}

func NewFieldsCrawler() *FieldsCrawler {
	return &FieldsCrawler{}
}

func (*FieldsCrawler) CanCrawl(node any) bool {
	switch node.(type) {
	case *data.Composite, *data.Scene:
		return false
	}
	return true
}

func (*FieldsCrawler) Children(node any, tc *Context) iter.Seq[*Context] {
	return func(yield func(*Context) bool) {
		if node == nil {
			return
		}

		switch obj := node.(type) {
		case *data.SpriteRenderer:
			if obj != nil && obj.Sprite != nil {
				yield(tc.Child(obj.Sprite, tc.Path+".Sprite"))
			}
			return
		case *data.Material:
			materialChildren(obj, tc, yield)
			return
		}

		if fp, ok := node.(data.FieldProvider); ok {
			for _, f := range fp.AssetFields() {
				if !emitField(tc, f, yield) {
					return
				}
			}
			return
		}

		v := reflect.ValueOf(node)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return
		}
		for _, sf := range crawlableFields(v.Type()) {
			f := data.Field{
				Name:  sf.name,
				Type:  sf.typ,
				Value: v.FieldByIndex(sf.index).Interface(),
			}
			if !emitField(tc, f, yield) {
				return
			}
		}
	}
}

// materialChildren emits the shader and every bound texture slot,
// resolved through the material's property table.
func materialChildren(m *data.Material, tc *Context, yield func(*Context) bool) {
	if m == nil {
		return
	}
	if m.Shader != nil {
		if !yield(tc.Child(m.Shader, tc.Path+".shader")) {
			return
		}
	}
	for _, prop := range m.Properties {
		if prop.Texture == nil {
			continue
		}
		if !yield(tc.Child(prop.Texture, tc.Path+"."+prop.Name)) {
			return
		}
	}
}

// emitField yields child contexts for one field. Slice and array values
// produce one child per non-nil element with an indexed path suffix;
// everything else produces a single child, even when the value is nil,
// so processors can still match the declared type.
func emitField(tc *Context, f data.Field, yield func(*Context) bool) bool {
	v := reflect.ValueOf(f.Value)
	if v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
		var elemType reflect.Type
		if f.Type != nil && (f.Type.Kind() == reflect.Slice || f.Type.Kind() == reflect.Array) {
			elemType = f.Type.Elem()
		}
		for i := 0; i < v.Len(); i++ {
			item := v.Index(i)
			if isNil(item) {
				continue
			}
			fi := &FieldInfo{Name: f.Name, Type: elemType}
			path := fmt.Sprintf("%s.%s[%d]", tc.Path, f.Name, i)
			if !yield(tc.ChildField(item.Interface(), path, fi)) {
				return false
			}
		}
		return true
	}

	value := f.Value
	if !v.IsValid() || isNil(v) {
		value = nil
	}
	fi := &FieldInfo{Name: f.Name, Type: f.Type}
	return yield(tc.ChildField(value, tc.Path+"."+f.Name, fi))
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

type crawlableField struct {
	name  string
	typ   reflect.Type
	index []int
}

// fieldCache memoizes the crawlable-field set per struct type for the
// life of the process. Types are immutable, so entries never invalidate.
var fieldCache sync.Map // reflect.Type -> []crawlableField

// crawlableFields returns the exported fields of t that take part in
// crawling. The "asset" struct tag renames a field in paths; "-" skips
// it entirely.
func crawlableFields(t reflect.Type) []crawlableField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]crawlableField)
	}
	fields := make([]crawlableField, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("asset"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, crawlableField{name: name, typ: sf.Type, index: sf.Index})
	}
	cached, _ := fieldCache.LoadOrStore(t, fields)
	return cached.([]crawlableField)
}
