package search

import (
	"path"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
)

// TypeProcessorID is the partition identifier of the type reference
// processor.
const TypeProcessorID = "assetfinder.typeref"

var (
	typeDeclRe = regexp.MustCompile(`(?m)^\s*type\s+(\w+)\b`)
	packageRe  = regexp.MustCompile(`(?m)^package\s+(\w+)`)
)

// ScriptIndex maps Go types to the script units declaring them. Lookups
// resolve through tiers, strongest first: explicit association, declared
// type name, file base name, package clause, containing directory name.
type ScriptIndex struct {
	mu        sync.RWMutex
	explicit  map[reflect.Type]data.ID
	byDecl    map[string]data.ID
	byBase    map[string]data.ID
	byPackage map[string]data.ID
	byDir     map[string]data.ID
}

// NewScriptIndex scans the given scripts' sources once and builds the
// lookup tables. Later declarations never displace earlier ones, so the
// caller's ordering decides ties.
func NewScriptIndex(scripts []*data.Script) *ScriptIndex {
	idx := &ScriptIndex{
		explicit:  make(map[reflect.Type]data.ID),
		byDecl:    make(map[string]data.ID),
		byBase:    make(map[string]data.ID),
		byPackage: make(map[string]data.ID),
		byDir:     make(map[string]data.ID),
	}
	for _, s := range scripts {
		if s == nil || s.ID.IsZero() {
			continue
		}
		for _, m := range typeDeclRe.FindAllSubmatch(s.Source, -1) {
			setIfAbsent(idx.byDecl, string(m[1]), s.ID)
		}
		if m := packageRe.FindSubmatch(s.Source); m != nil {
			setIfAbsent(idx.byPackage, string(m[1]), s.ID)
		}
		base := strings.TrimSuffix(path.Base(s.Path), path.Ext(s.Path))
		if base != "" && base != "." {
			setIfAbsent(idx.byBase, base, s.ID)
		}
		if dir := path.Base(path.Dir(s.Path)); dir != "" && dir != "." && dir != "/" {
			setIfAbsent(idx.byDir, dir, s.ID)
		}
	}
	return idx
}

// Associate pins t to a script unit, overriding every scanned tier.
func (idx *ScriptIndex) Associate(t reflect.Type, id data.ID) {
	idx.mu.Lock()
	idx.explicit[t] = id
	idx.mu.Unlock()
}

// Resolve finds the script unit for t; the zero ID means no tier
// matched.
func (idx *ScriptIndex) Resolve(t reflect.Type) data.ID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if id, ok := idx.explicit[t]; ok {
		return id
	}
	if id, ok := idx.byDecl[t.Name()]; ok {
		return id
	}
	if id, ok := idx.byBase[t.Name()]; ok {
		return id
	}
	pkg := path.Base(t.PkgPath())
	if id, ok := idx.byPackage[pkg]; ok {
		return id
	}
	if id, ok := idx.byDir[pkg]; ok {
		return id
	}
	return ""
}

func setIfAbsent(m map[string]data.ID, key string, id data.ID) {
	if _, ok := m[key]; !ok {
		m[key] = id
	}
}

// TypeProcessor records a reference to a script unit whenever a node's
// type, or a field's declared type, was declared by that script. The
// declared type is taken from the traversal context, so a nil-valued
// field still counts as using its type.
type TypeProcessor struct {
	index    *ScriptIndex
	prefixes []string

	mu    sync.Mutex
	cache map[reflect.Type]data.ID // zero ID caches a known miss
}

// NewTypeProcessor builds the processor. When prefixes is non-empty,
// only types whose package path starts with one of them are considered;
// otherwise every non-stdlib named type is.
func NewTypeProcessor(index *ScriptIndex, prefixes ...string) *TypeProcessor {
	return &TypeProcessor{
		index:    index,
		prefixes: prefixes,
		cache:    make(map[reflect.Type]data.ID),
	}
}

func (*TypeProcessor) ID() string {
	return TypeProcessorID
}

// ShouldCrawlDeeper never vetoes; type usage below an asset boundary is
// the default processor's call, not this one's.
func (*TypeProcessor) ShouldCrawlDeeper(node any, tc *crawler.Context) bool {
	return true
}

func (p *TypeProcessor) ProcessElement(node any, tc *crawler.Context, source data.ID, result Result) {
	var t reflect.Type
	if tc.Field != nil && tc.Field.Type != nil {
		t = tc.Field.Type
	} else if node != nil {
		t = reflect.TypeOf(node)
	}
	if t == nil {
		return
	}
	p.record(t, tc.Path, source, result)
}

// record resolves t and any element types it wraps, adding one reference
// per resolved script.
func (p *TypeProcessor) record(t reflect.Type, tcPath string, source data.ID, result Result) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		p.record(t.Elem(), tcPath, source, result)
		return
	}
	if !p.eligible(t) {
		return
	}
	id := p.resolve(t)
	if id.IsZero() || id == source {
		return
	}
	result.Add(TypeProcessorID, id, tcPath+" (Type: "+t.Name()+")")
}

// eligible filters out unnamed, builtin and stdlib types. A stdlib
// package path has no dot in its first segment.
func (p *TypeProcessor) eligible(t reflect.Type) bool {
	if t.Name() == "" {
		return false
	}
	pkg := t.PkgPath()
	if pkg == "" {
		return false
	}
	if len(p.prefixes) > 0 {
		for _, prefix := range p.prefixes {
			if strings.HasPrefix(pkg, prefix) {
				return true
			}
		}
		return false
	}
	first := pkg
	if i := strings.IndexByte(first, '/'); i >= 0 {
		first = first[:i]
	}
	return strings.ContainsRune(first, '.')
}

func (p *TypeProcessor) resolve(t reflect.Type) data.ID {
	p.mu.Lock()
	id, ok := p.cache[t]
	p.mu.Unlock()
	if ok {
		return id
	}
	id = p.index.Resolve(t)
	p.mu.Lock()
	p.cache[t] = id
	p.mu.Unlock()
	return id
}
