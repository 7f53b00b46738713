// Package assetfinder answers "who references this asset?" for projects
// built from interlinked object graphs: composites, scenes, materials
// and the units they point at.
//
// A Finder crawls every unit the repository lists, records each
// discovered reference with its traversal path, and keeps the resulting
// inverted index warm between runs through a pluggable store. Units
// whose fingerprint has not changed are never recrawled; filesystem
// watching feeds changed units back into the index incrementally.
//
//	finder, err := assetfinder.New(repo)
//	if err != nil { ... }
//	defer finder.Close(ctx)
//
//	if err := finder.Rebuild(ctx, false, nil); err != nil { ... }
//	refs, err := finder.FindReferences(ctx, textureID)
//
// Reference discovery itself is pluggable: processors decide what
// counts as a reference, and each keeps its own partition of the index.
// The default processor tracks direct object references and composite
// origin aliases; the type processor tracks which script declared each
// referenced Go type.
package assetfinder
