package crawler

import (
	"iter"

	"github.com/elmortem/assetfinder/data"
)

// SceneCrawler handles top-level scene documents: it opens the scene if
// it is not resident, emits one child per root composite (path suffix
// "/rootName") and restores the prior open state afterwards. A scene
// that was already open, or is the active scene, is left open.
type SceneCrawler struct{}

func NewSceneCrawler() *SceneCrawler {
	return &SceneCrawler{}
}

func (*SceneCrawler) CanCrawl(node any) bool {
	_, ok := node.(*data.Scene)
	return ok
}

func (*SceneCrawler) Children(node any, tc *Context) iter.Seq[*Context] {
	return func(yield func(*Context) bool) {
		scene, ok := node.(*data.Scene)
		if !ok || scene == nil {
			return
		}
		wasOpen := scene.IsOpen()
		if !wasOpen {
			if err := scene.Open(); err != nil {
				return
			}
		}
		defer func() {
			if !wasOpen && !scene.Active {
				scene.Close()
			}
		}()
		for _, root := range scene.Roots() {
			if root == nil || root.Destroyed() {
				continue
			}
			if !yield(tc.Child(root, tc.Path+"/"+root.Name)) {
				return
			}
		}
	}
}
