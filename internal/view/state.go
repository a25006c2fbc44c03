// Package view tracks how much of the grouped, filtered catalog is
// materialized for display, and the user's drill-down position inside the
// grouping tree.
package view

import (
	log "github.com/sirupsen/logrus"

	"philately/catalog/internal/grouping"
)

const (
	// InitialDisplayCount is how many entries a freshly opened level shows.
	InitialDisplayCount = 15
	// displayIncrement is how many more entries each near-bottom scroll
	// reveals when data is already computed.
	displayIncrement = 15
)

// State is the infinite-scroll / navigation state for one catalog view.
type State struct {
	DisplayedCount int
	Path           []string
	IsLoadingMore  bool
}

func NewState() *State {
	return &State{DisplayedCount: InitialDisplayCount}
}

// CurrentLevel walks Path into the latest grouping tree and returns the node
// the user is looking at. A path segment that no longer resolves (the tree
// changed shape under the user, e.g. after a refresh or a grouping change)
// deterministically resets navigation to the root instead of failing.
func (s *State) CurrentLevel(tree *grouping.Tree) *grouping.Tree {
	node := tree
	for _, segment := range s.Path {
		if node == nil || node.Groups == nil {
			s.resetToRoot(segment)
			return tree
		}
		child, ok := node.Groups[segment]
		if !ok {
			s.resetToRoot(segment)
			return tree
		}
		node = child
	}
	return node
}

func (s *State) resetToRoot(segment string) {
	log.Warnf("⚠️ Navigation path segment %q no longer resolves, resetting to root", segment)
	s.Path = nil
	s.DisplayedCount = InitialDisplayCount
}

// OnScrollNearBottom interprets a near-bottom scroll signal. If the current
// level already holds more entries than are displayed, it just reveals more.
// Otherwise, while the corpus is incomplete and the store has unfetched
// pages, it delegates a page load. At the end of data it is a no-op.
func (s *State) OnScrollNearBottom(tree *grouping.Tree, hasMore, complete bool, loadPage func()) {
	level := s.CurrentLevel(tree)
	if level.Len() > s.DisplayedCount {
		s.DisplayedCount += displayIncrement
		return
	}
	if hasMore && !complete && loadPage != nil {
		s.IsLoadingMore = true
		loadPage()
		s.IsLoadingMore = false
	}
}

// NavigateTo replaces the navigation path and resets the display window.
func (s *State) NavigateTo(path []string) {
	s.Path = append([]string(nil), path...)
	s.DisplayedCount = InitialDisplayCount
}
