package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"philately/catalog/internal/domain"
	"philately/catalog/internal/grouping"
)

func year(y int) *int { return &y }

func sampleTree() *grouping.Tree {
	records := []domain.StampRecord{
		{ID: "s1", SeriesName: "Silver Jubilee", IssueYear: year(1935)},
		{ID: "s2", SeriesName: "Silver Jubilee", IssueYear: year(1935)},
		{ID: "s3", SeriesName: "Definitive", IssueYear: year(1936)},
	}
	return grouping.Group(records, []domain.GroupingField{domain.GroupBySeriesName, domain.GroupByIssueYear}, "", "")
}

func TestCurrentLevelWalksPath(t *testing.T) {
	s := NewState()
	s.NavigateTo([]string{"Silver Jubilee", "1935"})

	level := s.CurrentLevel(sampleTree())
	require.True(t, level.IsLeaf())
	assert.Len(t, level.Records, 2)
}

func TestCurrentLevelResetsOnStalePath(t *testing.T) {
	s := NewState()
	s.NavigateTo([]string{"Silver Jubilee", "1999"})
	s.DisplayedCount = 90

	tree := sampleTree()
	level := s.CurrentLevel(tree)

	// Unresolvable path falls back to the root, never errors.
	assert.Same(t, tree, level)
	assert.Empty(t, s.Path)
	assert.Equal(t, InitialDisplayCount, s.DisplayedCount)
}

func TestCurrentLevelResetsWhenPathDescendsPastLeaf(t *testing.T) {
	s := NewState()
	s.NavigateTo([]string{"Silver Jubilee", "1935", "too-deep"})

	tree := sampleTree()
	level := s.CurrentLevel(tree)
	assert.Same(t, tree, level)
	assert.Empty(t, s.Path)
}

func TestNavigateToResetsDisplayCount(t *testing.T) {
	s := NewState()
	s.DisplayedCount = 60
	s.NavigateTo([]string{"Definitive"})

	assert.Equal(t, []string{"Definitive"}, s.Path)
	assert.Equal(t, InitialDisplayCount, s.DisplayedCount)
}

func TestNavigateToCopiesPath(t *testing.T) {
	path := []string{"Definitive"}
	s := NewState()
	s.NavigateTo(path)
	path[0] = "mutated"
	assert.Equal(t, []string{"Definitive"}, s.Path)
}

func TestScrollRevealsComputedData(t *testing.T) {
	records := make([]domain.StampRecord, 0, 40)
	for i := 0; i < 40; i++ {
		records = append(records, domain.StampRecord{ID: fmt.Sprintf("r%d", i)})
	}
	tree := grouping.Group(records, nil, "", "")

	s := NewState()
	s.NavigateTo([]string{grouping.FlatKey})

	loadCalled := false
	s.OnScrollNearBottom(tree, true, false, func() { loadCalled = true })

	// More data was already computed, so the scroll only widens the window.
	assert.Equal(t, InitialDisplayCount+displayIncrement, s.DisplayedCount)
	assert.False(t, loadCalled)
}

func TestScrollDelegatesPageLoadWhenRevealExhausted(t *testing.T) {
	tree := sampleTree()
	s := NewState()

	loadCalled := false
	s.OnScrollNearBottom(tree, true, false, func() { loadCalled = true })
	assert.True(t, loadCalled)
}

func TestScrollNoopAtEndOfData(t *testing.T) {
	tree := sampleTree()
	s := NewState()

	loadCalled := false
	s.OnScrollNearBottom(tree, false, true, func() { loadCalled = true })
	assert.False(t, loadCalled)
	assert.Equal(t, InitialDisplayCount, s.DisplayedCount)

	// Complete corpus: nothing left to fetch even though hasMore is stale.
	s.OnScrollNearBottom(tree, true, true, func() { loadCalled = true })
	assert.False(t, loadCalled)
}
