// Package grouping implements the pure, stateless grouping and aggregation
// engine behind the catalog browse views. Given an in-memory record set and
// an ordered list of grouping dimensions it produces a nested grouping tree;
// it performs no I/O and never mutates its inputs.
package grouping

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"
	log "github.com/sirupsen/logrus"

	"philately/catalog/internal/domain"
)

const (
	// maxDepth bounds tree recursion against pathological grouping lists.
	maxDepth = 10
	// maxGroupsPerLevel caps node fan-out so tree construction stays bounded
	// for any rendering of the tree. Overflow groups are truncated with a
	// warning, never an error.
	maxGroupsPerLevel = 100

	// FlatKey is the single group key used when no grouping levels are set.
	FlatKey = "All Stamps"
)

// Tree is a node in a grouping tree: either a leaf holding records or an
// internal node mapping group keys to subtrees. Nodes carry a stable arena id
// assigned at construction, which the counting walk uses as its visited set.
type Tree struct {
	id      uint32
	Key     string               `json:"key,omitempty"`
	Records []domain.StampRecord `json:"records,omitempty"`
	Groups  map[string]*Tree     `json:"groups,omitempty"`
}

// IsLeaf reports whether the node holds records directly.
func (t *Tree) IsLeaf() bool {
	return t != nil && t.Groups == nil
}

// Len is the number of immediate entries at this node: child groups for an
// internal node, records for a leaf.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	if t.IsLeaf() {
		return len(t.Records)
	}
	return len(t.Groups)
}

// SortedKeys returns the node's group keys in lexicographic order. The engine
// itself guarantees no key ordering; display layers sort at the edge.
func (t *Tree) SortedKeys() []string {
	if t == nil || t.Groups == nil {
		return nil
	}
	keys := make([]string, 0, len(t.Groups))
	for k := range t.Groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Group partitions records into a nested tree along the given levels, after
// applying the record-level search filter and the structural group-name
// filter. Identical inputs always yield structurally identical trees.
func Group(records []domain.StampRecord, levels []domain.GroupingField, searchTerm, groupSearchTerm string) *Tree {
	b := &builder{}

	filtered := filterRecords(records, searchTerm)

	root := b.newNode("")
	if len(levels) == 0 {
		root.Groups = map[string]*Tree{FlatKey: b.newLeaf(FlatKey, filtered)}
	} else {
		root.Groups = b.partition(filtered, levels, 0)
	}

	if term := strings.TrimSpace(groupSearchTerm); term != "" {
		root = filterGroups(root, strings.ToLower(term))
	}
	return root
}

// MatchesSearch reports whether a record survives the record-level filter:
// case-insensitive substring match, OR across name, series, country, color
// and formatted denomination.
func MatchesSearch(rec domain.StampRecord, searchTerm string) bool {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	if term == "" {
		return true
	}
	for _, field := range []string{
		rec.Name,
		rec.SeriesName,
		rec.Country,
		rec.Color,
		domain.FormatDenomination(rec.DenominationValue, rec.DenominationSymbol),
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// CountStamps recursively sums leaf record counts. It is nil-safe and guards
// against revisiting a node (a cycle would otherwise hang the walk) with a
// visited-id bitset over the arena ids.
func CountStamps(t *Tree) int {
	if t == nil {
		return 0
	}
	visited := roaring.New()
	return countStamps(t, visited)
}

func countStamps(t *Tree, visited *roaring.Bitmap) int {
	if t == nil || visited.Contains(t.id) {
		return 0
	}
	visited.Add(t.id)

	if t.IsLeaf() {
		return len(t.Records)
	}
	total := 0
	for _, child := range t.Groups {
		total += countStamps(child, visited)
	}
	return total
}

type builder struct {
	nextID uint32
}

func (b *builder) newNode(key string) *Tree {
	id := b.nextID
	b.nextID++
	return &Tree{id: id, Key: key}
}

func (b *builder) newLeaf(key string, records []domain.StampRecord) *Tree {
	n := b.newNode(key)
	n.Records = records
	return n
}

// partition splits records by the first level's accessor and recurses with
// the remaining levels. Children are built in sorted-key order so node ids
// are deterministic for identical inputs.
func (b *builder) partition(records []domain.StampRecord, levels []domain.GroupingField, depth int) map[string]*Tree {
	field := levels[0]
	buckets := make(map[string][]domain.StampRecord)
	for _, rec := range records {
		key := field.Accessor(rec)
		buckets[key] = append(buckets[key], rec)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > maxGroupsPerLevel {
		log.Warnf("⚠️ Truncating %d groups to %d at level %s", len(keys), maxGroupsPerLevel, field)
		keys = keys[:maxGroupsPerLevel]
	}

	groups := make(map[string]*Tree, len(keys))
	for _, key := range keys {
		subset := buckets[key]
		if len(levels) == 1 || depth+1 >= maxDepth {
			if len(levels) > 1 {
				log.Warnf("⚠️ Grouping depth cap reached at level %s, truncating remaining levels", levels[1])
			}
			groups[key] = b.newLeaf(key, subset)
			continue
		}
		child := b.newNode(key)
		child.Groups = b.partition(subset, levels[1:], depth+1)
		groups[key] = child
	}
	return groups
}

func filterRecords(records []domain.StampRecord, searchTerm string) []domain.StampRecord {
	if strings.TrimSpace(searchTerm) == "" {
		// Copy so later tree consumers can never alias the caller's slice.
		out := make([]domain.StampRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]domain.StampRecord, 0, len(records))
	for _, rec := range records {
		if MatchesSearch(rec, searchTerm) {
			out = append(out, rec)
		}
	}
	return out
}

// filterGroups prunes the tree structurally: a group survives iff its key
// contains the (lowercased) term or at least one descendant group survives.
// It never adds nodes, only drops them.
func filterGroups(node *Tree, term string) *Tree {
	if node == nil || node.Groups == nil {
		return nil
	}
	kept := make(map[string]*Tree)
	for key, child := range node.Groups {
		if strings.Contains(strings.ToLower(key), term) {
			kept[key] = child
			continue
		}
		if sub := filterGroups(child, term); sub != nil && len(sub.Groups) > 0 {
			kept[key] = sub
		}
	}
	return &Tree{id: node.id, Key: node.Key, Groups: kept}
}
