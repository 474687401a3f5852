package indexer

import (
	"sort"
)

// Uncategorized collects entries without usable categories and files that fail to parse
const Uncategorized = "Uncategorized"

// Item is a single row of a category bucket
type Item struct {
	Name string // Display name: the file's base name
	Path string // Absolute path to the .desktop file
}

// Group is one category with its entries
type Group struct {
	Category string
	Items    []Item
}

// CategoryIndex maps category names to entries.
// It is read-only once built; rebuilding produces a new index.
type CategoryIndex struct {
	buckets map[string][]Item
	names   []string
	files   int
}

func newCategoryIndex() *CategoryIndex {
	return &CategoryIndex{
		buckets: make(map[string][]Item),
	}
}

func (ci *CategoryIndex) add(categories []string, item Item) {
	for _, cat := range categories {
		ci.buckets[cat] = append(ci.buckets[cat], item)
	}
	ci.files++
}

// seal fixes the category order
func (ci *CategoryIndex) seal() {
	ci.names = make([]string, 0, len(ci.buckets))
	for name := range ci.buckets {
		ci.names = append(ci.names, name)
	}
	sort.Strings(ci.names)
}

// Categories returns category names in ordinal order
func (ci *CategoryIndex) Categories() []string {
	result := make([]string, len(ci.names))
	copy(result, ci.names)
	return result
}

// Entries returns the entries of a category in discovery order
func (ci *CategoryIndex) Entries(category string) []Item {
	items := ci.buckets[category]
	result := make([]Item, len(items))
	copy(result, items)
	return result
}

// Count returns the number of entries in a category
func (ci *CategoryIndex) Count(category string) int {
	return len(ci.buckets[category])
}

// Groups returns every category with its entries, sorted by category
func (ci *CategoryIndex) Groups() []Group {
	groups := make([]Group, 0, len(ci.names))
	for _, name := range ci.names {
		groups = append(groups, Group{Category: name, Items: ci.Entries(name)})
	}
	return groups
}

// Len returns the number of categories
func (ci *CategoryIndex) Len() int {
	return len(ci.names)
}

// Files returns the number of files that were indexed
func (ci *CategoryIndex) Files() int {
	return ci.files
}
