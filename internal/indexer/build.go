package indexer

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/0xADE/ade-dentry/internal/indexer/desktop"
)

// Build parses every path and groups the results by category.
//
// An entry listing N categories lands in N buckets. Entries without usable
// categories and files that fail to parse land in Uncategorized. Per-file
// failures never fail the build. When ctx is cancelled the remaining paths
// are abandoned and the partial index is returned.
func Build(ctx context.Context, paths []string) *CategoryIndex {
	ci := newCategoryIndex()

	for _, path := range paths {
		if ctx.Err() != nil {
			log.Debug("index build cancelled", "indexed", ci.files, "total", len(paths))
			break
		}

		item := Item{Name: filepath.Base(path), Path: path}
		ci.add(categoriesOf(path), item)
	}

	ci.seal()
	return ci
}

func categoriesOf(path string) []string {
	file, err := desktop.ParseFile(path)
	if err != nil {
		log.Debug("uncategorized file", "path", path, "err", err)
		return []string{Uncategorized}
	}

	cats := uniq(file.Entry.CategoryList())
	if len(cats) == 0 {
		return []string{Uncategorized}
	}
	return cats
}

// uniq drops repeated categories within one entry, keeping first occurrences
func uniq(cats []string) []string {
	seen := make(map[string]bool, len(cats))
	result := cats[:0]
	for _, cat := range cats {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		result = append(result, cat)
	}
	return result
}
