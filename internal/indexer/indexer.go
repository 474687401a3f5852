package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses bursts of file events into one rebuild
const debounceDelay = 200 * time.Millisecond

// Indexer owns the published CategoryIndex and rebuilds it from the scanner
type Indexer struct {
	scanner *Scanner
	mu      sync.RWMutex
	index   *CategoryIndex
	paths   []string
	// rebuild serialises Reindex calls
	rebuild sync.Mutex
}

// NewIndexer creates an indexer with an empty published index
func NewIndexer(scanner *Scanner) *Indexer {
	empty := newCategoryIndex()
	empty.seal()
	return &Indexer{
		scanner: scanner,
		index:   empty,
	}
}

// Reindex discovers files, builds a new index and publishes it.
// Readers keep seeing the previous index until the new one is complete.
// A cancelled rebuild is not published. Returns the number of discovered
// files, also when cancelled.
func (idx *Indexer) Reindex(ctx context.Context) int {
	idx.rebuild.Lock()
	defer idx.rebuild.Unlock()

	paths := idx.scanner.Discover()
	next := Build(ctx, paths)
	if ctx.Err() != nil {
		log.Debug("reindex cancelled, keeping previous index", "indexed", next.Files(), "discovered", len(paths))
		return len(paths)
	}

	idx.mu.Lock()
	idx.index = next
	idx.paths = paths
	idx.mu.Unlock()

	log.Debug("reindexed", "files", len(paths), "categories", next.Len())
	return len(paths)
}

// Index returns the currently published index
func (idx *Indexer) Index() *CategoryIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.index
}

// Paths returns the file list behind the published index
func (idx *Indexer) Paths() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	result := make([]string, len(idx.paths))
	copy(result, idx.paths)
	return result
}

// Scanner returns the scanner used for discovery
func (idx *Indexer) Scanner() *Scanner {
	return idx.scanner
}

// Watch rebuilds the index whenever a .desktop file in one of the roots
// changes, until ctx is cancelled. A root that does not exist yet is
// picked up once it is created: its nearest existing parent is watched
// until then.
func (idx *Indexer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	pending, _ := watchRoots(w, idx.scanner.Roots())
	log.Info("watch: started", "roots", len(idx.scanner.Roots())-len(pending), "pending", len(pending))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceDelay)
		} else {
			timer.Reset(debounceDelay)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("watch: stopped")
			return nil

		case <-fire:
			fire = nil
			if len(pending) > 0 {
				pending, _ = watchRoots(w, pending)
			}
			n := idx.Reindex(ctx)
			log.Info("watch: reindexed", "files", n)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if len(pending) > 0 && ev.Op&fsnotify.Create != 0 && leadsToRoot(ev.Name, pending) {
				log.Debug("watch: path towards root created", "path", ev.Name)
				pending, _ = watchRoots(w, pending)
				schedule()
				continue
			}

			if filepath.Ext(ev.Name) != Extension {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("watch: event", "path", ev.Name, "op", ev.Op.String())
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch: error", "err", err)
		}
	}
}

// watchRoots adds every existing root to w. For a missing root its nearest
// existing parent is watched instead. Returns the roots still missing and
// the number of roots added.
func watchRoots(w *fsnotify.Watcher, roots []string) ([]string, int) {
	var missing []string
	added := 0
	for _, root := range roots {
		if isDir(root) {
			if err := w.Add(root); err != nil {
				log.Warn("watch: add root failed", "root", root, "err", err)
				continue
			}
			added++
			continue
		}

		missing = append(missing, root)
		parent := filepath.Dir(root)
		for !isDir(parent) && parent != filepath.Dir(parent) {
			parent = filepath.Dir(parent)
		}
		if err := w.Add(parent); err != nil {
			log.Debug("watch: add parent failed", "root", root, "parent", parent, "err", err)
		}
	}
	return missing, added
}

// leadsToRoot reports whether path is one of roots or a directory above one
func leadsToRoot(path string, roots []string) bool {
	path = filepath.Clean(path)
	for _, root := range roots {
		root = filepath.Clean(root)
		if root == path || strings.HasPrefix(root, path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
