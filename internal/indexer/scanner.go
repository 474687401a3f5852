package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultSystemRoot is the system-wide application menu directory
const DefaultSystemRoot = "/usr/share/applications"

// UserRootSuffix is appended to the home directory to form the user root
const UserRootSuffix = ".local/share/applications"

// Extension marks candidate descriptor files
const Extension = ".desktop"

// Scanner enumerates .desktop files from the system root and the user root.
// Roots are injected; the scanner never reads the process environment.
type Scanner struct {
	SystemRoot string
	UserRoot   string
	// Shadow drops a system file when the user root holds a file with the same name
	Shadow bool
}

// NewScanner creates a scanner for systemRoot and the user root below home.
// An empty home disables the user root.
func NewScanner(systemRoot, home string) *Scanner {
	return &Scanner{
		SystemRoot: systemRoot,
		UserRoot:   UserRoot(home),
	}
}

// UserRoot returns the user application directory for home, or "" when home is empty
func UserRoot(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, UserRootSuffix)
}

// Roots returns the configured roots in precedence order, lowest first
func (s *Scanner) Roots() []string {
	roots := make([]string, 0, 2)
	if s.SystemRoot != "" {
		roots = append(roots, s.SystemRoot)
	}
	if s.UserRoot != "" {
		roots = append(roots, s.UserRoot)
	}
	return roots
}

// Discover returns absolute paths of .desktop files, system root first.
// Missing roots and unreadable entries contribute nothing.
func (s *Scanner) Discover() []string {
	var system, user []string
	if s.SystemRoot != "" {
		system = scanRoot(s.SystemRoot)
	}
	if s.UserRoot != "" {
		user = scanRoot(s.UserRoot)
	}

	if s.Shadow && len(user) > 0 {
		system = dropShadowed(system, user)
	}

	paths := make([]string, 0, len(system)+len(user))
	paths = append(paths, system...)
	paths = append(paths, user...)
	return paths
}

func scanRoot(rootPath string) []string {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		absRoot = rootPath
	}

	// ReadDir returns whatever it managed to read before an error
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		log.Debug("scan root", "root", absRoot, "err", err)
	}

	var paths []string
	for _, entry := range entries {
		if !hasExtension(entry.Name()) {
			continue
		}

		path := filepath.Join(absRoot, entry.Name())
		if !isCandidate(path, entry) {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// hasExtension reports whether name ends in .desktop after a non-empty stem
func hasExtension(name string) bool {
	stem, ok := strings.CutSuffix(name, Extension)
	return ok && stem != ""
}

func isCandidate(path string, entry os.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&os.ModeSymlink == 0 {
		return false
	}

	// Follow symlinks; dangling links are skipped
	info, err := os.Stat(path)
	if err != nil {
		log.Debug("skip entry", "path", path, "err", err)
		return false
	}
	return !info.IsDir()
}

func dropShadowed(system, user []string) []string {
	overridden := make(map[string]bool, len(user))
	for _, p := range user {
		overridden[filepath.Base(p)] = true
	}

	kept := system[:0]
	for _, p := range system {
		if overridden[filepath.Base(p)] {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
