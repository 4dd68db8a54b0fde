package wildcard

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// builtinSkipDirs mirrors the teacher's scanner.IgnoredDirs: directories
// a wildcard walk never descends into regardless of any .pipeignore
// file.
var builtinSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".hg":          true,
	".svn":         true,
}

// IgnoreCache loads nested ".pipeignore" files lazily as directories are
// visited during enumeration, the same nested-gitignore approach as
// scanner.GitIgnoreCache, retargeted at build-pipeline inputs instead of
// source trees.
type IgnoreCache struct {
	root     string
	patterns map[string][]string
	visited  map[string]struct{}
}

// NewIgnoreCache creates a cache rooted at root.
func NewIgnoreCache(root string) *IgnoreCache {
	absRoot, _ := filepath.Abs(root)
	c := &IgnoreCache{
		root:     absRoot,
		patterns: make(map[string][]string),
		visited:  make(map[string]struct{}),
	}
	c.tryLoad(absRoot)
	return c
}

func (c *IgnoreCache) tryLoad(dir string) {
	if _, seen := c.visited[dir]; seen {
		return
	}
	c.visited[dir] = struct{}{}

	f, err := os.Open(filepath.Join(dir, ".pipeignore"))
	if err != nil {
		return
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		c.patterns[dir] = lines
	}
}

// ShouldIgnore reports whether absPath should be skipped, combining
// every applicable .pipeignore from root to leaf (later/child rules can
// negate earlier/parent ones, same as git's own evaluation order).
func (c *IgnoreCache) ShouldIgnore(absPath string) bool {
	if len(c.patterns) == 0 {
		return false
	}

	var dirs []string
	for dir := filepath.Dir(absPath); ; dir = filepath.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == c.root || dir == filepath.Dir(dir) {
			break
		}
	}

	var all []string
	for i := len(dirs) - 1; i >= 0; i-- {
		all = append(all, c.patterns[dirs[i]]...)
	}
	if len(all) == 0 {
		return false
	}

	combined := ignore.CompileIgnoreLines(all...)
	relPath, _ := filepath.Rel(c.root, absPath)
	return combined.MatchesPath(relPath)
}

// VisitDir is called by the walker on every directory it descends into,
// loading any .pipeignore found there.
func (c *IgnoreCache) VisitDir(absPath string) {
	c.tryLoad(absPath)
}
