// Package wildcard implements the "*"/"~capture~" enumeration syntax: a
// directory-walk pattern that resolves to a set of concrete paths plus
// per-path variable bindings derived from the pattern's capture segments.
package wildcard

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ContainsWildcard reports whether p should be treated as a templated
// path: either a literal "*" or a "~name~" capture segment. A bare "*"
// has no associated variable name; a "~name~" segment both matches and
// binds.
func ContainsWildcard(p string) bool {
	return strings.ContainsAny(p, "*~")
}

// Match is one concrete file resolved from a wildcard pattern, plus the
// variable bindings derived from its capture segments.
type Match struct {
	Path string
	Vars map[string]string
}

// compiled holds the regexp translation of a pattern plus the directory
// prefix safe to start walking from (the portion of the pattern before
// the first wildcard character).
type compiled struct {
	base string
	re   *regexp.Regexp
}

// compile translates a pattern into an anchored regexp: "~name~" becomes
// a named capture group matching any run of non-separator characters,
// and a bare "*" becomes a plain, non-capturing "[^/]*" match within a
// single segment. All other characters are taken literally.
func compile(pattern string) *compiled {
	base := staticPrefix(pattern)

	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(pattern) {
		switch pattern[i] {
		case '~':
			end := strings.IndexByte(pattern[i+1:], '~')
			if end == -1 {
				// Unbalanced tilde: treat the rest literally.
				b.WriteString(regexp.QuoteMeta(pattern[i:]))
				i = len(pattern)
				continue
			}
			name := pattern[i+1 : i+1+end]
			b.WriteString("(?P<" + sanitizeGroupName(name) + ">[^/]*)")
			i = i + 1 + end + 1
		case '*':
			b.WriteString("[^/]*")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	return &compiled{base: base, re: re}
}

// sanitizeGroupName makes a capture variable name safe as a Go regexp
// named group (letters, digits, underscore only; every other character
// becomes '_'). The original name is not recovered: the variable is
// bound under the sanitized name, so "~file-name~" binds "file_name".
func sanitizeGroupName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "v"
	}
	return b.String()
}

// staticPrefix returns the directory portion of pattern that precedes
// its first wildcard character — the safe root to start walking from.
func staticPrefix(pattern string) string {
	idx := strings.IndexAny(pattern, "*~")
	if idx == -1 {
		return filepath.Dir(pattern)
	}
	prefix := pattern[:idx]
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		return prefix[:i]
	}
	return "."
}

// Enumerate walks the filesystem from pattern's static prefix and
// returns every concrete file matching pattern, with capture-derived
// variable bindings. The built-in skip list always applies; ignore, if
// non-nil, additionally filters out paths a .pipeignore excludes.
func Enumerate(readDir func(string) ([]string, []bool, error), pattern string, ignore *IgnoreCache) ([]Match, error) {
	c := compile(pattern)

	var matches []Match
	var walk func(dir string)
	walk = func(dir string) {
		names, isDir, err := readDir(dir)
		if err != nil {
			return
		}
		for i, name := range names {
			if builtinSkipDirs[name] {
				continue
			}
			full := filepath.Join(dir, name)
			if ignore != nil {
				if isDir[i] {
					ignore.VisitDir(full)
				}
				if ignore.ShouldIgnore(mustAbs(full)) {
					continue
				}
			}
			if isDir[i] {
				walk(full)
				continue
			}
			// The compiled regexp is anchored over the whole pattern,
			// including its static directory prefix, so match full as-is
			// rather than a path relative to c.base.
			m := c.re.FindStringSubmatch(filepath.ToSlash(full))
			if m == nil {
				continue
			}
			vars := make(map[string]string)
			for gi, gname := range c.re.SubexpNames() {
				if gi == 0 || gname == "" {
					continue
				}
				vars[gname] = m[gi]
			}
			matches = append(matches, Match{Path: full, Vars: vars})
		}
	}
	walk(c.base)

	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	return matches, nil
}

func mustAbs(p string) string {
	a, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return a
}
