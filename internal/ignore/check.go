package ignore

import (
	"path"
	"path/filepath"
	"strings"
)

// IsExcluded reports whether rel (relative to the root) is excluded. A path
// under an excluded directory is excluded regardless of later rules for the
// path itself, matching git's behaviour.
func (rs *RuleSet) IsExcluded(rel string, isDir bool) bool {
	_, excluded, _ := rs.Match(rel, isDir)
	return excluded
}

// Match returns the deciding pattern for rel along with its verdict. matched
// is false when no rule applies.
func (rs *RuleSet) Match(rel string, isDir bool) (pattern string, excluded bool, matched bool) {
	if rs == nil || rs.engine == nil {
		return "", false, false
	}

	rel = normalize(rel)
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false, false
	}

	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if p, ex, ok := rs.relative(dir, true); ok && ex {
			rs.logger.Debug("ignore: %q excluded by parent %q (%s)", rel, dir, p)
			return p, true, true
		}
	}

	return rs.relative(rel, isDir)
}

func (rs *RuleSet) relative(rel string, isDir bool) (pattern string, excluded bool, matched bool) {
	defer func() {
		if r := recover(); r != nil {
			rs.logger.Error("PANIC recovered in gitignore library for path %q: %v", rel, r)
			pattern, excluded, matched = "", false, false
		}
	}()

	m := rs.engine.Relative(rel, isDir)
	if m == nil {
		return "", false, false
	}
	return m.String(), m.Ignore(), true
}

func normalize(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" {
		return ""
	}
	return strings.TrimSuffix(path.Clean(rel), "/")
}
