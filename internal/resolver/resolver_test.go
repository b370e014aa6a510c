package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/ignore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// tree creates files (slash paths, relative to root) with dummy content.
func tree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(f)), "content of "+f+"\n")
	}
}

func displayPaths(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.DisplayPath)
	}
	return out
}

func resolve(t *testing.T, root string, cfg MatchConfig, rules *ignore.RuleSet, raw string) ([]Candidate, *Resolver) {
	t.Helper()
	arg, err := Classify(root, raw)
	require.NoError(t, err)
	r := New(cfg, rules, WithRoot(root))
	cands, err := r.Resolve(arg)
	require.NoError(t, err)
	return cands, r
}

func TestClassify(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.go", "src/b.go")

	tests := []struct {
		raw  string
		kind Kind
	}{
		{"a.go", KindLiteral},
		{"src", KindDirectory},
		{".", KindDirectory},
		{"*.go", KindPattern},
		{"src/**/*.go", KindPattern},
		{"src/{a,b}.go", KindPattern},
		{"file?.txt", KindPattern},
		{"[ab].go", KindPattern},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			arg, err := Classify(root, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, arg.Kind)
			assert.Equal(t, tt.raw, arg.Raw)
			assert.True(t, filepath.IsAbs(arg.Path))
		})
	}
}

func TestClassifyExistingPathWinsOverPattern(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "weird[1].txt")

	arg, err := Classify(root, "weird[1].txt")
	require.NoError(t, err)
	assert.Equal(t, KindLiteral, arg.Kind)
}

func TestClassifyErrors(t *testing.T) {
	root := t.TempDir()

	_, err := Classify(root, "missing.txt")
	assert.ErrorIs(t, err, diag.ErrPathNotFound)
	assert.Contains(t, err.Error(), "missing.txt")

	_, err = Classify(root, "-")
	assert.ErrorIs(t, err, diag.ErrStdinUnsupported)

	_, err = Classify(root, "  ")
	assert.ErrorIs(t, err, diag.ErrPathNotFound)
}

func TestRecursionToggle(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "dir/top.txt", "dir/nested/deep.txt")

	flat, r := resolve(t, root, MatchConfig{}, nil, "dir")
	assert.Equal(t, []string{"dir/top.txt"}, displayPaths(flat))
	assert.Contains(t, r.Skipped(), SkippedItem{Path: "dir/nested", Reason: ReasonSkippedNoRecurse, IsDir: true})

	deep, _ := resolve(t, root, MatchConfig{Recursive: true}, nil, "dir")
	assert.Equal(t, []string{"dir/nested/deep.txt", "dir/top.txt"}, displayPaths(deep))
}

func TestWalkOrderIsDepthFirstLexicographic(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "b.txt", "a/z.txt", "a/b/c.txt", "a.txt", "c/a.txt")

	cands, _ := resolve(t, root, MatchConfig{Recursive: true}, nil, ".")
	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "a.txt", "b.txt", "c/a.txt"}, displayPaths(cands))

	for _, c := range cands {
		assert.FileExists(t, c.AbsPath)
	}
}

func TestWalkDisplayPathKeepsArgumentPrefix(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "src/pkg/a.go")

	cands, _ := resolve(t, root, MatchConfig{Recursive: true}, nil, "./src/")
	assert.Equal(t, []string{"src/pkg/a.go"}, displayPaths(cands))
}

func TestIgnoreFileSemantics(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.log", "keep.log", "b.py")
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n!keep.log\n")

	rules, err := ignore.Load(root)
	require.NoError(t, err)

	cands, r := resolve(t, root, MatchConfig{UseIgnoreFile: true}, rules, ".")
	assert.Equal(t, []string{"b.py", "keep.log"}, displayPaths(cands))
	assert.Contains(t, r.Skipped(), SkippedItem{Path: "a.log", Reason: ReasonIgnoredRule})

	all, _ := resolve(t, root, MatchConfig{}, rules, ".")
	assert.Equal(t, []string{".gitignore", "a.log", "b.py", "keep.log"}, displayPaths(all))
}

func TestIgnoredDirectoryIsPruned(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "main.go", "build/out.go", "build/deep/x.go", ".git/HEAD")
	writeFile(t, filepath.Join(root, ".gitignore"), "build/\n")

	rules, err := ignore.Load(root)
	require.NoError(t, err)

	cands, r := resolve(t, root, MatchConfig{Recursive: true, UseIgnoreFile: true}, rules, ".")
	assert.Equal(t, []string{"main.go"}, displayPaths(cands))

	skipped := r.Skipped()
	assert.Contains(t, skipped, SkippedItem{Path: "build", Reason: ReasonIgnoredRule, IsDir: true})
	assert.Contains(t, skipped, SkippedItem{Path: ".git", Reason: ReasonIgnoredRule, IsDir: true})
	for _, s := range skipped {
		assert.False(t, strings.HasPrefix(s.Path, "build/"), "pruned subtree must not be visited: %s", s.Path)
	}
}

func TestIgnoreRulesRelativeToRuleRoot(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "sub/gen/a.go", "sub/b.go")
	writeFile(t, filepath.Join(root, ".gitignore"), "/sub/gen/\n")

	rules, err := ignore.Load(root)
	require.NoError(t, err)

	cands, _ := resolve(t, root, MatchConfig{Recursive: true, UseIgnoreFile: true}, rules, "sub")
	assert.Equal(t, []string{"sub/b.go"}, displayPaths(cands))
}

func TestLiteralBypassesFilters(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "debug.log")
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")

	rules, err := ignore.Load(root)
	require.NoError(t, err)

	cfg := MatchConfig{
		UseIgnoreFile: true,
		Include:       regexp.MustCompile(`\.go$`),
		Extensions:    map[string]struct{}{"go": {}},
	}
	cands, _ := resolve(t, root, cfg, rules, "debug.log")
	require.Len(t, cands, 1)
	assert.Equal(t, "debug.log", cands[0].DisplayPath)
}

func TestIncludeAndExtensionFilters(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "src/a.go", "src/a_test.go", "src/b.py", "README.md")

	cfg := MatchConfig{Recursive: true, Include: regexp.MustCompile(`^src/`)}
	cands, r := resolve(t, root, cfg, nil, ".")
	assert.Equal(t, []string{"src/a.go", "src/a_test.go", "src/b.py"}, displayPaths(cands))
	assert.Contains(t, r.Skipped(), SkippedItem{Path: "README.md", Reason: ReasonFilteredPattern})

	cfg = MatchConfig{Recursive: true, Extensions: map[string]struct{}{"py": {}, "md": {}}}
	cands, r = resolve(t, root, cfg, nil, ".")
	assert.Equal(t, []string{"README.md", "src/b.py"}, displayPaths(cands))
	assert.Contains(t, r.Skipped(), SkippedItem{Path: "src/a.go", Reason: ReasonFilteredExtension})
}

func TestSkipHidden(t *testing.T) {
	root := t.TempDir()
	tree(t, root, ".env", ".config/x.yml", "visible.txt")

	cands, r := resolve(t, root, MatchConfig{Recursive: true, SkipHidden: true}, nil, ".")
	assert.Equal(t, []string{"visible.txt"}, displayPaths(cands))
	assert.Contains(t, r.Skipped(), SkippedItem{Path: ".config", Reason: ReasonIgnoredHidden, IsDir: true})

	cands, _ = resolve(t, root, MatchConfig{Recursive: true, SkipHidden: true}, nil, "**/*")
	assert.Equal(t, []string{"visible.txt"}, displayPaths(cands))
}

func TestSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	tree(t, root, "dir/real.txt", "target/inner.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "dir", "real.txt"), filepath.Join(root, "dir", "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "target"), filepath.Join(root, "dir", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "dir", "dangling")))

	cands, r := resolve(t, root, MatchConfig{Recursive: true}, nil, "dir")
	assert.Equal(t, []string{"dir/link.txt", "dir/real.txt"}, displayPaths(cands))

	skipped := r.Skipped()
	assert.Contains(t, skipped, SkippedItem{Path: "dir/loop", Reason: ReasonSkippedSymlinkDir, IsDir: true})
	assert.Contains(t, skipped, SkippedItem{Path: "dir/dangling", Reason: ReasonSkippedNotRegular})
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.py", "b.py", "c.txt", "pkg/d.py", "pkg/sub/e.py")

	cands, _ := resolve(t, root, MatchConfig{}, nil, "*.py")
	assert.Equal(t, []string{"a.py", "b.py"}, displayPaths(cands))
	for _, c := range cands {
		assert.FileExists(t, c.AbsPath)
	}

	cands, _ = resolve(t, root, MatchConfig{Recursive: true}, nil, "*.py")
	assert.Equal(t, []string{"a.py", "b.py", "pkg/d.py", "pkg/sub/e.py"}, displayPaths(cands))

	cands, _ = resolve(t, root, MatchConfig{}, nil, "pkg/*.py")
	assert.Equal(t, []string{"pkg/d.py"}, displayPaths(cands))

	cands, _ = resolve(t, root, MatchConfig{}, nil, "pkg/**/*.py")
	assert.Equal(t, []string{"pkg/d.py", "pkg/sub/e.py"}, displayPaths(cands))
}

func TestGlobAbsolutePattern(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "x/one.md", "x/two.txt")

	pattern := filepath.ToSlash(filepath.Join(root, "x")) + "/*.md"
	cands, _ := resolve(t, t.TempDir(), MatchConfig{}, nil, pattern)
	require.Len(t, cands, 1)
	assert.Equal(t, filepath.Join(root, "x", "one.md"), cands[0].AbsPath)
}

func TestGlobNoMatches(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.txt")

	cands, _ := resolve(t, root, MatchConfig{}, nil, "*.rs")
	assert.Empty(t, cands)

	cands, _ = resolve(t, root, MatchConfig{}, nil, "missing/*.rs")
	assert.Empty(t, cands)
}

func TestGlobHonoursIgnoreRules(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.go", "gen/b.go")
	writeFile(t, filepath.Join(root, ".gitignore"), "gen/\n")

	rules, err := ignore.Load(root)
	require.NoError(t, err)

	cands, _ := resolve(t, root, MatchConfig{UseIgnoreFile: true}, rules, "**/*.go")
	assert.Equal(t, []string{"a.go"}, displayPaths(cands))
}

func TestExpandPattern(t *testing.T) {
	tests := []struct {
		raw       string
		recursive bool
		want      string
	}{
		{"*.py", false, "*.py"},
		{"*.py", true, "**/*.py"},
		{"src/*.go", true, "src/**/*.go"},
		{"src/**/*.go", true, "src/**/*.go"},
		{"/abs/*.md", true, "/abs/**/*.md"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, expandPattern(tt.raw, tt.recursive), tt.raw)
	}
}

func TestSortByComponents(t *testing.T) {
	paths := []string{"b.txt", "a.txt", "a/z.txt", "a-b/c.txt", "a/b/c.txt"}
	sortByComponents(paths)
	assert.Equal(t, []string{"a/b/c.txt", "a/z.txt", "a-b/c.txt", "a.txt", "b.txt"}, paths)
}

func TestResolveHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	tree(t, root, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	arg, err := Classify(root, ".")
	require.NoError(t, err)
	_, err = New(MatchConfig{}, nil, WithRoot(root), WithContext(ctx)).Resolve(arg)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUnreadableDirectoryArgument(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	dir := filepath.Join(root, "locked")
	tree(t, root, "locked/a.txt")
	require.NoError(t, os.Chmod(dir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	arg, err := Classify(root, "locked")
	require.NoError(t, err)
	_, err = New(MatchConfig{}, nil, WithRoot(root)).Resolve(arg)
	assert.Error(t, err)
}
