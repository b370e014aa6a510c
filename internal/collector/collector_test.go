package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/resolver"
)

func candidate(dir, name string) resolver.Candidate {
	return resolver.Candidate{
		AbsPath:     filepath.Join(dir, name),
		DisplayPath: name,
	}
}

func write(t *testing.T, dir, name string, content []byte) resolver.Candidate {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
	return candidate(dir, name)
}

func TestCollectReadsInOrder(t *testing.T) {
	dir := t.TempDir()
	cands := []resolver.Candidate{
		write(t, dir, "b.py", []byte("print(2)\n")),
		write(t, dir, "a.go", []byte("package a")),
	}

	coll, err := New().Collect(context.Background(), cands)
	require.NoError(t, err)
	require.Len(t, coll.Records, 2)
	assert.Empty(t, coll.Failures)

	assert.Equal(t, "b.py", coll.Records[0].DisplayPath)
	assert.Equal(t, "print(2)\n", coll.Records[0].Content)
	assert.Equal(t, "python", coll.Records[0].Tag)
	assert.Equal(t, int64(9), coll.Records[0].Size)

	assert.Equal(t, "a.go", coll.Records[1].DisplayPath)
	assert.Equal(t, "go", coll.Records[1].Tag)
	assert.Equal(t, int64(18), coll.TotalBytes())
}

func TestCollectDeduplicatesKeepingFirst(t *testing.T) {
	dir := t.TempDir()
	first := write(t, dir, "x.txt", []byte("x"))
	again := first
	again.DisplayPath = "sub/../x.txt"

	coll, err := New().Collect(context.Background(), []resolver.Candidate{first, again, first})
	require.NoError(t, err)
	require.Len(t, coll.Records, 1)
	assert.Equal(t, "x.txt", coll.Records[0].DisplayPath)
}

func TestCollectPartialFailure(t *testing.T) {
	dir := t.TempDir()
	cands := []resolver.Candidate{
		write(t, dir, "one.txt", []byte("1")),
		candidate(dir, "vanished.txt"),
		write(t, dir, "three.txt", []byte("3")),
	}

	coll, err := New().Collect(context.Background(), cands)
	require.NoError(t, err)

	require.Len(t, coll.Records, 2)
	assert.Equal(t, "one.txt", coll.Records[0].DisplayPath)
	assert.Equal(t, "three.txt", coll.Records[1].DisplayPath)

	require.Len(t, coll.Failures, 1)
	assert.Equal(t, diag.KindRead, coll.Failures[0].Kind)
	assert.Equal(t, "vanished.txt", coll.Failures[0].Path)
	assert.True(t, errors.Is(coll.Failures[0], fs.ErrNotExist))
}

func TestCollectRejectsNonText(t *testing.T) {
	dir := t.TempDir()
	cands := []resolver.Candidate{
		write(t, dir, "image.bin", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}),
		write(t, dir, "latin1.txt", []byte{'c', 'a', 'f', 0xe9}),
		write(t, dir, "ok.md", []byte("café")),
	}

	coll, err := New().Collect(context.Background(), cands)
	require.NoError(t, err)

	require.Len(t, coll.Records, 1)
	assert.Equal(t, "ok.md", coll.Records[0].DisplayPath)

	require.Len(t, coll.Failures, 2)
	assert.ErrorIs(t, coll.Failures[0], diag.ErrBinary)
	assert.ErrorIs(t, coll.Failures[1], diag.ErrNotUTF8)
}

func TestCollectMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	cands := []resolver.Candidate{
		write(t, dir, "small.txt", []byte("1234")),
		write(t, dir, "big.txt", []byte("123456789")),
	}

	coll, err := New(WithMaxFileSize(5)).Collect(context.Background(), cands)
	require.NoError(t, err)

	require.Len(t, coll.Records, 1)
	assert.Equal(t, "small.txt", coll.Records[0].DisplayPath)
	require.Len(t, coll.Failures, 1)
	assert.ErrorIs(t, coll.Failures[0], diag.ErrTooLarge)
}

func TestCollectWithReadFile(t *testing.T) {
	files := map[string]string{"/virtual/a.rs": "fn main() {}"}
	read := func(p string) ([]byte, error) {
		if s, ok := files[filepath.ToSlash(p)]; ok {
			return []byte(s), nil
		}
		return nil, fs.ErrNotExist
	}

	cands := []resolver.Candidate{
		{AbsPath: "/virtual/a.rs", DisplayPath: "a.rs"},
		{AbsPath: "/virtual/b.rs", DisplayPath: "b.rs"},
	}
	coll, err := New(WithReadFile(read)).Collect(context.Background(), cands)
	require.NoError(t, err)
	require.Len(t, coll.Records, 1)
	assert.Equal(t, "rust", coll.Records[0].Tag)
	require.Len(t, coll.Failures, 1)
}

func TestConcurrentOrderMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	var cands []resolver.Candidate
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("f%02d.txt", i)
		if i%7 == 3 {
			cands = append(cands, candidate(dir, name))
			continue
		}
		cands = append(cands, write(t, dir, name, []byte(fmt.Sprintf("file %d\n", i))))
	}
	cands = append(cands, cands[0], cands[5])

	seq, err := New().Collect(context.Background(), cands)
	require.NoError(t, err)
	con, err := New(WithConcurrency(runtime.NumCPU()+2)).Collect(context.Background(), cands)
	require.NoError(t, err)

	assert.Equal(t, seq.Records, con.Records)
	assert.Equal(t, seq.Failures, con.Failures)
	assert.Len(t, seq.Failures, 6)
}

func TestCollectCancelled(t *testing.T) {
	dir := t.TempDir()
	cands := []resolver.Candidate{
		write(t, dir, "a.txt", []byte("a")),
		write(t, dir, "b.txt", []byte("b")),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		coll, err := New(WithConcurrency(workers)).Collect(ctx, cands)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, coll)
	}
}

func TestCollectEmpty(t *testing.T) {
	coll, err := New().Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, coll.Records)
	assert.Empty(t, coll.Failures)
}
