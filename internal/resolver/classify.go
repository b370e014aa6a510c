package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/toprompt/internal/diag"
)

// globMeta are the characters that make a non-existent argument a pattern.
const globMeta = "*?[{"

// Classify determines the shape of raw once, resolving relative paths
// against root. Existing paths win over pattern interpretation.
func Classify(root, raw string) (Argument, error) {
	if raw == "-" {
		return Argument{}, diag.ErrStdinUnsupported
	}
	if strings.TrimSpace(raw) == "" {
		return Argument{}, fmt.Errorf("empty path: %w", diag.ErrPathNotFound)
	}

	abs := raw
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, raw)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err == nil {
		if info.IsDir() {
			return Argument{Raw: raw, Kind: KindDirectory, Path: abs}, nil
		}
		return Argument{Raw: raw, Kind: KindLiteral, Path: abs}, nil
	}

	if strings.ContainsAny(raw, globMeta) {
		return Argument{Raw: raw, Kind: KindPattern, Path: abs}, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Argument{}, fmt.Errorf("'%s': %w", raw, diag.ErrPathNotFound)
	}
	return Argument{}, fmt.Errorf("cannot access '%s': %w", raw, err)
}
