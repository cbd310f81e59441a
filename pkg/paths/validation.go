package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/portcfg/pkg/errors"
)

// ValidatePath rejects empty paths and paths with null bytes.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}
	return nil
}

// Resolve joins a relative path onto root and checks that the result stays
// inside root. Absolute paths are accepted when they lie inside root.
func Resolve(root, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	root = filepath.Clean(root)

	var joined string
	if filepath.IsAbs(path) {
		joined = filepath.Clean(path)
	} else {
		joined = filepath.Join(root, filepath.FromSlash(path))
	}

	if !IsWithin(joined, root) {
		return "", errors.Newf(errors.ErrInvalidInput, "path %q escapes %s", path, root)
	}
	return joined, nil
}

// Rel returns path relative to root in slash form. It fails when path is
// not inside root.
func Rel(root, path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "path %s is not under %s", path, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput, "path %s is not under %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

// IsWithin reports whether path is root or lies below it.
func IsWithin(path, root string) bool {
	_, err := Rel(root, path)
	return err == nil
}
