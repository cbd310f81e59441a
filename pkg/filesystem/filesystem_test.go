// pkg/filesystem/filesystem_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir), afero MemMapFs
// PURPOSE: Test FS implementations and the atomic write, copy and prune helpers

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSBasicOperations(t *testing.T) {
	fs := filesystem.NewOS()
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "sub", "test.txt")

	require.NoError(t, fs.MkdirAll(filepath.Dir(testFile), 0755))
	require.NoError(t, fs.WriteFile(testFile, []byte("hello world"), 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.Equal(t, int64(11), info.Size())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	entries, err := fs.ReadDir(filepath.Join(tmpDir, "sub"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test.txt", entries[0].Name())

	moved := filepath.Join(tmpDir, "moved.txt")
	require.NoError(t, fs.Rename(testFile, moved))
	exists, err := filesystem.Exists(fs, testFile)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.Remove(moved))
	require.NoError(t, fs.RemoveAll(filepath.Join(tmpDir, "sub")))
}

func TestWriteFileAtomic(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "config.toml")

	require.NoError(t, filesystem.WriteFileAtomic(fs, target, []byte("a = 1\n"), 0600))
	require.NoError(t, filesystem.WriteFileAtomic(fs, target, []byte("a = 2\n"), 0600))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "a = 2\n", string(content))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestCopyFilePreservesMetadata(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	dst := filepath.Join(dir, "copy", "run.sh")

	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.Chmod(src, 0755))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, filesystem.CopyFile(fs, src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(content))

	assert.Error(t, filesystem.CopyFile(fs, dir, filepath.Join(dir, "x")))
}

func TestPruneEmptyParents(t *testing.T) {
	fs := filesystem.NewMemory()
	root := "/project"

	require.NoError(t, fs.MkdirAll("/project/a/b/c", 0755))
	require.NoError(t, fs.WriteFile("/project/a/keep.txt", []byte("x"), 0644))

	require.NoError(t, filesystem.PruneEmptyParents(fs, "/project/a/b/c", root))

	exists, err := filesystem.Exists(fs, "/project/a/b")
	require.NoError(t, err)
	assert.False(t, exists, "empty directories are removed")

	exists, err = filesystem.Exists(fs, "/project/a")
	require.NoError(t, err)
	assert.True(t, exists, "non-empty directory stops the walk")

	require.NoError(t, fs.Remove("/project/a/keep.txt"))
	require.NoError(t, filesystem.PruneEmptyParents(fs, "/project/a", root))

	exists, err = filesystem.Exists(fs, root)
	require.NoError(t, err)
	assert.True(t, exists, "stop directory is never removed")
}

func TestPruneEmptyParentsIgnoresOutsideStop(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/elsewhere/empty", 0755))

	require.NoError(t, filesystem.PruneEmptyParents(fs, "/elsewhere/empty", "/project"))

	exists, err := filesystem.Exists(fs, "/elsewhere/empty")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDryRunKeepsWritesInMemory(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "AGENTS.md")
	require.NoError(t, os.WriteFile(existing, []byte("user\n"), 0644))

	fs := filesystem.NewDryRun()

	content, err := fs.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "user\n", string(content))

	require.NoError(t, filesystem.WriteFileAtomic(fs, existing, []byte("changed\n"), 0644))
	require.NoError(t, filesystem.WriteFileAtomic(fs, filepath.Join(dir, "new", "file.txt"), []byte("new\n"), 0644))

	content, err = fs.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "changed\n", string(content), "overlay sees its own writes")

	onDisk, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "user\n", string(onDisk), "disk is untouched")
	_, err = os.Stat(filepath.Join(dir, "new"))
	assert.True(t, os.IsNotExist(err))
}

func TestMemoryWalkIsLexical(t *testing.T) {
	fs := filesystem.NewMemory()
	for _, p := range []string{"/src/b.txt", "/src/a/z.txt", "/src/a.txt"} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, fs.WriteFile(p, []byte(p), 0644))
	}

	var files []string
	err := fs.Walk("/src", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a/z.txt", "/src/a.txt", "/src/b.txt"}, files)
}
