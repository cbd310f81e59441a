package core_test

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/stretchr/testify/require"
)

const (
	projectRoot  = "/work/demo-project"
	templateRoot = "/work/templates"
	namespace    = "super-dev"
)

const codexProfile = `{
  "profile": "codex-ios",
  "targets": {
    "agents": "AGENTS.md",
    "codex_config": ".codex/config.toml",
    "skills": ".agents/skills/{skill_namespace}"
  }
}`

const codexManifest = `{
  "profile": "codex-ios",
  "actions": [
    {"id": "agents-block", "src": "common/AGENTS.md", "target": "agents", "strategy": "append_block"},
    {"id": "codex-config", "src": "common/codex-config.toml", "target": "codex_config", "strategy": "merge_toml_keys"},
    {"id": "ios-skills", "src": "ios/skills", "target": "skills", "strategy": "sync_additive_dir"}
  ]
}`

const (
	agentsTemplate = "## Super Dev\nUse the skills.\n"
	configTemplate = "model = \"o3\"\n\n[mcp_servers.xcode]\ncommand = \"xcodebuildmcp\"\n"
	skillFile      = ".agents/skills/super-dev/xcode-builder/SKILL.md"
	agentsBlock    = "# BEGIN SUPER-DEV MANAGED BLOCK:agents-block\n" + agentsTemplate + "# END SUPER-DEV MANAGED BLOCK:agents-block\n"
)

type fixture struct {
	t  *testing.T
	fs types.FS
}

// newFixture builds a template root and an empty project in memory.
func newFixture(t *testing.T, manifest string) *fixture {
	t.Helper()
	f := &fixture{t: t, fs: filesystem.NewMemory()}
	require.NoError(t, f.fs.MkdirAll(projectRoot, 0755))
	f.template("common/install/profiles/codex-ios.json", codexProfile)
	f.template("common/install/manifests/codex-ios.json", manifest)
	f.template("common/AGENTS.md", agentsTemplate)
	f.template("common/codex-config.toml", configTemplate)
	f.template("ios/skills/xcode-builder/SKILL.md", "# Xcode builder\n")
	return f
}

func (f *fixture) template(rel, content string) {
	f.write(filepath.Join(templateRoot, rel), content)
}

func (f *fixture) project(rel, content string) {
	f.write(filepath.Join(projectRoot, rel), content)
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	require.NoError(f.t, f.fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, f.fs.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) read(rel string) string {
	f.t.Helper()
	data, err := f.fs.ReadFile(filepath.Join(projectRoot, rel))
	require.NoError(f.t, err)
	return string(data)
}

func (f *fixture) exists(rel string) bool {
	f.t.Helper()
	ok, err := filesystem.Exists(f.fs, filepath.Join(projectRoot, rel))
	require.NoError(f.t, err)
	return ok
}

func clock() func() time.Time {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func (f *fixture) applyOptions() core.ApplyOptions {
	return core.ApplyOptions{
		ProjectRoot:  projectRoot,
		TemplateRoot: templateRoot,
		Profile:      "codex-ios",
		Namespace:    namespace,
		FS:           f.fs,
		Now:          clock(),
	}
}

func (f *fixture) apply() *core.ApplyResult {
	f.t.Helper()
	result, err := core.Apply(f.applyOptions())
	require.NoError(f.t, err)
	return result
}

func (f *fixture) rollbackOptions(txnID string) core.RollbackOptions {
	return core.RollbackOptions{
		ProjectRoot: projectRoot,
		TxnID:       txnID,
		FS:          f.fs,
		Now:         clock(),
	}
}

func (f *fixture) queryOptions() core.QueryOptions {
	return core.QueryOptions{ProjectRoot: projectRoot, FS: f.fs}
}

// faultyFS fails selected operations of the wrapped filesystem.
type faultyFS struct {
	types.FS
	failRemove string
	failRename string
}

func (f *faultyFS) Remove(name string) error {
	if name == f.failRemove {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
	}
	return f.FS.Remove(name)
}

func (f *faultyFS) Rename(oldpath, newpath string) error {
	if newpath == f.failRename {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrPermission}
	}
	return f.FS.Rename(oldpath, newpath)
}
