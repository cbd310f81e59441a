// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testing/fstest
// PURPOSE: Test topic loading, lookup and the help command

package topics_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/portcfg/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"strategies.md":     {Data: []byte("# Strategies\n")},
		"nested/state.txt":  {Data: []byte("state layout\n")},
		"option-dry-run.md": {Data: []byte("dry run\n")},
		"ignored.json":      {Data: []byte("{}")},
	}
}

func TestLoad(t *testing.T) {
	m, err := topics.Load(topicFS(), topics.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"option-dry-run", "state", "strategies"}, m.Names())

	topic, ok := m.Get("state")
	require.True(t, ok)
	assert.Equal(t, ".txt", topic.Format)
	assert.Equal(t, "state layout\n", topic.Content)

	topic, ok = m.Get("--dry-run")
	require.True(t, ok)
	assert.Equal(t, "option-dry-run", topic.Name)

	_, ok = m.Get("ignored")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	m, err := topics.Load(topicFS(), topics.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.List(&buf, "portcfg"))
	assert.Equal(t, "Available help topics:\n  --dry-run\n  state\n  strategies\n\nUse 'portcfg help <topic>' to read about a specific topic.\n", buf.String())

	empty, err := topics.Load(fstest.MapFS{}, topics.Options{})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, empty.List(&buf, "portcfg"))
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func TestInstallHelpCommand(t *testing.T) {
	root := &cobra.Command{Use: "portcfg"}
	root.AddCommand(&cobra.Command{Use: "apply", Short: "Apply a profile", Run: func(*cobra.Command, []string) {}})

	_, err := topics.Install(root, topicFS(), topics.Options{})
	require.NoError(t, err)

	run := func(args ...string) (string, error) {
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs(args)
		err := root.Execute()
		return buf.String(), err
	}

	out, err := run("help", "strategies")
	require.NoError(t, err)
	assert.Equal(t, "# Strategies\n", out)

	out, err = run("help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "  strategies\n")

	out, err = run("help", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Apply a profile")
}

func TestGlamourRendererLeavesTextAlone(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain\n", r.Render("plain\n", ".txt"))
	assert.NotEmpty(t, r.Render("# Title\n", ".md"))
}
