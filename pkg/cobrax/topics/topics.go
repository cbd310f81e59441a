// Package topics adds topic-based help to a Cobra command tree. Topics
// are markdown or text documents read from an fs.FS, usually embedded in
// the binary, and shown by "help <topic>".
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document.
type Topic struct {
	Name    string
	Format  string
	Content string
}

// Options configures Install.
type Options struct {
	// Extensions lists the file extensions read as topics. Defaults to
	// .md and .txt.
	Extensions []string
	// Renderer formats topic content. Defaults to PlainRenderer.
	Renderer Renderer
}

// Manager holds the topics loaded for one command tree.
type Manager struct {
	topics   map[string]*Topic
	renderer Renderer
}

// Load reads every topic file in fsys. Nested directories are flattened;
// the topic name is the file name without its extension.
func Load(fsys fs.FS, opts Options) (*Manager, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{".md", ".txt"}
	}
	m := &Manager{topics: make(map[string]*Topic), renderer: opts.Renderer}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if !contains(extensions, ext) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Format: ext, Content: string(data)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	return m, nil
}

// Get returns a topic by name. Flag-style names ("--dry-run") also match
// topics stored as "option-dry-run".
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics["option-"+name]
	return t, ok
}

// Names returns the topic names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes a topic through the configured renderer.
func (m *Manager) Render(w io.Writer, t *Topic) error {
	_, err := io.WriteString(w, m.renderer.Render(t.Content, t.Format))
	return err
}

// List writes the topic index.
func (m *Manager) List(w io.Writer, program string) error {
	names := m.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No help topics available.")
		return err
	}

	var b strings.Builder
	b.WriteString("Available help topics:\n")
	for _, name := range names {
		if strings.HasPrefix(name, "option-") {
			fmt.Fprintf(&b, "  --%s\n", strings.TrimPrefix(name, "option-"))
			continue
		}
		fmt.Fprintf(&b, "  %s\n", name)
	}
	fmt.Fprintf(&b, "\nUse '%s help <topic>' to read about a specific topic.\n", program)
	_, err := io.WriteString(w, b.String())
	return err
}

// Install replaces the help command of root with one that also knows the
// topics in fsys. "help topics" lists them.
func Install(root *cobra.Command, fsys fs.FS, opts Options) (*Manager, error) {
	m, err := Load(fsys, opts)
	if err != nil {
		return nil, err
	}

	originalHelp := root.HelpFunc()
	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help provides help for any command or topic.

To see all available help topics:
  %s help topics`, root.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				originalHelp(root, args)
				return nil
			}
			if args[0] == "topics" {
				return m.List(cmd.OutOrStdout(), root.Name())
			}
			if t, ok := m.Get(args[0]); ok {
				return m.Render(cmd.OutOrStdout(), t)
			}
			target, _, err := root.Find(args)
			if err != nil || target == nil {
				return fmt.Errorf("unknown help topic %q", args[0])
			}
			originalHelp(target, args)
			return nil
		},
	}
	root.SetHelpCommand(helpCmd)
	return m, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
