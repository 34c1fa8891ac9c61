package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/snapshot"
)

func (c *CLI) registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the plugin registry",
	}
	cmd.AddCommand(c.registryShowCommand())
	return cmd
}

func (c *CLI) registryShowCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "show [plugin-id]",
		Short: "List registry plugins or show one plugin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			reg, err := c.loadRegistry(cmd.Context(), registryLocation(uri, cfg))
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printRegistry(reg)
				return nil
			}
			if err := errors.ValidatePluginID(args[0]); err != nil {
				return err
			}
			p, ok := reg.Find(args[0])
			if !ok {
				return errors.New(errors.ErrCodePluginNotFound, "plugin %q is not in the registry", args[0])
			}
			printPlugin(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "snapshot", "", "registry store URI (default: local output, then metadata url)")
	return cmd
}

func (c *CLI) loadRegistry(ctx context.Context, uri string) (*registry.Registry, error) {
	store, err := snapshot.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var data []byte
	var found bool
	err = withSpinner(ctx, "Loading registry from "+uri, func() error {
		var err error
		data, found, err = store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		printWarning("No registry at %s", uri)
		return registry.New(), nil
	}
	return registry.Load(data)
}

func printRegistry(reg *registry.Registry) {
	rows := make([][]string, 0, reg.Len())
	for _, p := range reg.Plugins {
		lines := p.ReleaseLines()
		rows = append(rows, []string{p.ID, p.Name, p.Category, registry.Deref(p.LastUpdate), strings.Join(lines, ", ")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Category", "Updated", "Releases").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(stdout, t.Render())
	printSummary(summaryCount{reg.Len(), "plugins"})
}

func printPlugin(p *registry.Plugin) {
	fmt.Fprintln(stdout, StyleTitle.Render(p.Name))
	if p.ShortDescription != "" {
		fmt.Fprintln(stdout, StyleDim.Render(p.ShortDescription))
	}
	printNewline()
	printKeyValue("ID", p.ID)
	printKeyValue("Category", p.Category)
	printKeyValue("License", orDash(registry.Deref(p.License)))
	for _, a := range p.Authors {
		author := a.Name
		if a.Email != nil {
			author += " <" + *a.Email + ">"
		}
		printKeyValue("Author", author)
	}
	if p.Homepage != nil {
		printKeyValue("Homepage", StyleLink.Render(*p.Homepage))
	}
	if p.SourceCode != nil {
		printKeyValue("Source", StyleLink.Render(*p.SourceCode))
	}
	printKeyValue("Images", fmt.Sprint(len(p.Images)))

	printNewline()
	lines := p.ReleaseLines()
	slices.Reverse(lines)
	for _, line := range lines {
		v, _ := p.Version(line)
		printInfo("%s %s", StyleNumber.Render(line), v.PluginVersion)
		printDetail("%s · %s", v.URL, v.LastUpdate)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
