package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/pipeline"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/render/forest"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

type classifyOpts struct {
	input       inputOpts
	version     string
	dot         bool
	svg         string
	suite       string
	detailed    bool
	interactive bool
}

func (c *CLI) classifyCommand() *cobra.Command {
	var opts classifyOpts

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Group plugin modules into distributable suites",
		Long: `Classify reads the plugin modules of a reactor (or a module descriptor file)
and shows which modules ship on their own and which are absorbed into a suite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClassify(cmd.Context(), opts)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().StringVar(&opts.version, "version", "", "release version (default: release line of the modules)")
	cmd.Flags().StringVar(&opts.suite, "suite", "", "show one suite, given as namespace:name:version")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "print the suites as Graphviz DOT")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write an SVG diagram of the suites to this file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show namespace and version in diagrams")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the suites interactively")

	return cmd
}

func (c *CLI) runClassify(ctx context.Context, opts classifyOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	mods, err := c.loadModules(opts.input, cfg)
	if err != nil {
		return err
	}
	if opts.version == "" {
		opts.version = cfg.ReleaseVersion
	}

	runner := &pipeline.Runner{Logger: c.Logger}
	result, err := runner.Classify(ctx, mods, pipeline.Options{ReleaseVersion: opts.version})
	if err != nil {
		return err
	}

	if opts.suite != "" {
		id, err := module.ParseIdentity(opts.suite)
		if err != nil {
			return err
		}
		return printSuite(result, cfg.PathResolver(), id)
	}
	if opts.dot {
		fmt.Fprint(stdout, forest.ToDOT(result, forest.Options{Detailed: opts.detailed}))
		return nil
	}
	if opts.svg != "" {
		svg, err := forest.RenderSVG(forest.ToDOT(result, forest.Options{Detailed: opts.detailed}))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
			return err
		}
		printSuccess("Diagram written")
		printFile(opts.svg)
		return nil
	}
	if opts.interactive {
		_, err := tea.NewProgram(NewSuiteBrowserModel(result, cfg.PathResolver())).Run()
		return err
	}

	printSuites(result, cfg.PathResolver())
	return nil
}

// printSuites renders the classification as a table.
func printSuites(r suite.Result, paths release.PathResolver) {
	fmt.Fprintln(stdout, StyleTitle.Render("Suites"))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, suiteTable(r, paths, -1).Render())
	fmt.Fprintln(stdout)

	shared := r.Shared()
	printSummary(
		summaryCount{len(r.Entries), "suites"},
		summaryCount{len(r.Members()), "members"},
		summaryCount{len(shared), "shared"},
	)
	for _, s := range shared {
		printWarning("%s belongs to %d suites", s.Module.Label(), len(s.Roots))
	}
}

// printSuite shows the suite rooted at id. A module absorbed into other
// suites is reported with the roots that ship it.
func printSuite(r suite.Result, paths release.PathResolver, id module.Identity) error {
	e, ok := r.Entry(id)
	if !ok {
		roots := r.RootsOf(id)
		if len(roots) == 0 {
			return errors.New(errors.ErrCodePluginNotFound, "%s is not part of any suite", id)
		}
		for _, root := range roots {
			printInfo("%s is shipped in the suite of %s", id.Name, root)
		}
		return nil
	}

	fmt.Fprintln(stdout, StyleTitle.Render(e.Root.Label()))
	printKeyValue("Identity", e.Root.Identity.String())
	printKeyValue("File", paths.ResolveEntry(e))
	for _, m := range e.Absorbed() {
		printFile(paths.MemberFile(m))
	}
	return nil
}

// headerRow is the row index lipgloss passes for the header.
const headerRow = -1

// suiteTable builds the suite table. cursor highlights one row; -1 for none.
func suiteTable(r suite.Result, paths release.PathResolver, cursor int) *table.Table {
	shared := make(map[string]bool)
	for _, s := range r.Shared() {
		shared[s.Module.Identity.String()] = true
	}

	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		var members []string
		for _, m := range e.Absorbed() {
			name := m.Identity.Name
			if shared[m.Identity.String()] {
				name = styleShared.Render(name + "*")
			}
			members = append(members, name)
		}
		rows = append(rows, []string{
			e.Root.Label(),
			e.Root.Identity.Version,
			strings.Join(members, ", "),
			paths.ResolveEntry(e),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Plugin", "Version", "Absorbed", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return headerStyle
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case col == 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
}
