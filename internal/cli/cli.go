package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/buildinfo"
	"github.com/matzehuels/pluginrelease/pkg/config"
	"github.com/matzehuels/pluginrelease/pkg/httputil"
	"github.com/matzehuels/pluginrelease/pkg/observability"
	"github.com/matzehuels/pluginrelease/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "pluginrelease"

	// nbmPackaging selects the reactor projects that are plugin modules.
	nbmPackaging = "nbm"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	versionTmpl := buildinfo.Template()
	root := &cobra.Command{
		Use:          appName,
		Short:        "Package plugin modules and publish them to an update site",
		Long:         `pluginrelease groups plugin modules into distributable suites, merges their metadata into the published plugin registry and builds the update-site files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(versionTmpl)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" when present)")

	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.releaseCommand())
	root.AddCommand(c.registryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Snapshot Stores
// =============================================================================

// openRegistryStore returns the store the release run reads from and
// writes to. An explicit URI is used for both. Otherwise the previous
// registry is read from the metadata URL (or the local file when no URL is
// configured) and the merged registry is written to the output directory.
func (c *CLI) openRegistryStore(ctx context.Context, uri string, cfg *config.Config) (snapshot.Store, error) {
	if uri != "" {
		return snapshot.Open(ctx, uri)
	}
	local, err := snapshot.Open(ctx, filepath.Join(cfg.OutputDir, cfg.RegistryFile))
	if err != nil {
		return nil, err
	}
	if cfg.MetadataURL == "" {
		return local, nil
	}
	remote, err := snapshot.Open(ctx, cfg.RegistryURL())
	if err != nil {
		local.Close()
		return nil, err
	}
	return snapshot.Pair{Source: remote, Sink: local}, nil
}

// registryLocation picks the registry to display: an explicit URI, the
// configured snapshot, the local output file or the published one.
func registryLocation(uri string, cfg *config.Config) string {
	switch {
	case uri != "":
		return uri
	case cfg.Snapshot != "":
		return cfg.Snapshot
	}
	local := filepath.Join(cfg.OutputDir, cfg.RegistryFile)
	if _, err := os.Stat(local); err == nil || cfg.MetadataURL == "" {
		return local
	}
	return cfg.RegistryURL()
}

func (c *CLI) httpClient() *httputil.Client {
	return httputil.NewClient("")
}
