package pipeline

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pluginrelease/pkg/bundle"
	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/httputil"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/release"
)

// publish fills OutputDir/<minor> and returns the written files relative
// to OutputDir.
func (r *Runner) publish(ctx context.Context, plan *release.Plan, minor string, opts Options, logger *log.Logger) ([]string, error) {
	lineDir := filepath.Join(opts.OutputDir, minor)
	if err := os.MkdirAll(lineDir, 0o755); err != nil {
		return nil, err
	}
	var files []string
	rel := func(name string) string { return path.Join(minor, name) }

	seen := make(map[module.Identity]bool)
	for _, o := range plan.Outcomes {
		for _, m := range o.Entry.Members {
			if seen[m.Identity] {
				continue
			}
			seen[m.Identity] = true
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			name := opts.Paths.MemberFile(m)
			dest := filepath.Join(lineDir, name)
			if opts.SkipUnchanged && plan.Skipped(m.Identity) {
				if err := r.download(ctx, minor, name, dest, opts); err != nil {
					return nil, err
				}
				logger.Info("downloaded unchanged plugin file", "file", name)
				files = append(files, rel(name))
				continue
			}

			ok, err := copyArtifact(m, name, dest, opts)
			if err != nil {
				return nil, err
			}
			if !ok {
				logger.Error("built artifact not found", "module", m.Label(), "file", name)
				continue
			}
			logger.Debug("copied artifact", "file", name)
			files = append(files, rel(name))
		}
	}

	for _, o := range plan.Updated() {
		if !o.Entry.IsBundle() {
			continue
		}
		if _, err := bundle.CreateSuiteArchive(lineDir, o.Filename, opts.Paths.MemberFiles(o.Entry.Members)); err != nil {
			return nil, err
		}
		logger.Info("created suite archive", "plugin", o.ID(), "file", o.Filename, "members", len(o.Entry.Members))
		files = append(files, rel(o.Filename))
	}

	catalog, err := bundle.WriteUpdateCatalog(lineDir, bundle.CatalogFile, opts.Now())
	if err != nil {
		return nil, err
	}
	gz, err := bundle.Gzip(catalog)
	if err != nil {
		return nil, err
	}
	files = append(files, rel(filepath.Base(catalog)), rel(filepath.Base(gz)))
	logger.Info("generated update catalog", "dir", lineDir)
	return files, nil
}

func (r *Runner) download(ctx context.Context, minor, name, dest string, opts Options) error {
	if opts.MetadataURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cannot download %s: no metadata url configured", name)
	}
	if r.Downloader == nil {
		return errors.New(errors.ErrCodeInternal, "cannot download %s: runner has no downloader", name)
	}
	url := strings.TrimSuffix(opts.MetadataURL, "/") + "/" + minor + "/" + name
	if err := r.Downloader.Download(ctx, url, dest); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "download previous %s", name)
	}
	return nil
}

// copyArtifact copies the built artifact of m to dest. It reports false
// when the module has no built artifact.
func copyArtifact(m module.Module, name, dest string, opts Options) (bool, error) {
	if m.Dir == "" {
		return false, nil
	}
	data, err := os.ReadFile(filepath.Join(m.Dir, opts.ArtifactDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := httputil.WriteFileAtomic(dest, data); err != nil {
		return false, err
	}
	return true, nil
}
