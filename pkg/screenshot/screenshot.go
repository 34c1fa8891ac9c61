// Package screenshot publishes plugin screenshots and their thumbnails.
//
// Screenshots live in a source folder of the module (src/img by default).
// Every image is re-encoded as PNG into the output folder and a thumbnail,
// center-cropped to a square, is created next to it unless one already
// exists. The returned references are relative URLs for the registry.
package screenshot

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/registry"
)

// ThumbnailSuffix marks thumbnail files. Source files containing it are
// ignored.
const ThumbnailSuffix = "-thumbnail"

// DefaultThumbnailSize is the edge length of thumbnails in pixels.
const DefaultThumbnailSize = 140

// DefaultSourceDir is the screenshot folder relative to a module directory.
const DefaultSourceDir = "src/img"

var extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Options configures [Collect].
type Options struct {
	ThumbnailSize int
	// DryRun computes references without writing any file.
	DryRun bool
	Logger *log.Logger
}

// Find lists the screenshot files of srcDir sorted by name. Hidden files,
// thumbnails and unsupported extensions are skipped. A missing folder
// yields no files.
func Find(srcDir string) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.Contains(name, ThumbnailSuffix) {
			continue
		}
		if !slices.Contains(extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Collect publishes the screenshots of srcDir into outDir and returns
// their references prefixed with urlPrefix. A name containing whitespace
// fails the whole collection. It returns nil when srcDir has no images.
func Collect(srcDir, outDir, urlPrefix string, opts Options) ([]registry.Image, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	size := opts.ThumbnailSize
	if size <= 0 {
		size = DefaultThumbnailSize
	}

	names, err := Find(srcDir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	for _, name := range names {
		if err := errors.ValidateImageName(name); err != nil {
			return nil, err
		}
	}
	if !opts.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, err
		}
	}

	var images []registry.Image
	for _, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		imageName := base + ".png"
		thumbName := base + ThumbnailSuffix + ".png"
		ref := registry.Image{Image: urlPrefix + imageName}

		if opts.DryRun {
			ref.Thumbnail = registry.String(urlPrefix + thumbName)
			images = append(images, ref)
			continue
		}

		img, err := imaging.Open(filepath.Join(srcDir, name))
		if err != nil {
			logger.Warn("cannot read image, skipping", "file", name, "err", err)
			continue
		}
		if err := imaging.Save(img, filepath.Join(outDir, imageName)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write image %s", imageName)
		}

		thumbPath := filepath.Join(outDir, thumbName)
		if _, err := os.Stat(thumbPath); os.IsNotExist(err) {
			if err := imaging.Save(Thumbnail(img, size), thumbPath); err != nil {
				logger.Warn("cannot create thumbnail", "file", name, "err", err)
			} else {
				logger.Debug("created thumbnail", "file", thumbName)
				ref.Thumbnail = registry.String(urlPrefix + thumbName)
			}
		} else {
			ref.Thumbnail = registry.String(urlPrefix + thumbName)
		}

		logger.Info("attached image", "file", name)
		images = append(images, ref)
	}
	return images, nil
}

// Thumbnail scales img to cover a size x size square and crops the center.
func Thumbnail(img image.Image, size int) image.Image {
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}
