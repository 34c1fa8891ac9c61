package bundle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/httputil"
)

// CatalogFile is the conventional update catalog name.
const CatalogFile = "updates.xml"

// InfoEntry is the module descriptor embedded in every .nbm.
const InfoEntry = "Info/info.xml"

// TimestampFormat is the catalog timestamp layout (seconds first, UTC).
const TimestampFormat = "05/04/15/02/01/2006"

const catalogHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE module_updates PUBLIC "-//NetBeans//DTD Autoupdate Catalog 2.8//EN" "http://www.netbeans.org/dtds/autoupdate-catalog-2_8.dtd">
`

var (
	moduleStart  = regexp.MustCompile(`<module\b`)
	rewriteAttrs = regexp.MustCompile(`\s+(?:distribution|downloadsize)\s*=\s*("[^"]*"|'[^']*')`)
)

// WriteUpdateCatalog writes dir/name listing every .nbm in dir. The
// distribution attribute of each entry is rewritten to the file name and
// downloadsize to its size on disk. It returns the catalog path.
func WriteUpdateCatalog(dir, name string, now time.Time) (string, error) {
	if name == "" {
		name = CatalogFile
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	var buf bytes.Buffer
	buf.WriteString(catalogHeader)
	fmt.Fprintf(&buf, "<module_updates timestamp=\"%s\">\n", now.UTC().Format(TimestampFormat))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".nbm") {
			continue
		}
		module, err := catalogEntry(filepath.Join(dir, e.Name()))
		if err != nil {
			return "", err
		}
		buf.WriteString(module)
		buf.WriteString("\n")
	}
	buf.WriteString("</module_updates>\n")

	dest := filepath.Join(dir, name)
	if err := httputil.WriteFileAtomic(dest, buf.Bytes()); err != nil {
		return "", err
	}
	return dest, nil
}

// catalogEntry returns the <module> element of the nbm at path with its
// distribution and downloadsize attributes set.
func catalogEntry(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	raw, err := readInfo(path)
	if err != nil {
		return "", err
	}

	loc := moduleStart.FindStringIndex(raw)
	if loc == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s in %s has no module element", InfoEntry, filepath.Base(path))
	}
	elem := raw[loc[0]:]
	end := strings.Index(elem, ">")
	if end < 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s in %s is truncated", InfoEntry, filepath.Base(path))
	}
	tag := rewriteAttrs.ReplaceAllString(elem[len("<module"):end], "")
	attrs := fmt.Sprintf(` distribution="%s" downloadsize="%s"`,
		escapeAttr(filepath.Base(path)), strconv.FormatInt(info.Size(), 10))
	return "<module" + attrs + tag + elem[end:], nil
}

func readInfo(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", filepath.Base(path))
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != InfoEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", InfoEntry, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "%s has no %s entry", filepath.Base(path), InfoEntry)
}

func escapeAttr(s string) string {
	return strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;").Replace(s)
}

func compress(data []byte, name string) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	zw.Name = name
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
