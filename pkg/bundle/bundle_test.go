package bundle

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/pluginrelease/pkg/errors"
)

const infoXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE module PUBLIC "-//NetBeans//DTD Autoupdate Module Info 2.5//EN" "http://www.netbeans.org/dtds/autoupdate-info-2_5.dtd">
<module codenamebase="org.example.clustering" distribution="" downloadsize="0" needsrestart="false">
  <manifest OpenIDE-Module="org.example.clustering" OpenIDE-Module-Name="Clustering"/>
</module>
`

func writeNBM(t *testing.T, path, info string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if info != "" {
		w, err := zw.Create(InfoEntry)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(w, info)
	}
	w, err := zw.Create("netbeans/modules/clustering.jar")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "jar bytes")
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSuiteArchive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app-1.0.nbm", "core-1.0.nbm"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	path, err := CreateSuiteArchive(dir, "app-1.0.zip", []string{"app-1.0.nbm", "core-1.0.nbm"})
	if err != nil {
		t.Fatalf("CreateSuiteArchive: %v", err)
	}
	if path != filepath.Join(dir, "app-1.0.zip") {
		t.Errorf("path = %s", path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	for _, f := range zr.File {
		if f.Method != zip.Store {
			t.Errorf("%s method = %d, want Store", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != f.Name {
			t.Errorf("%s content = %q", f.Name, data)
		}
	}
}

func TestCreateSuiteArchiveMissingMember(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateSuiteArchive(dir, "app-1.0.zip", []string{"app-1.0.nbm"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app-1.0.zip")); !os.IsNotExist(err) {
		t.Error("archive should not exist")
	}
}

func TestWriteUpdateCatalog(t *testing.T) {
	dir := t.TempDir()
	nbm := filepath.Join(dir, "clustering-1.0.nbm")
	writeNBM(t, nbm, infoXML)
	if err := os.WriteFile(filepath.Join(dir, "clustering-1.0.zip"), []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(nbm)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)
	path, err := WriteUpdateCatalog(dir, "", now)
	if err != nil {
		t.Fatalf("WriteUpdateCatalog: %v", err)
	}
	if filepath.Base(path) != CatalogFile {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	for _, want := range []string{
		`<module_updates timestamp="15/30/14/05/03/2024">`,
		`distribution="clustering-1.0.nbm"`,
		`downloadsize="` + itoa(info.Size()) + `"`,
		`codenamebase="org.example.clustering"`,
		`OpenIDE-Module-Name="Clustering"`,
		"</module_updates>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("catalog missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `downloadsize="0"`) || strings.Count(got, "distribution=") != 1 {
		t.Errorf("attributes not rewritten:\n%s", got)
	}
	if strings.Count(got, "<?xml") != 1 {
		t.Errorf("embedded declaration kept:\n%s", got)
	}
}

func TestWriteUpdateCatalogMissingInfo(t *testing.T) {
	dir := t.TempDir()
	writeNBM(t, filepath.Join(dir, "broken-1.0.nbm"), "")
	if _, err := WriteUpdateCatalog(dir, CatalogFile, time.Now()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestGzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, CatalogFile)
	content := []byte("<module_updates/>\n")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	dest, err := Gzip(src)
	if err != nil {
		t.Fatalf("Gzip: %v", err)
	}
	if dest != src+".gz" {
		t.Errorf("dest = %s", dest)
	}
	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round trip = %q", got)
	}
	if zr.Name != CatalogFile {
		t.Errorf("Name = %q", zr.Name)
	}

	if _, err := Gzip(filepath.Join(dir, "absent.xml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input: err = %v", err)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
