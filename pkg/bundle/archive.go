package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/httputil"
)

// CreateSuiteArchive writes dir/archiveName containing the given member
// files of dir, stored without compression. An existing archive is
// replaced. It returns the archive path.
func CreateSuiteArchive(dir, archiveName string, memberFiles []string) (string, error) {
	if err := errors.ValidatePath(archiveName); err != nil {
		return "", err
	}
	for _, name := range memberFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			if os.IsNotExist(err) {
				return "", errors.New(errors.ErrCodeFileNotFound, "suite member %s is missing from %s", name, dir)
			}
			return "", err
		}
	}

	dest := filepath.Join(dir, archiveName)
	tmp, err := os.CreateTemp(dir, ".archive-*")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	zw := zip.NewWriter(tmp)
	for _, name := range memberFiles {
		if err := addStored(zw, filepath.Join(dir, name), name); err != nil {
			tmp.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("rename archive: %w", err)
	}
	return dest, nil
}

func addStored(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Store

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return nil
}

// Gzip writes path+".gz" and returns its path.
func Gzip(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "gzip %s", path)
		}
		return "", err
	}
	gz, err := compress(data, filepath.Base(path))
	if err != nil {
		return "", err
	}
	dest := path + ".gz"
	if err := httputil.WriteFileAtomic(dest, gz); err != nil {
		return "", err
	}
	return dest, nil
}
