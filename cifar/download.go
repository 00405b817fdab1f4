package cifar

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
)

// DownloadURL is the location of the binary dataset
// archive.
var DownloadURL = "https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz"

// Download fetches and extracts the dataset into dir,
// unless every batch file is already present.
//
// The archive is extracted into a temporary directory
// which is moved into place once it is complete.
func Download(dir string) error {
	if present(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	resp, err := http.Get(DownloadURL)
	if err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download CIFAR-10: unexpected status %s", resp.Status)
	}

	tmp, err := os.MkdirTemp(dir, "download")
	if err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	defer os.RemoveAll(tmp)
	if err := Extract(resp.Body, tmp); err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	if !present(tmp) {
		return errors.New("download CIFAR-10: archive is missing batch files")
	}

	dest := filepath.Join(dir, batchDir)
	if err := os.RemoveAll(dest); err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	if err := os.Rename(filepath.Join(tmp, batchDir), dest); err != nil {
		return essentials.AddCtx("download CIFAR-10", err)
	}
	return nil
}

func present(dir string) bool {
	for _, train := range []bool{true, false} {
		for _, name := range batchFiles(train) {
			info, err := os.Stat(filepath.Join(dir, batchDir, name))
			if err != nil || !info.Mode().IsRegular() {
				return false
			}
		}
	}
	return true
}

// Extract unpacks a gzipped tar archive of batch files
// into dir.
//
// Only regular files under the batch directory are
// written.
func Extract(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return essentials.AddCtx("extract", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return essentials.AddCtx("extract", err)
		}
		name := filepath.Clean(header.Name)
		if header.Typeflag != tar.TypeReg || !strings.HasPrefix(name, batchDir+string(filepath.Separator)) {
			continue
		}
		if err := writeFile(filepath.Join(dir, name), tr); err != nil {
			return essentials.AddCtx("extract", err)
		}
	}
}

func writeFile(path string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(f, r)
	return err
}
