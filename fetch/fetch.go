// Package fetch acquires the mReasoner source tree: given a target
// directory it downloads and unpacks the released archive on first use
// and returns the path of the source directory inside it.
//
// It is a setup-time collaborator for [github.com/cogsim/mreasoner.New];
// the core never touches the network.
package fetch

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultURL serves the released engine source archive.
const DefaultURL = "https://nc.informatik.uni-freiburg.de/index.php/s/JyMd3g36wXdgwy3/download"

const archiveName = "mReasoner.zip"

// ErrFetch indicates the engine sources could not be acquired. Fatal at
// setup; there is nothing to recover locally.
var ErrFetch = errors.New("fetch: engine sources unavailable")

var client = &http.Client{Timeout: 5 * time.Minute}

// SourcePath ensures dir holds an unpacked copy of the engine sources,
// downloading the archive from DefaultURL when dir does not exist yet,
// and returns the src directory inside the unpacked tree.
func SourcePath(ctx context.Context, dir string) (string, error) {
	return SourcePathURL(ctx, dir, DefaultURL)
}

// SourcePathURL is SourcePath with an explicit archive URL.
func SourcePathURL(ctx context.Context, dir, url string) (string, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := download(ctx, dir, url); err != nil {
			return "", fmt.Errorf("%w: %w", ErrFetch, err)
		}
	}

	// The archive unpacks a single versioned directory next to metadata
	// folders prefixed with an underscore.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	src := ""
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		src = filepath.Join(dir, entry.Name(), "src")
	}
	if src == "" {
		return "", fmt.Errorf("%w: no source directory under %s", ErrFetch, dir)
	}
	return src, nil
}

// download fetches the archive into dir and unpacks it in place.
func download(ctx context.Context, dir, url string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	target := filepath.Join(dir, archiveName)
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}

	return unzip(target, dir)
}

// unzip extracts the archive into dir, rejecting entries that would
// escape it.
func unzip(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", archive, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		target := filepath.Join(dir, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("unsafe archive path %q", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(target), err)
	}
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}
