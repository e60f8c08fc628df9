// Package archive safely explodes a gzipped tar archive into a per-build
// workspace directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxEntrySize is the largest single archive entry the extractor accepts.
// An entry declaring exactly this size succeeds; one byte larger fails.
const MaxEntrySize = 100 * 1024 * 1024 // 100 MiB

// UnsafeEntryError wraps the entry name that failed sanitization, letting
// callers recognize ExtractUnsafe failures without string matching.
type UnsafeEntryError struct {
	EntryName string
	Reason    string
}

func (e *UnsafeEntryError) Error() string {
	return fmt.Sprintf("unsafe archive entry %q: %s", e.EntryName, e.Reason)
}

// Extract unpacks archivePath (a gzipped tar) into extractTo, which must
// already exist and should be an empty, freshly created directory — the
// Build Worker always extracts into a fresh per-build directory so a
// canceled or failed extraction never leaves a half-extracted tree visible
// to a later build of the same id.
//
// Every entry's path is decomposed into components; any component other
// than a plain name or "current directory" is rejected, so no entry can
// escape extractTo via "..", an absolute path, or a symlink trick. Any
// entry declaring a size greater than MaxEntrySize is rejected.
func Extract(archivePath, extractTo string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %q: %w", archivePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("reading gzip header of %q: %w", archivePath, err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		safePath, err := sanitizeEntryPath(header.Name, extractTo)
		if err != nil {
			return err
		}

		if header.Size > MaxEntrySize {
			return &UnsafeEntryError{
				EntryName: header.Name,
				Reason:    fmt.Sprintf("declared size %d exceeds max entry size %d", header.Size, MaxEntrySize),
			}
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(safePath, 0o755); err != nil {
				return fmt.Errorf("creating directory %q: %w", safePath, err)
			}
		case tar.TypeReg:
			if err := writeEntry(tarReader, safePath, header); err != nil {
				return fmt.Errorf("writing entry %q: %w", header.Name, err)
			}
		default:
			// Symlinks, hardlinks, devices, etc. are silently skipped rather
			// than extracted — the workspace only needs regular files and
			// directories to run a Dockerfile build.
		}
	}

	return nil
}

// sanitizeEntryPath walks entryName's path components and rejects anything
// but a plain name or the current-directory component, building the
// destination path one component at a time. A "../anything" entry or an
// absolute path therefore can never resolve outside base.
func sanitizeEntryPath(entryName, base string) (string, error) {
	out := base

	slashed := filepath.ToSlash(entryName)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(entryName) {
		return "", &UnsafeEntryError{EntryName: entryName, Reason: "absolute path"}
	}

	for _, component := range strings.Split(slashed, "/") {
		switch component {
		case "", ".":
			continue
		case "..":
			return "", &UnsafeEntryError{EntryName: entryName, Reason: "parent directory component"}
		default:
			if filepath.IsAbs(component) || strings.Contains(component, string(filepath.Separator)) {
				return "", &UnsafeEntryError{EntryName: entryName, Reason: "invalid path component"}
			}
			out = filepath.Join(out, component)
		}
	}

	cleanBase := filepath.Clean(base) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(out)+string(filepath.Separator), cleanBase) {
		return "", &UnsafeEntryError{EntryName: entryName, Reason: "resolves outside extraction root"}
	}

	return out, nil
}

func writeEntry(r io.Reader, destPath string, header *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	mode := header.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.CopyN(out, r, header.Size); err != nil && err != io.EOF {
		return fmt.Errorf("copying file contents: %w", err)
	}

	return nil
}
