package archive

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// buildTarGz writes entries to a fresh gzipped tar file and returns its
// path. Each entry is a (name, contents) pair; an entry with isDir set
// produces a directory entry and its contents are ignored.
func buildTarGz(t *testing.T, dir string, entries []tarEntry) string {
	t.Helper()

	archivePath := filepath.Join(dir, "archive.tar.gz")
	file, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("creating archive file: %v", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzWriter)

	for _, e := range entries {
		typeflag := byte(tar.TypeReg)
		size := int64(len(e.contents))
		if e.isDir {
			typeflag = tar.TypeDir
			size = 0
		}
		header := &tar.Header{
			Name:     e.name,
			Typeflag: typeflag,
			Mode:     0o644,
			Size:     size,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("writing header for %q: %v", e.name, err)
		}
		if !e.isDir {
			if _, err := tarWriter.Write([]byte(e.contents)); err != nil {
				t.Fatalf("writing contents for %q: %v", e.name, err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return archivePath
}

type tarEntry struct {
	name     string
	contents string
	isDir    bool
}

func TestExtractWritesFilesAndDirectories(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	archivePath := buildTarGz(t, srcDir, []tarEntry{
		{name: "nimble.yaml", contents: "builder: dockerfile\napp: demo\n"},
		{name: "src/", isDir: true},
		{name: "src/main.go", contents: "package main\n"},
	})

	if err := Extract(archivePath, destDir); err != nil {
		t.Fatalf("Extract: unexpected error: %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(destDir, "nimble.yaml"))
	if err != nil {
		t.Fatalf("reading extracted nimble.yaml: %v", err)
	}
	if string(contents) != "builder: dockerfile\napp: demo\n" {
		t.Fatalf("nimble.yaml contents = %q, want the submitted text", contents)
	}

	if _, err := os.Stat(filepath.Join(destDir, "src", "main.go")); err != nil {
		t.Fatalf("expected src/main.go to exist: %v", err)
	}
}

func TestExtractRejectsParentDirectoryTraversal(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	archivePath := buildTarGz(t, srcDir, []tarEntry{
		{name: "../../etc/passwd", contents: "pwned"},
	})

	err := Extract(archivePath, destDir)
	if err == nil {
		t.Fatal("Extract: expected an error for a path-traversal entry, got nil")
	}

	var unsafeErr *UnsafeEntryError
	if !asUnsafeEntryError(err, &unsafeErr) {
		t.Fatalf("Extract error = %v, want *UnsafeEntryError", err)
	}
}

func TestExtractRejectsAbsolutePath(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	archivePath := buildTarGz(t, srcDir, []tarEntry{
		{name: "/etc/passwd", contents: "pwned"},
	})

	if err := Extract(archivePath, destDir); err == nil {
		t.Fatal("Extract: expected an error for an absolute-path entry, got nil")
	}
}

func TestExtractRejectsOversizedEntry(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	archivePath := filepath.Join(srcDir, "oversized.tar.gz")
	file, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("creating archive file: %v", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzWriter)

	header := &tar.Header{
		Name:     "huge.bin",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     MaxEntrySize + 1,
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		t.Fatalf("writing oversized header: %v", err)
	}
	tarWriter.Close()
	gzWriter.Close()

	if err := Extract(archivePath, destDir); err == nil {
		t.Fatal("Extract: expected an error for an oversized entry, got nil")
	}
}

// asUnsafeEntryError is a direct type assertion standing in for errors.As,
// kept local to this test file to avoid importing "errors" just for one
// call site. It does not unwrap; Extract returns *UnsafeEntryError as is.
func asUnsafeEntryError(err error, target **UnsafeEntryError) bool {
	if unsafeErr, ok := err.(*UnsafeEntryError); ok {
		*target = unsafeErr
		return true
	}
	return false
}
