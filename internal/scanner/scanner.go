// Package scanner discovers installed applications by walking descriptor
// directories and building an immutable index from the parsed entries.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-desktop/lumen/internal/desktop"
	"github.com/lumen-desktop/lumen/internal/index"
)

// SkippedFile records a descriptor that could not be parsed. Skips are
// diagnostics, never fatal: one bad file must not abort the scan.
type SkippedFile struct {
	Path string
	Err  error
}

// Result is the outcome of one scan pass.
type Result struct {
	Index *index.Index

	// Skipped lists descriptors dropped with a parse error.
	Skipped []SkippedFile

	// UnreadableDirs lists search directories that exist but could not be
	// read. A nonexistent directory is normal and not reported.
	UnreadableDirs []string
}

// Scan walks the given directories in order, non-recursively, parsing every
// .desktop file found. Directories earlier in the list take precedence: the
// first entry seen for an identifier wins. The scan always produces an Index,
// possibly empty; callers decide whether an empty index is catastrophic.
func Scan(dirs []string) *Result {
	res := &Result{}

	var entries []*desktop.Entry
	for _, dir := range dirs {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				res.UnreadableDirs = append(res.UnreadableDirs, dir)
			}
			continue
		}

		for _, de := range dirEntries {
			if !isDescriptor(de) {
				continue
			}
			path := filepath.Join(dir, de.Name())
			entry, err := desktop.ParseFile(path)
			if err != nil {
				res.Skipped = append(res.Skipped, SkippedFile{Path: path, Err: err})
				continue
			}
			entries = append(entries, entry)
		}
	}

	res.Index = index.New(entries)
	return res
}

// isDescriptor reports whether a directory entry looks like a descriptor
// file. Symlinked descriptors are common (e.g. flatpak exports) and are
// accepted; subdirectories are not descended into.
func isDescriptor(de fs.DirEntry) bool {
	if de.IsDir() {
		return false
	}
	return strings.HasSuffix(de.Name(), ".desktop")
}
