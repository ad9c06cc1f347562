// Package desktop provides the application entry model and parsing of
// freedesktop .desktop descriptor files.
package desktop

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Parse errors. All of them are per-file and recoverable: the scanner skips
// the offending descriptor and continues.
var (
	ErrNoEntrySection = errors.New("desktop: no [Desktop Entry] section")
	ErrMissingName    = errors.New("desktop: entry has no Name key")
	ErrMissingExec    = errors.New("desktop: entry has no Exec key")
)

// Entry is one installed application as described by a .desktop file.
// Entries are immutable after parsing; a rescan produces fresh values.
type Entry struct {
	// ID is the descriptor filename without the .desktop suffix. It is the
	// stable identifier used for deduplication, usage tracking, and ranking
	// tie-breaks.
	ID string

	// Path is the absolute path of the descriptor file the entry came from.
	Path string

	Name        string
	GenericName string
	Comment     string
	Keywords    []string
	Categories  []string

	// Exec is the raw command template including field codes (%f, %u, ...).
	Exec string

	// WorkingDir is the optional Path= key.
	WorkingDir string

	// Icon is an icon name to resolve against the icon theme, or an
	// absolute file path.
	Icon string

	// Terminal is true when the application must run inside a terminal
	// emulator.
	Terminal bool

	// Hidden is true for NoDisplay=true or Hidden=true entries. Hidden
	// entries stay in the index but are excluded from scoring.
	Hidden bool
}

// loadOptions disables INI quote/escape processing: desktop-entry values are
// raw strings and Exec lines legitimately contain quotes and backslashes.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	KeyValueDelimiters:      "=",
	SkipUnrecognizableLines: true,
	PreserveSurroundedQuote: true,
	IgnoreContinuation:      true,
}

// ParseFile parses a single descriptor file into an Entry.
//
// A missing Name or Exec key returns ErrMissingName/ErrMissingExec wrapped
// with the file path; a file without a [Desktop Entry] section returns
// ErrNoEntrySection. Callers treat all of these as skip-and-continue.
func ParseFile(path string) (*Entry, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return parse(path, f)
}

// ParseBytes parses descriptor content that is already in memory. Used by
// tests and by the scanner's malformed-file diagnostics.
func ParseBytes(path string, data []byte) (*Entry, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return parse(path, f)
}

func parse(path string, f *ini.File) (*Entry, error) {
	sec, err := f.GetSection("Desktop Entry")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoEntrySection)
	}

	name := sec.Key("Name").String()
	if name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingName)
	}

	execLine := sec.Key("Exec").String()
	if execLine == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingExec)
	}

	entry := &Entry{
		ID:          IDFromPath(path),
		Path:        path,
		Name:        name,
		GenericName: sec.Key("GenericName").String(),
		Comment:     sec.Key("Comment").String(),
		Keywords:    splitList(sec.Key("Keywords").String()),
		Categories:  splitList(sec.Key("Categories").String()),
		Exec:        execLine,
		WorkingDir:  sec.Key("Path").String(),
		Icon:        sec.Key("Icon").String(),
		Terminal:    sec.Key("Terminal").String() == "true",
		Hidden:      sec.Key("NoDisplay").String() == "true" || sec.Key("Hidden").String() == "true",
	}

	return entry, nil
}

// IDFromPath derives the stable application identifier from a descriptor
// file path: the base name without the .desktop suffix.
func IDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".desktop")
}

// HasCategory reports whether the entry declares the given category.
func (e *Entry) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// splitList splits a semicolon-separated desktop-entry list value, dropping
// empty items (lists conventionally end with a trailing semicolon).
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
