package desktop

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCommand is returned when an Exec template expands to nothing, e.g.
// a template consisting solely of field codes.
var ErrEmptyCommand = errors.New("desktop: command template expands to an empty command")

// ExpandExec expands a desktop-entry Exec template into an argument vector.
//
// Field codes for files and URLs (%f, %F, %u, %U) are replaced by extraArgs
// when the caller supplies them, otherwise removed. Informational codes
// (%i, %c, %k) and the deprecated codes (%d, %D, %n, %N, %v, %m) are always
// removed. A literal %% becomes %.
func ExpandExec(template string, extraArgs []string) ([]string, error) {
	tokens, err := splitCommand(template)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(tokens)+len(extraArgs))
	for _, tok := range tokens {
		switch tok {
		case "%f", "%F", "%u", "%U":
			argv = append(argv, extraArgs...)
			extraArgs = nil
		case "%i", "%c", "%k", "%d", "%D", "%n", "%N", "%v", "%m":
			// Removed: no icon/caption/descriptor context is supplied here.
		default:
			argv = append(argv, expandToken(tok))
		}
	}

	// Field codes may also appear embedded in a longer argument; extraArgs
	// that were not consumed by a standalone code are appended at the end.
	argv = append(argv, extraArgs...)

	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// BuildCommand expands the entry's Exec template and, when the entry requires
// a terminal, wraps the result in the configured terminal emulator using the
// conventional "-e" flag.
func BuildCommand(entry *Entry, terminal string, extraArgs []string) ([]string, error) {
	argv, err := ExpandExec(entry.Exec, extraArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand command for %s: %w", entry.ID, err)
	}

	if entry.Terminal && terminal != "" {
		wrapped := make([]string, 0, len(argv)+2)
		wrapped = append(wrapped, terminal, "-e")
		wrapped = append(wrapped, argv...)
		return wrapped, nil
	}
	return argv, nil
}

// expandToken resolves embedded %% escapes and strips any in-token field
// codes that survived tokenization (e.g. `--file=%f`).
func expandToken(tok string) string {
	if !strings.ContainsRune(tok, '%') {
		return tok
	}

	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '%' || i+1 >= len(tok) {
			b.WriteByte(tok[i])
			continue
		}
		next := tok[i+1]
		if next == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if strings.IndexByte("fFuUickdDnNvm", next) >= 0 {
			i++ // drop the code
			continue
		}
		b.WriteByte(tok[i])
	}
	return b.String()
}

// splitCommand tokenizes an Exec line, honoring double-quoted arguments and
// backslash escapes inside quotes per the desktop-entry spec.
func splitCommand(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted && c == '\\' && i+1 < len(line):
			current.WriteByte(line[i+1])
			i++
		case c == '"':
			quoted = !quoted
			started = true
		case !quoted && (c == ' ' || c == '\t'):
			if started || current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteByte(c)
			started = true
		}
	}

	if quoted {
		return nil, fmt.Errorf("desktop: unterminated quote in command %q", line)
	}
	if started || current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
