package memfsh

import (
	"sort"
	"strings"
)

// Verb names accepted by the shell dispatcher. Translators must emit one of
// these; anything else is reported as an unknown command.
const (
	VerbCd       = "cd"
	VerbMkdir    = "mkdir"
	VerbLs       = "ls"
	VerbDir      = "dir"
	VerbTouch    = "touch"
	VerbType     = "type"
	VerbCat      = "cat"
	VerbRm       = "rm"
	VerbRmdir    = "rmdir"
	VerbRename   = "rename"
	VerbPwd      = "pwd"
	VerbLog      = "log"
	VerbClearLog = "clear log"
	VerbIndex    = "index"
	VerbBackup   = "backup"
	VerbHelp     = "help"
)

// ParsedCommand is the shape handed from a [Translator] (or the literal
// command line) to the shell dispatcher: a verb plus its raw arguments.
type ParsedCommand struct {
	Verb string   // one of the Verb* constants
	Args []string // positional arguments, flags included verbatim
	Raw  string   // original input line, kept for history and error messages
}

// String reassembles the command as a single line.
func (c *ParsedCommand) String() string {
	if len(c.Args) == 0 {
		return c.Verb
	}
	return c.Verb + " " + strings.Join(c.Args, " ")
}

// ParseLine matches line against the given verbs (longest verb first, so
// "clear log" wins over "log") and splits the remainder into arguments.
// Matching is case-insensitive on the verb; arguments keep their case.
// Returns false when no verb matches.
func ParseLine(line string, verbs []string) (*ParsedCommand, bool) {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)

	sorted := make([]string, len(verbs))
	copy(sorted, verbs)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, verb := range sorted {
		if lower == verb {
			return &ParsedCommand{Verb: verb, Raw: trimmed}, true
		}
		if strings.HasPrefix(lower, verb+" ") {
			rest := strings.TrimSpace(trimmed[len(verb):])
			return &ParsedCommand{Verb: verb, Args: SplitArgs(rest), Raw: trimmed}, true
		}
	}
	return nil, false
}

// SplitArgs tokenizes a command argument string. Double-quoted spans are kept
// as a single token with the quotes stripped, so file content like
// `touch notes.txt "hello there"` survives intact.
func SplitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				args = append(args, cur.String())
				cur.Reset()
			} else {
				flush()
			}
			inQuote = !inQuote
		case r == ' ' || r == '\t':
			if inQuote {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
