package translator

import (
	"context"
	"strings"

	"github.com/memfsh/memfsh"
)

// Rules is a deterministic keyword translator. It covers the common
// phrasings only and is used when no API credential is configured and as an
// offline fallback when the hosted model is unreachable.
type Rules struct{}

// NewRules creates a rule-based translator.
func NewRules() *Rules { return &Rules{} }

// Name implements [memfsh.Translator].
func (r *Rules) Name() string { return "rules" }

// stopwords are filler words stripped before picking a path argument.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "into": true,
	"folder": true, "directory": true, "dir": true, "file": true,
	"go": true, "move": true, "enter": true, "open": true, "in": true,
	"called": true, "named": true, "please": true, "me": true,
}

// Translate implements [memfsh.Translator].
func (r *Rules) Translate(_ context.Context, text string) (*memfsh.ParsedCommand, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil, ErrUntranslatable
	}

	switch {
	case containsAny(lower, "create", "make", "new") && containsAny(lower, "folder", "directory"):
		if name := lastArgument(lower); name != "" {
			return &memfsh.ParsedCommand{Verb: memfsh.VerbMkdir, Args: []string{name}, Raw: text}, nil
		}

	case containsAny(lower, "go", "enter", "open", "change", "move") &&
		containsAny(lower, "folder", "directory", "back", "up", ".."):
		if strings.Contains(lower, "..") || containsAny(lower, "back", "up", "parent") {
			return &memfsh.ParsedCommand{Verb: memfsh.VerbCd, Args: []string{".."}, Raw: text}, nil
		}
		if name := lastArgument(lower); name != "" {
			return &memfsh.ParsedCommand{Verb: memfsh.VerbCd, Args: []string{name}, Raw: text}, nil
		}

	case containsAny(lower, "list", "show", "what is in", "what's in", "contents"):
		return &memfsh.ParsedCommand{Verb: memfsh.VerbLs, Raw: text}, nil

	case containsAny(lower, "where am i", "current directory", "current path"):
		return &memfsh.ParsedCommand{Verb: memfsh.VerbPwd, Raw: text}, nil

	case strings.Contains(lower, "history") && containsAny(lower, "clear", "clean", "erase"):
		return &memfsh.ParsedCommand{Verb: memfsh.VerbClearLog, Raw: text}, nil

	case strings.Contains(lower, "history"):
		return &memfsh.ParsedCommand{Verb: memfsh.VerbLog, Raw: text}, nil

	case containsAny(lower, "delete", "remove") && containsAny(lower, "folder", "directory"):
		if name := lastArgument(lower); name != "" {
			return &memfsh.ParsedCommand{Verb: memfsh.VerbRm, Args: []string{name, "-r"}, Raw: text}, nil
		}

	case containsAny(lower, "delete", "remove"):
		if name := lastArgument(lower); name != "" {
			return &memfsh.ParsedCommand{Verb: memfsh.VerbRm, Args: []string{name}, Raw: text}, nil
		}

	case containsAny(lower, "backup", "save a snapshot", "snapshot"):
		return &memfsh.ParsedCommand{Verb: memfsh.VerbBackup, Raw: text}, nil
	}

	return nil, ErrUntranslatable
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// lastArgument returns the last non-stopword token, the most likely name or
// path in the phrase.
func lastArgument(lower string) string {
	fields := strings.Fields(lower)
	for i := len(fields) - 1; i >= 0; i-- {
		word := strings.Trim(fields[i], `"'.,!?`)
		if word == "" || stopwords[word] {
			continue
		}
		switch word {
		case "create", "make", "new", "delete", "remove", "change":
			continue
		}
		return word
	}
	return ""
}

// Compile-time interface check.
var _ memfsh.Translator = (*Rules)(nil)
