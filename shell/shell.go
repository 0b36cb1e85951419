// Package shell dispatches command lines against the in-memory filesystem,
// keeps the operation and error histories, and drives snapshots.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/config"
	"github.com/memfsh/memfsh/filesystem"
	"github.com/memfsh/memfsh/internal/util"
	"github.com/memfsh/memfsh/snapshot"
)

type Shell struct {
	cfg        *config.Config
	fs         *filesystem.FileSystem
	translator memfsh.Translator
	snapshots  *snapshot.Manager

	ops  *History
	errs *History

	commands map[string]Command
	verbs    []string

	logger zerolog.Logger
	clock  func() time.Time
}

// New wires a shell over fs. translator may be nil, which disables
// natural-language dispatch regardless of configuration.
func New(cfg *config.Config, fs *filesystem.FileSystem, translator memfsh.Translator) *Shell {
	sh := &Shell{
		cfg:        cfg,
		fs:         fs,
		translator: translator,
		snapshots:  snapshot.NewManager(cfg.SnapshotDir),
		ops:        NewHistory(),
		errs:       NewHistory(),
		commands:   make(map[string]Command),
		logger:     util.GetLogger("shell"),
		clock:      time.Now,
	}

	for _, c := range []Command{
		cdCmd{},
		mkdirCmd{},
		lsCmd{alias: memfsh.VerbLs},
		lsCmd{alias: memfsh.VerbDir},
		touchCmd{alias: memfsh.VerbTouch},
		touchCmd{alias: memfsh.VerbType},
		catCmd{},
		rmCmd{},
		rmdirCmd{},
		renameCmd{},
		pwdCmd{},
		logCmd{},
		clearLogCmd{},
		indexCmd{},
		backupCmd{},
		helpCmd{},
	} {
		sh.commands[c.Name()] = c
		sh.verbs = append(sh.verbs, c.Name())
	}
	return sh
}

func (sh *Shell) FS() *filesystem.FileSystem { return sh.fs }

// SetTranslator installs the natural-language translator. The shell has to
// exist first so the translator can be built over its registered verbs.
func (sh *Shell) SetTranslator(t memfsh.Translator) { sh.translator = t }

// Verbs returns the registered command names, longest-match ordering is
// handled by the parser itself.
func (sh *Shell) Verbs() []string {
	out := make([]string, len(sh.verbs))
	copy(out, sh.verbs)
	return out
}

func (sh *Shell) Operations() *History { return sh.ops }
func (sh *Shell) Errors() *History     { return sh.errs }

// Dispatch parses input as a verb line and runs it. Lines that match no
// registered verb go to the translator when the chatbot is enabled; a line
// the translator cannot resolve fails with ErrUnknownCommand.
func (sh *Shell) Dispatch(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if parsed, ok := memfsh.ParseLine(input, sh.verbs); ok {
		return sh.execute(parsed, "")
	}

	if sh.translator == nil || !sh.cfg.ChatbotEnabled {
		return "", sh.fail(input, fmt.Errorf("%w: %q", ErrUnknownCommand, input))
	}

	parsed, err := sh.translator.Translate(ctx, input)
	if err != nil {
		sh.logger.Debug().Err(err).Str("input", input).Msg("translation failed")
		return "", sh.fail(input, fmt.Errorf("%w: %q", ErrUnknownCommand, input))
	}
	return sh.execute(parsed, fmt.Sprintf("Interpreted as: %s\n", parsed))
}

func (sh *Shell) execute(parsed *memfsh.ParsedCommand, prefix string) (string, error) {
	if !sh.cfg.CommandEnabled(parsed.Verb) {
		return "", sh.fail(parsed.String(), fmt.Errorf("%w: %q", ErrCommandDisabled, parsed.Verb))
	}

	cmd, ok := sh.commands[parsed.Verb]
	if !ok {
		return "", sh.fail(parsed.String(), fmt.Errorf("%w: %q", ErrUnknownCommand, parsed.Verb))
	}

	out, err := cmd.Run(sh, parsed.Args)
	if err != nil {
		return "", sh.fail(parsed.String(), err)
	}

	if sh.cfg.LogOperations && parsed.Verb != memfsh.VerbLog && parsed.Verb != memfsh.VerbClearLog {
		sh.ops.Push(sh.clock(), parsed.String())
	}

	if sh.cfg.AutoSnapshot && Mutating(parsed.Verb) {
		if _, snapErr := sh.SaveSnapshot(); snapErr != nil {
			sh.logger.Warn().Err(snapErr).Msg("auto snapshot failed")
		}
	}
	return prefix + out, nil
}

// fail records err on the error stack and returns it unchanged.
func (sh *Shell) fail(input string, err error) error {
	sh.errs.Push(sh.clock(), fmt.Sprintf("%s -> %v", input, err))
	return err
}

// SaveSnapshot writes the current tree and histories to the snapshot
// directory and returns the file path.
func (sh *Shell) SaveSnapshot() (string, error) {
	path, err := sh.snapshots.Save(sh.fs, snapshot.State{
		Cwd:        sh.fs.CurrentPath(),
		Operations: sh.ops.Oldest(),
		Errors:     sh.errs.Oldest(),
	})
	if err != nil {
		return "", err
	}
	sh.logger.Info().Str("path", path).Msg("snapshot saved")
	return path, nil
}

// RestoreLatest loads the newest snapshot and replays it into the
// filesystem and histories. A missing snapshot directory is not an error.
func (sh *Shell) RestoreLatest() (bool, error) {
	snap, err := sh.snapshots.LoadLatest()
	if errors.Is(err, snapshot.ErrNoSnapshots) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	state, err := sh.snapshots.Restore(snap, sh.fs)
	if err != nil {
		return false, err
	}

	sh.ops.Clear()
	for _, entry := range state.Operations {
		sh.ops.PushRaw(entry)
	}
	sh.errs.Clear()
	for _, entry := range state.Errors {
		sh.errs.PushRaw(entry)
	}
	sh.logger.Info().
		Str("id", snap.ID).
		Str("dir", sh.snapshots.Dir()).
		Time("created_at", snap.CreatedAt).
		Msg("snapshot restored")
	return true, nil
}

// SeedDemoData populates an empty tree with a small sample layout so the
// interactive session has something to explore.
func (sh *Shell) SeedDemoData() error {
	if sh.fs.Root().NumChildren() > 0 {
		return nil
	}
	for _, dir := range []string{"/Documents", "/Projects", "/Documents/Reports"} {
		if _, err := sh.fs.MakeDir(dir); err != nil {
			return err
		}
	}
	files := map[string]string{
		"/Notes.txt":                "Remember to review the quarterly numbers.",
		"/Tasks.txt":                "1. Triage inbox\n2. Update roadmap",
		"/Documents/Summary.txt":    "Summary of the current project state.",
		"/Projects/ideas.md":        "# Ideas\n- faster indexing\n- better search",
		"/Documents/Reports/q1.txt": "Q1 went fine.",
	}
	for path, content := range files {
		if _, err := sh.fs.WriteFile(path, []byte(content)); err != nil {
			return err
		}
	}
	sh.logger.Debug().Msg("demo data seeded")
	return nil
}
