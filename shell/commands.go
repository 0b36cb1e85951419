package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/filesystem"
)

// Command is one executable verb. Run returns the user-facing output or an
// error; it must not print anything itself.
type Command interface {
	Name() string
	Usage() string
	Run(sh *Shell, args []string) (string, error)
}

// Mutating reports whether verb changes the tree, which drives the
// automatic snapshot after successful execution.
func Mutating(verb string) bool {
	switch verb {
	case memfsh.VerbMkdir, memfsh.VerbTouch, memfsh.VerbType,
		memfsh.VerbRm, memfsh.VerbRmdir, memfsh.VerbRename:
		return true
	}
	return false
}

func usageErr(c Command) error {
	return fmt.Errorf("usage: %s", c.Usage())
}

type cdCmd struct{}

func (cdCmd) Name() string  { return memfsh.VerbCd }
func (cdCmd) Usage() string { return "cd <path>  (absolute, relative, .. and . supported)" }

func (c cdCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErr(c)
	}
	p, err := sh.fs.ChangeDir(args[0])
	if err != nil {
		return "", err
	}
	return "Current directory: " + p, nil
}

type mkdirCmd struct{}

func (mkdirCmd) Name() string  { return memfsh.VerbMkdir }
func (mkdirCmd) Usage() string { return "mkdir <path>" }

func (c mkdirCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErr(c)
	}
	node, err := sh.fs.MakeDir(args[0])
	if err != nil {
		return "", err
	}
	p, _ := node.Path()
	return fmt.Sprintf("Directory %q created", p), nil
}

// lsCmd serves both "ls" and its "dir" alias.
type lsCmd struct {
	alias string
}

func (c lsCmd) Name() string  { return c.alias }
func (c lsCmd) Usage() string { return c.alias + " [path]" }

func (c lsCmd) Run(sh *Shell, args []string) (string, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	entries, err := sh.fs.List(path)
	if err != nil {
		return "", err
	}
	header, err := sh.fs.AbsPath(path)
	if err != nil {
		return "", err
	}

	lines := []string{"Contents of " + header, strings.Repeat("-", 40)}
	if len(entries) == 0 {
		lines = append(lines, "The directory is empty")
	}
	for _, e := range entries {
		if e.Kind == filesystem.KindDir {
			lines = append(lines, "[DIR]  "+e.Name)
		} else {
			lines = append(lines, fmt.Sprintf("[FILE] %s (%d bytes)", e.Name, e.Size))
		}
	}
	lines = append(lines, fmt.Sprintf("\nTotal: %d entry(s)", len(entries)))
	return strings.Join(lines, "\n"), nil
}

// touchCmd serves both "touch" and its "type" alias. Creates or overwrites
// a file with the remaining arguments joined as content.
type touchCmd struct {
	alias string
}

func (c touchCmd) Name() string  { return c.alias }
func (c touchCmd) Usage() string { return c.alias + ` <name> ["content"]` }

func (c touchCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErr(c)
	}
	content := strings.Join(args[1:], " ")
	node, err := sh.fs.WriteFile(args[0], []byte(content))
	if err != nil {
		return "", err
	}
	p, _ := node.Path()
	return fmt.Sprintf("File %q written (%d bytes)", p, node.Size()), nil
}

type catCmd struct{}

func (catCmd) Name() string  { return memfsh.VerbCat }
func (catCmd) Usage() string { return "cat <path>" }

func (c catCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErr(c)
	}
	content, err := sh.fs.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// splitRemoveArgs separates the recursive flag from the target path.
// Both "-r" and the DOS-style "/s" spelling are accepted.
func splitRemoveArgs(args []string) (target string, recursive bool) {
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "-r", "-rf", "/s":
			recursive = true
		default:
			if target == "" {
				target = arg
			}
		}
	}
	return target, recursive
}

type rmCmd struct{}

func (rmCmd) Name() string  { return memfsh.VerbRm }
func (rmCmd) Usage() string { return "rm <path> [-r]" }

func (c rmCmd) Run(sh *Shell, args []string) (string, error) {
	target, recursive := splitRemoveArgs(args)
	if target == "" {
		return "", usageErr(c)
	}
	p, err := sh.fs.Remove(target, recursive)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %q", p), nil
}

type rmdirCmd struct{}

func (rmdirCmd) Name() string  { return memfsh.VerbRmdir }
func (rmdirCmd) Usage() string { return "rmdir <path> [-r]" }

func (c rmdirCmd) Run(sh *Shell, args []string) (string, error) {
	target, recursive := splitRemoveArgs(args)
	if target == "" {
		return "", usageErr(c)
	}
	p, err := sh.fs.RemoveDir(target, recursive)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed directory %q", p), nil
}

type renameCmd struct{}

func (renameCmd) Name() string  { return memfsh.VerbRename }
func (renameCmd) Usage() string { return "rename <path> <newname>" }

func (c renameCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) < 2 {
		return "", usageErr(c)
	}
	if err := sh.fs.Rename(args[0], args[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Renamed %q to %q", args[0], args[1]), nil
}

type pwdCmd struct{}

func (pwdCmd) Name() string  { return memfsh.VerbPwd }
func (pwdCmd) Usage() string { return "pwd" }

func (pwdCmd) Run(sh *Shell, _ []string) (string, error) {
	return sh.fs.CurrentPath(), nil
}

type logCmd struct{}

func (logCmd) Name() string  { return memfsh.VerbLog }
func (logCmd) Usage() string { return "log  (operation history, newest first)" }

func (logCmd) Run(sh *Shell, _ []string) (string, error) {
	items := sh.ops.Items()
	if len(items) == 0 {
		return "History is empty", nil
	}
	lines := append([]string{"--- Operation history (newest first) ---"}, items...)
	return strings.Join(lines, "\n"), nil
}

type clearLogCmd struct{}

func (clearLogCmd) Name() string  { return memfsh.VerbClearLog }
func (clearLogCmd) Usage() string { return "clear log" }

func (clearLogCmd) Run(sh *Shell, _ []string) (string, error) {
	sh.ops.Clear()
	sh.errs.Clear()
	return "Operation and error history cleared", nil
}

type indexCmd struct{}

func (indexCmd) Name() string { return memfsh.VerbIndex }
func (indexCmd) Usage() string {
	return "index search [-file <text>] [-range <min-max>]"
}

func (c indexCmd) Run(sh *Shell, args []string) (string, error) {
	if len(args) == 0 || strings.ToLower(args[0]) != "search" {
		return "", usageErr(c)
	}

	text := ""
	minKB, maxKB := -1, -1
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-file":
			if i+1 >= len(rest) {
				return "", usageErr(c)
			}
			text = rest[i+1]
			i++
		case "-range":
			if i+1 >= len(rest) {
				return "", usageErr(c)
			}
			var err error
			minKB, maxKB, err = parseRange(rest[i+1])
			if err != nil {
				return "", err
			}
			i++
		default:
			if text == "" {
				text = rest[i]
			}
		}
	}
	if text == "" && minKB < 0 && maxKB < 0 {
		return "", fmt.Errorf("index search: provide a text or a size range")
	}

	results := sh.fs.Index().Search(text, minKB, maxKB)
	if len(results) == 0 {
		return "No matches in the global index", nil
	}
	lines := []string{fmt.Sprintf("Global index: %d match(es)", len(results))}
	for i, entry := range results {
		lines = append(lines, fmt.Sprintf("%d. %s (%d KB)", i+1, entry.Path, entry.SizeKB))
	}
	return strings.Join(lines, "\n"), nil
}

// parseRange parses "min-max" with either side optional, e.g. "10-", "-5".
func parseRange(s string) (minKB, maxKB int, err error) {
	minKB, maxKB = -1, -1
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, fmt.Errorf("invalid range %q: use <min-max>", s)
	}
	if lo != "" {
		if minKB, err = strconv.Atoi(lo); err != nil {
			return 0, 0, fmt.Errorf("invalid range %q: bounds must be integers", s)
		}
	}
	if hi != "" {
		if maxKB, err = strconv.Atoi(hi); err != nil {
			return 0, 0, fmt.Errorf("invalid range %q: bounds must be integers", s)
		}
	}
	return minKB, maxKB, nil
}

type backupCmd struct{}

func (backupCmd) Name() string  { return memfsh.VerbBackup }
func (backupCmd) Usage() string { return "backup" }

func (backupCmd) Run(sh *Shell, _ []string) (string, error) {
	path, err := sh.SaveSnapshot()
	if err != nil {
		return "", err
	}
	return "Snapshot written to " + path, nil
}

type helpCmd struct{}

func (helpCmd) Name() string  { return memfsh.VerbHelp }
func (helpCmd) Usage() string { return "help" }

func (helpCmd) Run(sh *Shell, _ []string) (string, error) {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{"Available commands:"}
	for _, name := range names {
		lines = append(lines, "  "+sh.commands[name].Usage())
	}
	lines = append(lines, "", "Anything else is sent to the natural-language translator when enabled.")
	return strings.Join(lines, "\n"), nil
}
