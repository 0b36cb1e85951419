package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/config"
	"github.com/memfsh/memfsh/filesystem"
	"github.com/memfsh/memfsh/internal/util"
	"github.com/memfsh/memfsh/shell"
	"github.com/memfsh/memfsh/translator"
)

func parseLogLevel(s string) util.LogLevel {
	switch strings.ToLower(s) {
	case "trace":
		return util.TraceLevel
	case "debug":
		return util.DebugLevel
	case "warn", "warning":
		return util.WarnLevel
	case "error":
		return util.ErrorLevel
	default:
		return util.InfoLevel
	}
}

// buildTranslator assembles the Gemini chain with the rule-based fallback.
// Without a credential only the rules run.
func buildTranslator(cfg *config.Config, verbs []string) memfsh.Translator {
	logger := util.GetLogger("cli.buildTranslator")

	rules := translator.NewRules()
	gem, err := translator.NewGemini(cfg, verbs)
	if err != nil {
		if errors.Is(err, translator.ErrMissingCredential) {
			logger.Warn().Msg("GEMINI_API_KEY not set, using rule-based translation only")
		} else {
			logger.Warn().Err(err).Msg("Gemini translator unavailable, using rule-based translation only")
		}
		return rules
	}
	return translator.NewFallback(translator.NewBreaker(gem, cfg), rules)
}

func runShell(cmd *cobra.Command) error {
	// A missing .env file is fine; real env vars still apply.
	_ = godotenv.Load()

	util.InitializeLogger(parseLogLevel(flagLogLevel))
	logger := util.GetLogger("cli.runShell")

	cfg, err := config.NewConfigFromEnv(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagNoChatbot {
		cfg.ChatbotEnabled = false
	}

	fs := filesystem.NewFS()
	sh := shell.New(cfg, fs, nil)
	if cfg.ChatbotEnabled {
		sh.SetTranslator(buildTranslator(cfg, sh.Verbs()))
	}

	out := cmd.OutOrStdout()

	restored := false
	if cfg.RestoreOnStart && !flagNoRestore {
		restored, err = sh.RestoreLatest()
		if err != nil {
			logger.Warn().Err(err).Msg("Snapshot restore failed, starting fresh")
		}
		if restored {
			fmt.Fprintln(out, noteStyle.Render("Restored latest snapshot from "+cfg.SnapshotDir))
		}
	}
	if !restored && !flagNoSeed {
		if err := sh.SeedDemoData(); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	fmt.Fprintln(out, "memfsh - in-memory filesystem shell. Type 'help' for commands, 'exit' to quit.")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, promptStyle.Render(fs.CurrentPath()+">")+" ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, hintStyle.Render("bye"))
			return nil
		}

		output, err := sh.Dispatch(ctx, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
			if errors.Is(err, shell.ErrUnknownCommand) {
				fmt.Fprintln(out, hintStyle.Render("Type 'help' to list commands."))
			}
			continue
		}
		if output != "" {
			fmt.Fprintln(out, output)
		}
	}
	return scanner.Err()
}
