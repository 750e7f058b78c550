package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lingohawk/goldiscan/internal/config"
	"github.com/lingohawk/goldiscan/internal/storage"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive prospecting shell",
	Long: `Start an interactive shell for prospecting sessions.

Commands inside the shell:
  scan <org> [org...]    Scan organizations
  leads                  List stored sessions, newest first
  report <org|id>        Print one session in full
  help                   Show available commands
  exit                   Leave the shell`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		store, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := runREPL(cfg, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cfg config.Config, store storage.ResultStore) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("goldiscan> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("creating readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("goldiscan interactive shell. Type 'help' for commands, 'exit' to leave.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := replDispatch(cfg, store, line); err != nil {
			if err == io.EOF {
				return nil
			}
			color.Red("Error: %v", err)
		}
	}
}

func replDispatch(cfg config.Config, store storage.ResultStore, line string) error {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "scan":
		if len(args) == 0 {
			return fmt.Errorf("usage: scan <org> [org...]")
		}
		return runScans(context.Background(), cfg, store, args)
	case "leads", "list":
		return listSessions(context.Background(), store, 50)
	case "report", "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: report <org|session-id>")
		}
		return showSession(context.Background(), store, args[0])
	case "help":
		fmt.Println("  scan <org> [org...]    Scan organizations")
		fmt.Println("  leads                  List stored sessions")
		fmt.Println("  report <org|id>        Print one session in full")
		fmt.Println("  exit                   Leave the shell")
		return nil
	case "exit", "quit":
		return io.EOF
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}
