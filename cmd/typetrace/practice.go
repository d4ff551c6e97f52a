package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/typetrace/internal/config"
	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/prompts"
	"github.com/Zuo-Peng/typetrace/internal/report"
	"github.com/Zuo-Peng/typetrace/internal/scan"
	"github.com/Zuo-Peng/typetrace/internal/script"
	"github.com/Zuo-Peng/typetrace/internal/session"
	"github.com/Zuo-Peng/typetrace/internal/tui"
)

// targetFlags select the practice text. At most one may be set; none means a
// random catalog prompt.
type targetFlags struct {
	text     string
	file     string
	promptID int64
	random   bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "Practice this text")
	cmd.Flags().StringVar(&f.file, "file", "", "Practice the contents of a text file")
	cmd.Flags().Int64Var(&f.promptID, "prompt", 0, "Practice a catalog prompt by id")
	cmd.Flags().BoolVar(&f.random, "random", false, "Practice a random catalog prompt (default)")
	cmd.MarkFlagsMutuallyExclusive("text", "file", "prompt", "random")
}

// resolve returns the target text and, for catalog prompts, its id.
func (f *targetFlags) resolve(cfg *config.Config) (string, int64, error) {
	switch {
	case f.text != "":
		text, err := inlineTarget(f.text)
		if err != nil {
			return "", 0, err
		}
		return text, 0, nil
	case f.file != "":
		text, err := scan.ReadPrompt(f.file)
		if err != nil {
			return "", 0, err
		}
		return text, 0, nil
	}

	db, err := prompts.OpenDB(cfg.DBPath)
	if err != nil {
		return "", 0, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var p *prompts.Prompt
	if f.promptID > 0 {
		p, err = db.Get(f.promptID)
	} else {
		p, err = db.Random()
	}
	if err != nil {
		return "", 0, fmt.Errorf("load prompt: %w", err)
	}
	return p.Text, p.ID, nil
}

// inlineTarget trims the ends of a --text value and keeps the rest as typed.
func inlineTarget(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", errors.New("--text is blank")
	}
	return text, nil
}

func practiceCmd() *cobra.Command {
	var target targetFlags
	var record string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Type a prompt in the terminal and report the session summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("practice needs an interactive terminal; use 'typetrace replay' for scripted input")
			}

			// the terminal belongs to the renderer, so logs go to a file
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logFile, err := log.OpenFile(cfg.LogFile)
			if err != nil {
				return err
			}
			defer logFile.Close()
			log.Configure(log.Config{Level: cfg.LogLevel, Output: logFile})

			text, promptID, err := target.resolve(cfg)
			if err != nil {
				return err
			}

			res, err := tui.Run(cmd.Context(), tui.Options{
				Service:        newClient(cfg),
				Target:         text,
				PromptID:       promptID,
				Timeout:        cfg.RequestTimeout,
				CorrectionKeys: cfg.CorrectionKeys,
				Record:         record != "",
			})
			if err != nil {
				return err
			}

			if record != "" {
				if err := script.Write(record, res.Records); err != nil {
					return fmt.Errorf("write script: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Recorded %d key events to %s\n", len(res.Records), record)
			}

			if res.State != session.Completed || res.Summary == nil {
				fmt.Fprintf(os.Stderr, "Session not completed (%s).\n", res.State)
				return nil
			}

			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
				width = w
			}
			fmt.Println(report.RenderSummary(res.Summary, report.Options{Width: width, NoColor: noColor}))
			return nil
		},
	}

	target.register(cmd)
	cmd.Flags().StringVar(&record, "record", "", "Write the key events to a JSONL script for replay")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Print the summary without ANSI colours")

	return cmd
}
