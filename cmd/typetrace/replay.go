package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/report"
	"github.com/Zuo-Peng/typetrace/internal/script"
	"github.com/Zuo-Peng/typetrace/internal/session"
)

func replayCmd() *cobra.Command {
	var target targetFlags
	var force, asJSON, noColor bool

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a recorded JSONL key script against the session service",
		Long: `Replay feeds a JSONL script of key events through a session headlessly.
Each line is {"type":"press"|"release","key":"a","at":0.25} with "at" in
seconds from the start of the run. The target text comes from --text, --file
or --prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.text == "" && target.file == "" && target.promptID == 0 {
				return errors.New("replay needs a target: --text, --file or --prompt")
			}

			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}

			recs, err := script.Parse(args[0])
			if err != nil {
				return err
			}

			text, promptID, err := target.resolve(cfg)
			if err != nil {
				return err
			}

			player := script.NewPlayer(force)
			logger := log.WithComponent("replay")
			if promptID > 0 {
				logger = logger.With().Int64(log.FieldPromptID, promptID).Logger()
			}
			player.Log = logger

			opts := []session.Option{session.WithClock(player.Now), session.WithLogger(logger)}
			if len(cfg.CorrectionKeys) > 0 {
				opts = append(opts, session.WithCorrectionKeys(cfg.CorrectionKeys...))
			}
			ctrl := session.New(newClient(cfg), text, opts...)
			defer ctrl.Close()

			sum, err := player.Replay(cmd.Context(), ctrl, recs)
			if err != nil {
				if errors.Is(err, script.ErrNotCompleted) {
					return fmt.Errorf("%w (use --force to finish anyway)", err)
				}
				return err
			}

			if asJSON {
				_, err := os.Stdout.Write(append(sum.JSON(), '\n'))
				return err
			}
			fmt.Println(report.RenderSummary(sum, report.Options{Width: 80, NoColor: noColor}))
			return nil
		},
	}

	cmd.Flags().StringVar(&target.text, "text", "", "Target text")
	cmd.Flags().StringVar(&target.file, "file", "", "Read the target text from a file")
	cmd.Flags().Int64Var(&target.promptID, "prompt", 0, "Use a catalog prompt by id as the target")
	cmd.MarkFlagsMutuallyExclusive("text", "file", "prompt")
	cmd.Flags().BoolVar(&force, "force", false, "Finish the session even if the script never completes the target")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw summary JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Print the summary without ANSI colours")

	return cmd
}
