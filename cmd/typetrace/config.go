package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/typetrace/internal/config"
	"github.com/Zuo-Peng/typetrace/internal/open"
)

func configCmd() *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or edit the config file",
		Long: `Print the configuration after defaults, config file and TYPETRACE_*
environment variables are applied. The token is masked.

With --edit, open the config file in $VISUAL or $EDITOR, creating it from a
commented template first if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if edit {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path := config.DefaultPath(home)
				created, err := open.EnsureConfig(path)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(os.Stderr, "Created %s\n", path)
				}
				return open.OpenConfig(path)
			}

			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			if cfg.Path != "" {
				fmt.Fprintf(os.Stderr, "# from %s\n", cfg.Path)
			}
			return cfg.Write(os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&edit, "edit", false, "Open the config file in $EDITOR")

	return cmd
}
