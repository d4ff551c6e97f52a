package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/typetrace/internal/prompts"
)

const (
	pColorReset   = "\033[0m"
	pColorBoldRed = "\033[1;31m"
	pColorDim     = "\033[2m"
)

const sourceUser = "user"

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", pColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", pColorReset)
	return snippet
}

func openPrompts() (*prompts.DB, error) {
	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, err
	}
	db, err := prompts.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func promptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage the practice prompt catalog",
	}
	cmd.AddCommand(promptsListCmd())
	cmd.AddCommand(promptsAddCmd())
	cmd.AddCommand(promptsSearchCmd())
	cmd.AddCommand(promptsRmCmd())
	cmd.AddCommand(promptsImportCmd())
	return cmd
}

func promptsListCmd() *cobra.Command {
	var limit, width int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog prompts (id, source, text)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPrompts()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.List(limit)
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Printf("%d\t%s%s%s\t%s\n", p.ID, pColorDim, p.Source, pColorReset,
					runewidth.Truncate(p.Text, width, "..."))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Max prompts")
	cmd.Flags().IntVar(&width, "width", 72, "Truncate text to this many columns")

	return cmd
}

func promptsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a prompt to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPrompts()
			if err != nil {
				return err
			}
			defer db.Close()

			text := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
			id, created, err := db.Add(text, sourceUser)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(os.Stderr, "Already in catalog as %d.\n", id)
			}
			fmt.Println(id)
			return nil
		},
	}
}

func promptsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over catalog prompts",
		Long: `Search the catalog with FTS5. Output is TSV: id, source, snippet.
Every word must match; the last word matches as a prefix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPrompts()
			if err != nil {
				return err
			}
			defer db.Close()

			hits, err := db.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}
			for _, h := range hits {
				snippet := strings.ReplaceAll(h.Snippet, "\t", " ")
				fmt.Printf("%d\t%s%s%s\t%s\n", h.ID, pColorDim, h.Source, pColorReset, colorizeSnippet(snippet))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max results")

	return cmd
}

func promptsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove prompts from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid prompt id %q", a)
				}
				ids = append(ids, id)
			}

			db, err := openPrompts()
			if err != nil {
				return err
			}
			defer db.Close()

			for _, id := range ids {
				if err := db.Remove(id); err != nil {
					return fmt.Errorf("remove %d: %w", id, err)
				}
			}
			return nil
		},
	}
}

func promptsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Add every .txt file under a directory as a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPrompts()
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", args[0])
			stats, err := prompts.ImportDir(db, args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
