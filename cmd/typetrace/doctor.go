package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/typetrace/internal/config"
	"github.com/Zuo-Peng/typetrace/internal/prompts"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, prompt DB, FTS5, and the session service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			if cfg.Path != "" {
				fmt.Printf("  File: %s (OK)\n", cfg.Path)
			} else {
				fmt.Println("  File: none (defaults and environment)")
			}
			fmt.Printf("  Service: %s\n", cfg.ServiceURL)
			fmt.Printf("  Timeout: %s\n", cfg.RequestTimeout)
			checkLogFile(cfg)

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			db, err := prompts.OpenDB(cfg.DBPath)
			if err != nil {
				fmt.Printf("  Status: ERROR (%v)\n", err)
			} else {
				defer db.Close()
				checkCatalog(db)
				if info, err := os.Stat(cfg.DBPath); err == nil {
					fmt.Printf("  Size: %.1f KB\n", float64(info.Size())/1024)
				}
			}

			fmt.Println("\n=== Session service ===")
			client := newClient(cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("  %s: UNREACHABLE (%v)\n", client.BaseURL(), err)
			} else {
				fmt.Printf("  %s: OK\n", client.BaseURL())
			}
			if cfg.Token == "" {
				fmt.Println("  Token: not set")
			} else {
				fmt.Println("  Token: set")
			}
			return nil
		},
	}
}

func checkCatalog(db *prompts.DB) {
	count, err := db.Count()
	if err != nil {
		fmt.Printf("  Prompts: ERROR (%v)\n", err)
		return
	}
	fmt.Printf("  Prompts: %d\n", count)

	fmt.Println("\n=== FTS5 ===")
	var ftsCount int
	if err := db.Raw().QueryRow("SELECT COUNT(*) FROM prompts_fts").Scan(&ftsCount); err != nil {
		fmt.Printf("  FTS5 error: %v\n", err)
		return
	}
	fmt.Printf("  FTS5 entries: %d\n", ftsCount)
	if ftsCount == count {
		fmt.Println("  Status: OK (synced)")
	} else {
		fmt.Printf("  Status: MISMATCH (prompts=%d, fts=%d)\n", count, ftsCount)
	}
}

func checkLogFile(cfg *config.Config) {
	if info, err := os.Stat(cfg.LogFile); err != nil {
		fmt.Printf("  Log: %s (not created yet)\n", cfg.LogFile)
	} else {
		fmt.Printf("  Log: %s (%.1f KB)\n", cfg.LogFile, float64(info.Size())/1024)
	}
}
