package prompts

import (
	"fmt"

	"github.com/Zuo-Peng/typetrace/internal/log"
	"github.com/Zuo-Peng/typetrace/internal/scan"
)

type Stats struct {
	Scanned int
	Added   int
	Skipped int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d added=%d skipped=%d errors=%d",
		s.Scanned, s.Added, s.Skipped, s.Errors)
}

// ImportDir adds every .txt file under root as a prompt. Texts already in
// the catalog are skipped.
func ImportDir(db *DB, root string) (Stats, error) {
	var stats Stats
	logger := log.WithComponent("prompts")

	files, err := scan.ScanPromptFiles(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	for _, fi := range files {
		text, err := scan.ReadPrompt(fi.Path)
		if err != nil {
			stats.Errors++
			logger.Warn().Err(err).Str(log.FieldPath, fi.Path).Msg("read prompt")
			continue
		}
		id, created, err := db.Add(text, fi.Path)
		if err != nil {
			stats.Errors++
			logger.Warn().Err(err).Str(log.FieldPath, fi.Path).Msg("add prompt")
			continue
		}
		if !created {
			stats.Skipped++
			continue
		}
		logger.Debug().Int64(log.FieldPromptID, id).Str(log.FieldPath, fi.Path).Msg("prompt imported")
		stats.Added++
	}
	return stats, nil
}
