package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxPromptSize caps how large a practice text file may be.
const MaxPromptSize = 64 * 1024

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanPromptFiles walks root for .txt files. Hidden files and directories
// are skipped, as are files larger than MaxPromptSize.
func ScanPromptFiles(root string) ([]FileInfo, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		hidden := path != root && strings.HasPrefix(info.Name(), ".")
		if info.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		if info.Size() > MaxPromptSize {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}

// ReadPrompt loads a practice text, trimming surrounding whitespace and
// joining hard-wrapped lines with single spaces.
func ReadPrompt(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.Join(strings.Fields(string(b)), " ")
	if text == "" {
		return "", fmt.Errorf("%s: empty prompt", path)
	}
	return text, nil
}
