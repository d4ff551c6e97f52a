package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// configTemplate seeds a config file that does not exist yet.
const configTemplate = `# typetrace configuration
# service_url = "http://localhost:8000"
# token = ""
# db_path = "~/.config/typetrace/typetrace.db"
# request_timeout = "10s"
# log_level = "info"
# log_file = "~/.config/typetrace/typetrace.log"
# extra key labels counted as corrections; keys that delete text always are
# correction_keys = ["ctrl+k"]
`

// Editor returns $VISUAL, then $EDITOR, then vi.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}
	return "vi"
}

// EnsureConfig creates path with a commented template when it is missing.
func EnsureConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// OpenConfig opens the config file in the user's editor, creating it first
// if needed.
func OpenConfig(path string) error {
	if _, err := EnsureConfig(path); err != nil {
		return err
	}
	return OpenFile(path, 1)
}

// OpenFile opens filePath at lineNum in the user's editor and waits for it.
func OpenFile(filePath string, lineNum int) error {
	cmd := EditorCommand(Editor(), filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// EditorCommand builds the invocation for editors that understand a line
// argument. Extra words in editor (e.g. "code -w") are kept as arguments.
func EditorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	name, args := parts[0], parts[1:]
	base := filepath.Base(name)

	switch {
	case strings.Contains(base, "vim") || base == "vi" || base == "nano":
		args = append(args, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(base, "code"):
		args = append(args, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(base, "less"):
		args = append(args, "+"+strconv.Itoa(lineNum), filePath)
	default:
		args = append(args, filePath)
	}
	return exec.Command(name, args...)
}
