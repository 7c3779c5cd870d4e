package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/ansi"
)

// WriteFile writes a rendered chart to path as plain text, creating parent
// directories. Terminal styling is stripped.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	plain := ansi.Strip(content)
	if len(plain) == 0 || plain[len(plain)-1] != '\n' {
		plain += "\n"
	}
	if err := os.WriteFile(path, []byte(plain), 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
