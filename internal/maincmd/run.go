package maincmd

import (
	"fmt"
	"os"
)

// readSource reads a .spn source file from disk.
func readSource(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
