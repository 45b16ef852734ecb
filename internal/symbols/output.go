package symbols

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// ResolveOutputPath turns an output location into the path of a symbols file, creating
// directories as needed and touching the file:
//   - output empty: defaultName inside defaultDir
//   - output is an existing file: it is overwritten
//   - output is an existing directory: defaultName inside it
//   - output does not exist and has no extension: created as a directory holding defaultName
//   - output does not exist and has an extension: created as a file, parents included
func ResolveOutputPath(output, defaultDir, defaultName string) (string, error) {
	var path string
	switch {
	case output == "":
		if err := os.MkdirAll(defaultDir, 0o755); err != nil {
			return "", fmt.Errorf("create symbols dir: %w", err)
		}
		path = filepath.Join(defaultDir, defaultName)
	default:
		info, err := os.Stat(output)
		switch {
		case err == nil && !info.IsDir():
			path = output
		case err == nil:
			path = filepath.Join(output, defaultName)
		case !os.IsNotExist(err):
			return "", fmt.Errorf("stat %s: %w", output, err)
		case filepath.Ext(output) == "":
			if err := os.MkdirAll(output, 0o755); err != nil {
				return "", fmt.Errorf("create symbols dir: %w", err)
			}
			path = filepath.Join(output, defaultName)
		default:
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return "", fmt.Errorf("create symbols dir: %w", err)
			}
			path = output
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("touch %s: %w", path, err)
	}
	return path, f.Close()
}

// WriteSymbols writes one symbol per line, replacing the file.
func WriteSymbols(path string, list []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, s := range list {
		if _, err := w.WriteString(s + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
