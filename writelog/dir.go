package writelog

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func readDirSuffixed(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
