package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScanPath returns the import files at path. A file is returned as is; a
// directory is walked for *.jsonl and *.ndjson files in lexical order.
func ScanPath(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if !info.IsDir() {
		return []DiscoveredFile{discovered(path)}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".jsonl", ".ndjson":
			files = append(files, discovered(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return files, nil
}

func discovered(path string) DiscoveredFile {
	return DiscoveredFile{Path: path, Project: decodeProjectName(filepath.Base(path))}
}

// decodeProjectName turns a file name into a project reference:
//
//	"casa-moderna-laureles.jsonl" -> "casa moderna laureles"
//	"2.jsonl"                     -> "2"
func decodeProjectName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}

// CountProjects returns the number of distinct default projects in files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[strings.ToLower(f.Project)] = struct{}{}
	}
	return len(seen)
}
