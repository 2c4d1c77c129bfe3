package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docqa/internal/retrieval"
)

var supportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".text":     true,
}

func fileCanProcess(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// readDocuments loads files in the given order. Directories are walked and
// contribute their supported files in lexical order.
func readDocuments(paths []string) ([]retrieval.Document, error) {
	var docs []retrieval.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !info.IsDir() {
			doc, err := readDocument(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			continue
		}

		var files []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && fileCanProcess(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
		sort.Strings(files)
		for _, f := range files {
			doc, err := readDocument(f)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func readDocument(path string) (retrieval.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return retrieval.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return retrieval.Document{Data: data, Filename: filepath.Base(path)}, nil
}
