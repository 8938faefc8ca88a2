// Package ingest loads property knowledge documents, chunks them, embeds the
// chunks and writes them to the vector index.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Document is one source file's worth of property knowledge.
type Document struct {
	PropertyID string
	SourcePath string
	Text       string
}

var (
	nonWordRun     = regexp.MustCompile(`\W+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// SanitizePropertyID normalizes a raw property identifier into a safe slug:
// non-word runs become single underscores, leading and trailing underscores
// are dropped, and the result is lowercased.
func SanitizePropertyID(raw string) string {
	s := nonWordRun.ReplaceAllString(strings.TrimSpace(raw), "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}

// LoadDir reads every matching text file below dir. Each direct subdirectory
// of dir is one property; files at the top level belong to the directory's
// base name. include and exclude are doublestar patterns matched against the
// path relative to dir; an empty include matches "**/*.txt".
func LoadDir(dir, include, exclude string) ([]Document, error) {
	if include == "" {
		include = "**/*.txt"
	}

	root := os.DirFS(dir)
	var docs []Document
	err := fs.WalkDir(root, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := doublestar.Match(include, rel)
		if err != nil {
			return fmt.Errorf("bad include pattern %q: %w", include, err)
		}
		if !ok {
			return nil
		}
		if exclude != "" {
			skip, err := doublestar.Match(exclude, rel)
			if err != nil {
				return fmt.Errorf("bad exclude pattern %q: %w", exclude, err)
			}
			if skip {
				return nil
			}
		}

		data, err := fs.ReadFile(root, rel)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		docs = append(docs, Document{
			PropertyID: propertyForPath(dir, rel),
			SourcePath: rel,
			Text:       string(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })
	return docs, nil
}

// propertyForPath derives the property id for a file: the first path segment
// if the file sits in a subdirectory, otherwise the data directory's name.
func propertyForPath(dir, rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.Index(rel, "/"); i > 0 {
		return SanitizePropertyID(rel[:i])
	}
	return SanitizePropertyID(filepath.Base(dir))
}
