// Package collect walks the source directory and selects the files that go
// into an analysis request. The rest of the pipeline treats its output as
// read-only {path, content, size} records.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/argus-ci/argus/internal/analysis"
)

// Options controls file selection.
type Options struct {
	SourceDir    string
	Include      []string
	Exclude      []string
	MaxFileBytes int
}

// MatchesAny returns true if the path matches any of the given glob patterns.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
		// Directory prefix patterns like "vendor/**" match everything below
		// the directory.
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if path == dir || strings.HasPrefix(path, dir+"/") {
				return true
			}
		}
	}
	return false
}

// Files walks opts.SourceDir and returns the selected files, sorted by path.
// Oversized and binary files are skipped, not errors.
func Files(opts Options) ([]analysis.FileRecord, error) {
	root := opts.SourceDir
	if root == "" {
		root = "."
	}

	var records []analysis.FileRecord
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if rel != "." && len(opts.Exclude) > 0 && MatchesAny(rel, opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if len(opts.Include) > 0 && !MatchesAny(rel, opts.Include) {
			return nil
		}
		if len(opts.Exclude) > 0 && MatchesAny(rel, opts.Exclude) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if opts.MaxFileBytes > 0 && info.Size() > int64(opts.MaxFileBytes) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if isBinary(data) {
			return nil
		}

		records = append(records, analysis.FileRecord{
			Path:       rel,
			Content:    string(data),
			Size:       info.Size(),
			ChangeType: analysis.ChangeEdit,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// isBinary detects binary content: a NUL byte in the first 8KB, or content
// that is not valid UTF-8.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	for _, b := range probe {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}
