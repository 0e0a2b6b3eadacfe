package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phuslu/log"

	"coursetutor/internal/domain"
)

// ErrUnsupportedFormat marks a file whose extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported format")

// SkippedFile records a file that could not be ingested and why.
type SkippedFile struct {
	Path   string
	Reason string
}

// Report summarizes a directory load.
type Report struct {
	Loaded  int
	Skipped []SkippedFile
}

// Directory loads supported course material files from a directory tree,
// descending into subdirectories (materials are often organized per week).
// Unreadable or unrecognized files are skipped with a warning, never fatal.
type Directory struct {
	dir string
}

// NewDirectory creates a loader for the given materials directory.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Load walks the directory tree, reads every supported file and returns the
// extracted documents plus a report of what was skipped.
func (l *Directory) Load() ([]domain.Document, *Report, error) {
	report := &Report{}
	var documents []domain.Document
	walkErr := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// a missing or unreadable root is fatal, anything below is not
			if path == l.dir {
				return err
			}
			log.Warn().Str("file", path).Err(err).Msg("skipping unreadable entry")
			report.Skipped = append(report.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		text, err := extractText(path)
		if err != nil {
			log.Warn().Str("file", path).Err(err).Msg("skipping file")
			report.Skipped = append(report.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			return nil
		}
		cleaned := cleanText(text)
		if cleaned == "" {
			log.Warn().Str("file", path).Msg("no content extracted, skipping")
			report.Skipped = append(report.Skipped, SkippedFile{Path: path, Reason: "no content extracted"})
			return nil
		}
		documents = append(documents, domain.Document{
			ID:      hashPath(path),
			Path:    path,
			Format:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
			Content: cleaned,
		})
		report.Loaded++
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("read materials directory %s: %w", l.dir, walkErr)
	}
	return documents, report, nil
}

func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return markdownToText(data)
	case ".pdf":
		return pdfToText(path)
	case ".docx":
		return docxToText(path)
	default:
		return "", ErrUnsupportedFormat
	}
}

// cleanText collapses all whitespace runs to single spaces, matching the
// normalization applied before chunking so offsets stay reproducible.
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func hashPath(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}
