package storage

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Storage wraps an annotated corpus file. Each non-blank line that does not
// start with '#' holds tab-separated sentence, start, end and an optional
// label.
type Storage struct {
	Path string
}

// NewStorage creates a Storage for the given corpus file.
func NewStorage(path string) *Storage {
	return &Storage{Path: path}
}

// IterOptions controls annotation iteration behavior.
type IterOptions struct {
	DropDuplicates bool
	DropUnlabeled  bool
	Verbose        bool
}

// DefaultIterOptions returns the default options for iterating annotations.
func DefaultIterOptions() IterOptions {
	return IterOptions{
		DropDuplicates: true,
		DropUnlabeled:  false,
	}
}

// IterAnnotations reads every annotation of the corpus. Malformed lines are
// logged and skipped.
func (s *Storage) IterAnnotations(opts IterOptions) ([]Annotation, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open corpus")
	}
	defer func() { _ = f.Close() }()
	return ReadAnnotations(f, opts)
}

// ReadAnnotations parses a corpus from r.
func ReadAnnotations(r io.Reader, opts IterOptions) ([]Annotation, error) {
	seen := make(map[string]bool)
	var annotations []Annotation
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ann, err := parseLine(line)
		if err != nil {
			slog.Warn("Skipping corpus line", "line", lineNo, "error", err)
			continue
		}
		ann.Line = lineNo
		if opts.DropUnlabeled && ann.Label == "" {
			continue
		}
		if opts.DropDuplicates {
			hash := fmt.Sprintf("%x", md5.Sum([]byte(line)))
			if seen[hash] {
				continue
			}
			seen[hash] = true
		}
		annotations = append(annotations, ann)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan corpus")
	}
	if opts.Verbose {
		slog.Info("Corpus loaded", "annotations", len(annotations), "lines", lineNo)
	}
	return annotations, nil
}

func parseLine(line string) (Annotation, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 || len(parts) > 4 {
		return Annotation{}, errors.Newf("want 3 or 4 tab-separated fields, got %d", len(parts))
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Annotation{}, errors.Wrap(err, "start")
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Annotation{}, errors.Wrap(err, "end")
	}
	ann := Annotation{Sentence: strings.TrimSpace(parts[0]), Start: start, End: end}
	if len(parts) == 4 {
		ann.Label = strings.TrimSpace(parts[3])
	}
	return ann, nil
}
