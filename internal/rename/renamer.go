package rename

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"sftpfetch/internal/models"
)

const dateTokenLength = len("2006-01-02")

type counter map[string]int

// next increments and returns the count for stamp, starting at 1.
func (c counter) next(stamp string) int {
	c[stamp]++
	return c[stamp]
}

type Renamer struct {
	classifier Classifier
	logger     *slog.Logger
	move       func(oldPath, newPath string) error
}

func NewRenamer(classifier Classifier, logger *slog.Logger) *Renamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renamer{
		classifier: classifier,
		logger:     logger,
		move:       Move,
	}
}

// CompactDateStamp takes the leading YYYY-MM-DD token of name and strips
// the hyphens.
func CompactDateStamp(name string) string {
	token := name
	if len(token) > dateTokenLength {
		token = token[:dateTokenLength]
	}
	return strings.ReplaceAll(token, "-", "")
}

// FileName composes the canonical name for the n-th file of a prefix and
// date stamp.
func FileName(prefix, stamp string, n int) string {
	if n <= 1 {
		return fmt.Sprintf("%s-%s.csv", prefix, stamp)
	}
	return fmt.Sprintf("%s-%s_%d.csv", prefix, stamp, n)
}

// RenameAll moves every downloaded file to its canonical path, in input
// order. Callers pass paths sorted by original remote name. On failure the
// files already moved are returned together with the error and the rest
// are not attempted.
func (r *Renamer) RenameAll(localPaths []string) ([]models.RenamedFile, error) {
	counters := map[models.Classification]counter{
		models.ClassificationA: {},
		models.ClassificationB: {},
	}

	renamed := make([]models.RenamedFile, 0, len(localPaths))
	for _, oldPath := range localPaths {
		name := filepath.Base(oldPath)
		class := r.classifier.Classify(name)
		stamp := CompactDateStamp(name)
		n := counters[class].next(stamp)

		dir := r.classifier.Dir(class)
		newName := FileName(r.classifier.Prefix(class), stamp, n)
		newPath := filepath.Join(dir, newName)

		if err := os.MkdirAll(dir, 0755); err != nil {
			return renamed, fmt.Errorf("%w: create directory %s: %w", models.ErrFileSystem, dir, err)
		}

		var size int64
		if info, err := os.Stat(oldPath); err == nil {
			size = info.Size()
		} else {
			r.logger.Debug("size of downloaded file unknown", "file", oldPath, "error", err)
		}

		if err := r.move(oldPath, newPath); err != nil {
			return renamed, fmt.Errorf("%w: rename %s to %s: %w", models.ErrFileSystem, oldPath, newPath, err)
		}

		if filepath.Clean(filepath.Dir(oldPath)) == filepath.Clean(dir) {
			r.logger.Info("file renamed", "from", name, "to", newName)
		} else {
			r.logger.Info("file moved and renamed", "from", name, "to", newName, "dir", dir)
		}

		renamed = append(renamed, models.RenamedFile{
			FinalPath:      newPath,
			OriginalName:   name,
			Classification: class,
			Size:           size,
		})
	}
	return renamed, nil
}

// Move renames oldPath to newPath, copying across volumes when a plain
// rename is not possible.
func Move(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(oldPath, newPath); err != nil {
		return err
	}
	return os.Remove(oldPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
