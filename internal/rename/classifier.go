// Package rename maps downloaded files to their canonical local names and
// directories.
package rename

import (
	"strings"

	"sftpfetch/internal/models"
)

// Classifier is the single place that decides a file's classification and
// everything derived from it.
type Classifier struct {
	MarkerA string
	PrefixA string
	PrefixB string
	DirA    string
	DirB    string
}

// Classify returns ClassificationA when name contains the type-A marker,
// ClassificationB otherwise. An empty marker classifies everything as B.
func (c Classifier) Classify(name string) models.Classification {
	if c.MarkerA != "" && strings.Contains(name, c.MarkerA) {
		return models.ClassificationA
	}
	return models.ClassificationB
}

func (c Classifier) Prefix(class models.Classification) string {
	if class == models.ClassificationA {
		return c.PrefixA
	}
	return c.PrefixB
}

func (c Classifier) Dir(class models.Classification) string {
	if class == models.ClassificationA {
		return c.DirA
	}
	return c.DirB
}

// DirFor is the destination directory of a remote file name.
func (c Classifier) DirFor(name string) string {
	return c.Dir(c.Classify(name))
}
