// Package selection decides which remote files a run downloads.
package selection

import (
	"strings"
	"time"

	"sftpfetch/internal/models"
)

// Select returns the entries whose names match criteria for target, in
// listing order.
func Select(entries []models.RemoteEntry, target time.Time, criteria models.SelectionCriteria) []models.RemoteEntry {
	prefix := target.Format(layout(criteria))

	var selected []models.RemoteEntry
	for _, entry := range entries {
		if Matches(entry.Name, prefix, criteria) {
			selected = append(selected, entry)
		}
	}
	return selected
}

// Matches reports whether name starts with datePrefix, contains one of the
// name patterns, ends with the required suffix and contains no exclusion.
func Matches(name, datePrefix string, criteria models.SelectionCriteria) bool {
	if !strings.HasPrefix(name, datePrefix) {
		return false
	}
	if !strings.HasSuffix(name, criteria.RequiredSuffix) {
		return false
	}
	if !containsAny(name, criteria.NamePatterns) {
		return false
	}
	return !containsAny(name, criteria.ExclusionSubstrings)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func layout(criteria models.SelectionCriteria) string {
	if criteria.DatePrefixFormat == "" {
		return DefaultDateLayout
	}
	return criteria.DatePrefixFormat
}
