package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
	"sftpfetch/pkg/utils"
)

// Finder lists a remote directory and applies the date policy with a single
// one-day-back fallback.
type Finder struct {
	session  remote.Session
	criteria models.SelectionCriteria
	now      func() time.Time
	logger   *slog.Logger
}

func NewFinder(session remote.Session, criteria models.SelectionCriteria, now func() time.Time, logger *slog.Logger) *Finder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		session:  session,
		criteria: criteria,
		now:      now,
		logger:   logger,
	}
}

// FindTargetFiles returns the files to download, sorted by name. An empty
// selection after the fallback is a normal result, not an error.
func (f *Finder) FindTargetFiles(ctx context.Context, remoteDir string) (*models.Selection, error) {
	today := f.now()
	target := ResolveTargetDate(today)
	f.logger.Info("resolved target date", "date", target.Format(DefaultDateLayout), "reason", reason(today))

	f.logger.Info("listing remote directory", "dir", remoteDir)
	entries, err := f.session.ListDirectory(ctx, remoteDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", remoteDir, err)
	}
	f.logger.Debug("remote directory listed", "dir", remoteDir, "entries", len(entries))

	selection := &models.Selection{
		RequestedDate: target.Format(DefaultDateLayout),
		EffectiveDate: target.Format(DefaultDateLayout),
	}

	files := Select(entries, target, f.criteria)
	if len(files) == 0 {
		previous := target.AddDate(0, 0, -1)
		f.logger.Info("no files for target date, trying previous day",
			"target", selection.RequestedDate, "previous", previous.Format(DefaultDateLayout))
		files = Select(entries, previous, f.criteria)
		selection.EffectiveDate = previous.Format(DefaultDateLayout)
		selection.FellBack = true
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	for _, file := range files {
		f.logger.Info("file found", "name", file.Name, "size", utils.FormatMegabytes(file.Size))
	}

	selection.Files = files
	if selection.Files == nil {
		selection.Files = []models.RemoteEntry{}
	}
	return selection, nil
}
