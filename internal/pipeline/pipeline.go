// Package pipeline wires date resolution, selection, download and rename
// into one run over a single remote session.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
	"sftpfetch/internal/rename"
	"sftpfetch/internal/selection"
	"sftpfetch/internal/transfer"
	"sftpfetch/pkg/utils"
)

// Options is the immutable input of a run.
type Options struct {
	RunID       string
	Transport   string
	RemoteDir   string
	Criteria    models.SelectionCriteria
	Classifier  rename.Classifier
	// Today is the run's calendar reference; it defaults to Now.
	Today       func() time.Time
	Now         func() time.Time
	NewRenderer transfer.RendererFactory
	Logger      *slog.Logger
}

type Pipeline struct {
	opts       Options
	finder     *selection.Finder
	downloader *transfer.Downloader
	renamer    *rename.Renamer
	logger     *slog.Logger
}

// New builds a pipeline on session. The caller owns the session and closes
// it after the run.
func New(session remote.Session, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Today == nil {
		opts.Today = opts.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		opts:       opts,
		finder:     selection.NewFinder(session, opts.Criteria, opts.Today, opts.Logger),
		downloader: transfer.NewDownloader(session, opts.NewRenderer, opts.Now, opts.Logger),
		renamer:    rename.NewRenamer(opts.Classifier, opts.Logger),
		logger:     opts.Logger,
	}
}

func (p *Pipeline) FindTargetFiles(ctx context.Context, remoteDir string) (*models.Selection, error) {
	return p.finder.FindTargetFiles(ctx, remoteDir)
}

// DownloadAndRename downloads files one at a time, in name order, into
// their classification directories and then renames the batch. A failed
// download aborts the batch before any rename; a failed rename returns the
// files renamed so far.
func (p *Pipeline) DownloadAndRename(ctx context.Context, files []models.RemoteEntry) ([]models.RenamedFile, error) {
	ordered := make([]models.RemoteEntry, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	p.checkFreeSpace(ordered)

	p.logger.Info("starting downloads", "count", len(ordered))
	downloaded := make([]string, 0, len(ordered))
	sizes := make([]int64, 0, len(ordered))
	for _, file := range ordered {
		dir := p.opts.Classifier.DirFor(file.Name)
		result, err := p.downloader.Download(ctx, file.Path, dir, file.Name, file.Size)
		if err != nil {
			return nil, err
		}
		downloaded = append(downloaded, result.LocalPath)
		sizes = append(sizes, result.Bytes)
	}

	p.logger.Info("renaming files", "count", len(downloaded))
	renamed, err := p.renamer.RenameAll(downloaded)
	// RenameAll keeps input order, so renamed[i] is downloaded[i].
	for i := range renamed {
		renamed[i].Size = sizes[i]
	}
	return renamed, err
}

// Run finds and fetches the files of the resolved target date. An empty
// selection produces a result with no files.
func (p *Pipeline) Run(ctx context.Context) (*models.FetchResult, error) {
	start := p.opts.Now()

	sel, err := p.FindTargetFiles(ctx, p.opts.RemoteDir)
	if err != nil {
		return nil, err
	}

	result := &models.FetchResult{
		RunID:         p.opts.RunID,
		Transport:     p.opts.Transport,
		RemoteDir:     p.opts.RemoteDir,
		TargetDate:    sel.EffectiveDate,
		FellBack:      sel.FellBack,
		Files:         []models.RenamedFile{},
		OperationTime: utils.FormatTime(start),
	}

	if len(sel.Files) == 0 {
		p.logger.Info("no matching files found, nothing to do", "date", sel.EffectiveDate)
		result.Message = "nothing to do"
		result.TotalSizeHuman = utils.FormatBytes(0)
		result.Duration = p.opts.Now().Sub(start).String()
		return result, nil
	}

	renamed, err := p.DownloadAndRename(ctx, sel.Files)
	if err != nil {
		if len(renamed) > 0 {
			p.logger.Warn("batch aborted after partial rename", "renamed", len(renamed), "total", len(sel.Files))
		}
		return nil, err
	}

	result.Files = renamed
	result.TotalFiles = len(renamed)
	for _, file := range renamed {
		result.TotalSizeBytes += file.Size
	}
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	result.Duration = p.opts.Now().Sub(start).String()
	return result, nil
}

func (p *Pipeline) checkFreeSpace(files []models.RemoteEntry) {
	need := make(map[string]int64)
	for _, file := range files {
		need[p.opts.Classifier.DirFor(file.Name)] += file.Size
	}
	for dir, bytes := range need {
		free, err := transfer.CheckFreeSpace(dir, bytes)
		switch {
		case errors.Is(err, transfer.ErrInsufficientSpace):
			p.logger.Warn("local volume may run out of space", "dir", dir,
				"need", utils.FormatBytes(bytes), "free", utils.FormatBytes(int64(free)))
		case err != nil:
			p.logger.Debug("free space check skipped", "dir", dir, "error", err)
		}
	}
}
