// Package transfer downloads single remote files to local disk.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sftpfetch/internal/models"
	"sftpfetch/internal/progress"
	"sftpfetch/internal/remote"
)

// RendererFactory returns the renderer for one file's progress.
type RendererFactory func(fileName string, total int64) progress.Renderer

type Result struct {
	LocalPath   string
	Bytes       int64
	Duration    time.Duration
	BytesPerSec float64
}

type Downloader struct {
	session     remote.Session
	newRenderer RendererFactory
	now         func() time.Time
	logger      *slog.Logger
}

func NewDownloader(session remote.Session, newRenderer RendererFactory, now func() time.Time, logger *slog.Logger) *Downloader {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		session:     session,
		newRenderer: newRenderer,
		now:         now,
		logger:      logger,
	}
}

// Download streams remotePath into localDir/fileName, overwriting any
// existing file. A failed transfer leaves the partial file in place.
func (d *Downloader) Download(ctx context.Context, remotePath, localDir, fileName string, total int64) (*Result, error) {
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %w", models.ErrFileSystem, localDir, err)
	}
	localPath := filepath.Join(localDir, fileName)

	d.logger.Info("starting download", "file", fileName, "destination", localDir)

	src, err := d.session.OpenRead(ctx, remotePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", models.ErrTransfer, remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", models.ErrFileSystem, localPath, err)
	}

	opts := []progress.Option{progress.WithClock(d.now)}
	if d.newRenderer != nil {
		opts = append(opts, progress.WithRenderer(d.newRenderer(fileName, total)))
	}
	tracker := progress.New(fileName, total, opts...)

	n, copyErr := remote.Copy(dst, src, total, tracker)
	closeErr := dst.Close()
	if copyErr != nil {
		d.logger.Error("download failed", "file", fileName, "bytes", n, "error", copyErr)
		return nil, fmt.Errorf("%w: %s: %w", models.ErrTransfer, remotePath, copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: close %s: %w", models.ErrTransfer, localPath, closeErr)
	}

	// A file that is smaller than announced never reaches 99.9%; draw the
	// final state anyway so the terminal line is terminated.
	if !tracker.Complete() {
		tracker.Update(total)
	}

	elapsed := d.now().Sub(tracker.Start())
	result := &Result{
		LocalPath: localPath,
		Bytes:     n,
		Duration:  elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		result.BytesPerSec = float64(total) / secs
	}

	d.logger.Info("download complete",
		"file", fileName,
		"duration", fmt.Sprintf("%.1fs", elapsed.Seconds()),
		"avg_speed", fmt.Sprintf("%.0f KB/s", result.BytesPerSec/1024))
	return result, nil
}
