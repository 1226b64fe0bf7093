// Package remote defines the contract the fetch pipeline consumes from a
// file-transfer backend (SFTP, S3 or FTP).
package remote

import (
	"context"
	"io"
	"strings"

	"sftpfetch/internal/models"
)

// Session is one open connection to a remote endpoint. It is single-owner:
// listing and downloads run one at a time on the same session, and Close is
// called exactly once at the end of the run.
type Session interface {
	// ListDirectory returns the files directly under dir. Subdirectories are
	// not descended into.
	ListDirectory(ctx context.Context, dir string) ([]models.RemoteEntry, error)
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	Close() error
}

// ProgressObserver is notified synchronously after every chunk written by
// Copy. Implementations run on the transfer hot path and must not block.
type ProgressObserver interface {
	OnProgress(transferred, total int64)
}

// JoinPath joins a remote directory and an entry name with a single slash.
func JoinPath(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}
