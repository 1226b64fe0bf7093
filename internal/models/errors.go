package models

import "errors"

// Error kinds of a run. Every failure returned by the pipeline wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrConfig     = errors.New("invalid configuration")
	ErrConnection = errors.New("connection failed")
	ErrListing    = errors.New("listing failed")
	ErrTransfer   = errors.New("transfer failed")
	ErrFileSystem = errors.New("file system operation failed")
)

func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrListing):
		return "listing"
	case errors.Is(err, ErrTransfer):
		return "transfer"
	case errors.Is(err, ErrFileSystem):
		return "filesystem"
	default:
		return "unknown"
	}
}
