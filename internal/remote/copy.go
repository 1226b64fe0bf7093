package remote

import (
	"errors"
	"fmt"
	"io"
)

const copyBufferSize = 32 * 1024

// Copy streams src into dst, notifying obs with the running byte count after
// every chunk. obs may be nil.
func Copy(dst io.Writer, src io.Reader, total int64, obs ProgressObserver) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			if w > 0 {
				written += int64(w)
			}
			if err != nil {
				return written, fmt.Errorf("write: %w", err)
			}
			if w != n {
				return written, fmt.Errorf("write: %w", io.ErrShortWrite)
			}
			if obs != nil {
				obs.OnProgress(written, total)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("read: %w", readErr)
		}
	}
}
