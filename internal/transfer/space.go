package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

var ErrInsufficientSpace = errors.New("insufficient free space")

// CheckFreeSpace reports whether the volume holding dir has at least need
// bytes free. dir does not have to exist yet; the nearest existing parent
// is probed.
func CheckFreeSpace(dir string, need int64) (uint64, error) {
	probe, err := existingParent(dir)
	if err != nil {
		return 0, err
	}

	usage, err := disk.Usage(probe)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", probe, err)
	}

	if need > 0 && usage.Free < uint64(need) {
		return usage.Free, fmt.Errorf("%w: %s has %d bytes free, need %d", ErrInsufficientSpace, probe, usage.Free, need)
	}
	return usage.Free, nil
}

func existingParent(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs, nil
		}
		abs = parent
	}
}
