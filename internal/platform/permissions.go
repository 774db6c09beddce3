package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// PermissionError maps a refused file or store operation onto
// mirror.ErrPermissionDenied while keeping the original error in the chain.
// Other errors are returned unchanged.
func PermissionError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrPermission) && !errors.Is(err, mirror.ErrPermissionDenied) {
		return fmt.Errorf("%s: %w: %w", op, mirror.ErrPermissionDenied, err)
	}
	return err
}
