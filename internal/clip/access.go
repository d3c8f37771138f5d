package clip

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"

	"highlighter/internal/services"
)

// AccessFunc performs a read-access probe on path. A nil error means readable.
type AccessFunc func(path string) error

func readAccess(path string) error {
	return unix.Access(path, unix.R_OK)
}

// classifyAccess folds absence and permission denial into deleted=true.
// Any other failure (I/O error, symlink loop, name too long) is returned as
// an ErrAccessCheck hard failure.
func classifyAccess(path string, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	switch {
	case errors.Is(err, unix.ENOENT),
		errors.Is(err, unix.ENOTDIR),
		errors.Is(err, unix.EACCES),
		errors.Is(err, unix.EPERM),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return true, nil
	}
	return false, services.Wrap(services.ErrAccessCheck, "clip", "verify", path, err)
}
