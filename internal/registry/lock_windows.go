//go:build windows

package registry

import (
	"errors"
	"os"
)

var errWouldBlock = errors.New("lock held")

// tryLock approximates an exclusive lock with create-excl of the lock file.
func tryLock(lockPath string) (func(), error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, errWouldBlock
		}
		return nil, err
	}
	unlocked := false
	return func() {
		if unlocked {
			return
		}
		_ = f.Close()
		_ = os.Remove(lockPath)
		unlocked = true
	}, nil
}

func syncDir(string) error { return nil }
