package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// openLocked opens path for read/write, creating it if necessary, and
// takes an advisory exclusive lock on it for the lifetime of the
// returned unlock func. This is a courtesy for callers that want to run
// concurrent fidctl invocations against the same file; the core library
// itself does no locking and assumes external serialization.
func openLocked(path string) (*os.File, func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("fidctl: open %q: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("fidctl: lock %q: %w", path, err)
	}

	unlock := func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}
	return f, unlock, nil
}
