package storage

import "time"

// Workspace hands out scratch directories for downloads that are read back
// into memory and then discarded.
type Workspace interface {
	CreateWorkDir() (string, error)

	Remove(dir string) error

	ListAudio(dir string) ([]string, error)

	Sweep(olderThan time.Duration) (int, error)
}
