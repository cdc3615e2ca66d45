package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Audio file extensions scdl can produce
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".aiff": true,
	".aif":  true,
}

// LocalWorkspace implements Workspace on the local filesystem
type LocalWorkspace struct {
	root string
}

// NewLocalWorkspace creates a workspace rooted at root, creating it if needed
func NewLocalWorkspace(root string) (*LocalWorkspace, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", root, err)
	}

	return &LocalWorkspace{root: root}, nil
}

// Root returns the directory all scratch directories live under
func (w *LocalWorkspace) Root() string {
	return w.root
}

// CreateWorkDir creates a fresh, uniquely named scratch directory
func (w *LocalWorkspace) CreateWorkDir() (string, error) {
	if err := os.MkdirAll(w.root, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", w.root, err)
	}

	dir, err := os.MkdirTemp(w.root, "dl-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}

// Remove deletes a scratch directory and everything in it
func (w *LocalWorkspace) Remove(dir string) error {
	if !w.contains(dir) {
		return fmt.Errorf("refusing to remove %s: outside workspace %s", dir, w.root)
	}
	return os.RemoveAll(dir)
}

// ListAudio returns the audio files found under dir, sorted by path
func (w *LocalWorkspace) ListAudio(dir string) ([]string, error) {
	return ListAudio(dir)
}

// Sweep removes scratch directories whose modification time is older than
// olderThan and returns how many were removed
func (w *LocalWorkspace) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	cutoffTime := time.Now().Add(-olderThan)

	cleaned := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			dir := filepath.Join(w.root, entry.Name())
			if err := os.RemoveAll(dir); err != nil {
				slog.Error("Failed to remove stale scratch directory", "dir", dir, "error", err)
				continue
			}
			slog.Debug("Removed stale scratch directory", "dir", dir, "age", time.Since(info.ModTime()))
			cleaned++
		}
	}

	return cleaned, nil
}

func (w *LocalWorkspace) contains(dir string) bool {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

// ListAudio walks dir and returns every audio file in it, sorted by path
func ListAudio(dir string) ([]string, error) {
	var results []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if IsAudioFile(path) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning directory %s: %w", dir, err)
	}

	sort.Strings(results)
	return results, nil
}

// IsAudioFile reports whether path has an audio file extension
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// AudioStamp identifies one version of an audio file on disk
type AudioStamp struct {
	Size    int64
	ModTime time.Time
}

// Changed reports whether other is a different version of the same file
func (s AudioStamp) Changed(other AudioStamp) bool {
	return s.Size != other.Size || !s.ModTime.Equal(other.ModTime)
}

// SnapshotAudio records the audio files directly in dir and in its immediate
// subdirectories (one folder per playlist), keyed by path
func SnapshotAudio(dir string) (map[string]AudioStamp, error) {
	snapshot := make(map[string]AudioStamp)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && filepath.Dir(path) != filepath.Clean(dir) {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsAudioFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		snapshot[path] = AudioStamp{Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning directory %s: %w", dir, err)
	}

	return snapshot, nil
}
