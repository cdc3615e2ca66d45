// Package scdl drives the scdl command line tool to fetch audio from SoundCloud,
// either into memory or onto disk.
package scdl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nkaewam/soundcloudy/internal/storage"
)

const defaultDownloadTimeout = 30 * time.Minute

var (
	ErrScdlNotAvailable = errors.New("scdl not available")
	ErrDownloadTimeout  = errors.New("download timeout")
	ErrDownloadFailed   = errors.New("scdl download failed")
)

// Config holds the settings a Client is constructed with
type Config struct {
	// Name or path of the scdl executable
	Binary string

	// Optional credentials, empty means anonymous
	ClientID  string
	AuthToken string

	Timeout time.Duration
}

// Client runs downloads through scdl. It is safe for concurrent use: every
// in-memory download gets its own scratch directory.
type Client struct {
	binary    string
	clientID  string
	authToken string
	timeout   time.Duration

	workspace storage.Workspace
	runner    Runner
}

// NewClient creates a client that keeps in-memory downloads under workspace
func NewClient(cfg Config, workspace storage.Workspace) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "scdl"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDownloadTimeout
	}

	return &Client{
		binary:    cfg.Binary,
		clientID:  cfg.ClientID,
		authToken: cfg.AuthToken,
		timeout:   cfg.Timeout,
		workspace: workspace,
		runner:    execRunner{},
	}
}

// Download resolves args.URL and fetches it. In API mode a successful result is
// a *File, otherwise a *Saved. Errors are reported as *Failure; a nil result
// means scdl succeeded without producing any audio.
func (c *Client) Download(ctx context.Context, args Args) Result {
	args.URL = NormalizeURL(args.URL)

	kind, err := Classify(args.URL)
	if err != nil {
		slog.Warn("Rejected URL", "url", args.URL, "error", err)
		return failure(err)
	}
	slog.Debug("Detected SoundCloud URL type", "url", args.URL, "type", kind)

	if args.APIMode && !kind.SingleFile() {
		return unsupported(fmt.Sprintf("%s URLs cannot be downloaded directly, download them to disk instead", kind))
	}

	if err := c.checkScdlAvailable(ctx); err != nil {
		slog.Error("scdl is not available", "binary", c.binary, "error", err)
		return failure(err)
	}

	if args.APIMode {
		return c.downloadToMemory(ctx, args)
	}
	return c.downloadToPath(ctx, args)
}

func (c *Client) downloadToMemory(ctx context.Context, args Args) Result {
	workDir, err := c.workspace.CreateWorkDir()
	if err != nil {
		return failure(err)
	}
	defer func() {
		if err := c.workspace.Remove(workDir); err != nil {
			slog.Error("Failed to remove scratch directory", "dir", workDir, "error", err)
		}
	}()

	if err := c.run(ctx, args, workDir); err != nil {
		return failure(err)
	}

	files, err := c.workspace.ListAudio(workDir)
	if err != nil {
		slog.Error("Failed to list downloaded files", "dir", workDir, "error", err)
		return nil
	}

	switch len(files) {
	case 0:
		slog.Warn("scdl finished without producing audio", "url", args.URL)
		return nil
	case 1:
	default:
		return unsupported(fmt.Sprintf("URL resolved to %d files, download it to disk instead", len(files)))
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		return failure(fmt.Errorf("failed to read downloaded file: %w", err))
	}

	file := &File{
		Filename:    filepath.Base(files[0]),
		ContentType: contentTypeHint(data),
		Data:        data,
	}
	slog.Info("Downloaded track into memory", "url", args.URL, "filename", file.Filename, "size", len(data))
	return file
}

func (c *Client) downloadToPath(ctx context.Context, args Args) Result {
	outputDir := args.Path
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return failure(fmt.Errorf("failed to create output directory: %w", err))
	}

	before, err := storage.SnapshotAudio(outputDir)
	if err != nil {
		return failure(err)
	}

	if err := c.run(ctx, args, outputDir); err != nil {
		return failure(err)
	}

	after, err := storage.SnapshotAudio(outputDir)
	if err != nil {
		return failure(err)
	}

	// New files, plus existing ones scdl rewrote (--overwrite)
	var written []string
	for path, stamp := range after {
		if prev, ok := before[path]; !ok || prev.Changed(stamp) {
			written = append(written, path)
		}
	}
	sort.Strings(written)

	if len(written) == 0 {
		slog.Warn("scdl finished without producing audio", "url", args.URL, "path", outputDir)
		return nil
	}

	slog.Info("Downloaded to disk", "url", args.URL, "path", outputDir, "files", len(written))
	return &Saved{Files: written}
}

func (c *Client) run(ctx context.Context, args Args, outputDir string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	argv := args.commandArgs(outputDir, c.clientID, c.authToken)
	slog.Info("Executing scdl command", "url", args.URL, "dir", outputDir)
	slog.Debug("scdl arguments", "args", redact(argv))

	_, stderr, err := c.runner.Run(ctx, outputDir, c.binary, argv...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %v", ErrDownloadTimeout, c.timeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("scdl command failed", "url", args.URL, "error", err, "stderr", string(stderr))
		if msg := lastMessage(stderr); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return nil
}

// checkScdlAvailable verifies that scdl is installed and runnable
func (c *Client) checkScdlAvailable(ctx context.Context) error {
	if _, _, err := c.runner.Run(ctx, "", c.binary, "--version"); err != nil {
		return fmt.Errorf("%w: %v", ErrScdlNotAvailable, err)
	}
	return nil
}

// contentTypeHint sniffs the audio type from the file contents; non-audio
// detections are not trusted
func contentTypeHint(data []byte) string {
	mtype := mimetype.Detect(data).String()
	if i := strings.Index(mtype, ";"); i >= 0 {
		mtype = mtype[:i]
	}
	mtype = strings.TrimSpace(mtype)
	if !strings.HasPrefix(mtype, "audio/") {
		return ""
	}
	return mtype
}

// lastMessage returns the last non-empty line scdl wrote, without log level prefixes
func lastMessage(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		for _, prefix := range []string{"ERROR:", "Error:", "error:"} {
			line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
		if line != "" {
			return line
		}
	}
	return ""
}

func redact(argv []string) []string {
	out := make([]string, len(argv))
	copy(out, argv)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--auth-token" || out[i] == "--client-id" {
			out[i+1] = "***"
		}
	}
	return out
}
