package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/k0kubun/go-ansi"
	"github.com/nkaewam/soundcloudy/config"
	"github.com/nkaewam/soundcloudy/internal/scdl"
	"github.com/nkaewam/soundcloudy/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type downloadOptions struct {
	configPath       string
	path             string
	clientID         string
	authToken        string
	timeout          time.Duration
	onlyMP3          bool
	originalArt      bool
	noPlaylistFolder bool
	overwrite        bool
	debug            bool
}

func newDownloadCmd() *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a track, playlist or user listing to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "./config/config.yaml", "Path to the configuration file (defaults are used when missing)")
	cmd.Flags().StringVarP(&opts.path, "path", "p", ".", "Directory to download into")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "SoundCloud client id")
	cmd.Flags().StringVar(&opts.authToken, "auth-token", "", "SoundCloud auth token")
	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Give up after this long (eg. 10m, 1h)")
	cmd.Flags().BoolVar(&opts.onlyMP3, "onlymp3", false, "Download only mp3 files")
	cmd.Flags().BoolVar(&opts.originalArt, "original-art", false, "Download original cover art")
	cmd.Flags().BoolVar(&opts.noPlaylistFolder, "no-playlist-folder", false, "Do not create a folder per playlist")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func runDownload(ctx context.Context, url string, opts *downloadOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	timeout := cfg.Downloader.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	workspace, err := storage.NewLocalWorkspace(cfg.Downloader.TempDir)
	if err != nil {
		return err
	}

	client := scdl.NewClient(scdl.Config{
		Binary:    cfg.Downloader.Binary,
		ClientID:  cfg.Downloader.ClientID,
		AuthToken: cfg.Downloader.AuthToken,
		Timeout:   timeout,
	}, workspace)

	args := scdl.Args{
		URL:                url,
		ClientID:           opts.clientID,
		AuthToken:          opts.authToken,
		NameFormat:         cfg.Downloader.NameFormat,
		PlaylistNameFormat: cfg.Downloader.PlaylistNameFormat,
		Debug:              opts.debug,
		OnlyMP3:            opts.onlyMP3,
		OriginalArt:        opts.originalArt,
		NoPlaylistFolder:   opts.noPlaylistFolder,
		Overwrite:          opts.overwrite,
		Path:               opts.path,
	}

	result := withSpinner("Downloading "+url, func() scdl.Result {
		return client.Download(ctx, args)
	})

	switch r := result.(type) {
	case *scdl.Saved:
		fmt.Println(successStyle.Render(fmt.Sprintf("Downloaded %d file(s)", len(r.Files))))
		for _, f := range r.Files {
			fmt.Println(fileStyle.Render("  " + f))
		}
		return nil
	case *scdl.Failure:
		return errors.New(r.Message)
	default:
		return errors.New("scdl finished without downloading any audio")
	}
}

// withSpinner shows an indeterminate spinner on stdout while fn runs
func withSpinner(description string, fn func() scdl.Result) scdl.Result {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	result := fn()

	close(done)
	wg.Wait()
	_ = bar.Finish()
	return result
}
