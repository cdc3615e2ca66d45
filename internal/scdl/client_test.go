package scdl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nkaewam/soundcloudy/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A minimal MP3 body: ID3v2 header followed by padding
var mp3Bytes = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)

// fakeRunner stands in for the scdl executable
type fakeRunner struct {
	versionErr error
	run        func(ctx context.Context, dir string, args []string) (string, error)
	calls      [][]string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	if len(args) == 1 && args[0] == "--version" {
		return []byte("2.12.0\n"), nil, f.versionErr
	}

	f.calls = append(f.calls, args)
	if f.run == nil {
		return nil, nil, nil
	}
	stderr, err := f.run(ctx, dir, args)
	return nil, []byte(stderr), err
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, mp3Bytes, 0644))
	}
}

func newTestClient(t *testing.T, runner *fakeRunner) (*Client, *storage.LocalWorkspace) {
	t.Helper()
	ws, err := storage.NewLocalWorkspace(filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)

	client := NewClient(Config{Timeout: time.Minute}, ws)
	client.runner = runner
	return client, ws
}

func assertWorkspaceEmpty(t *testing.T, ws *storage.LocalWorkspace) {
	t.Helper()
	entries, err := os.ReadDir(ws.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directories should be removed")
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, nil)

	assert.Equal(t, "scdl", client.binary)
	assert.Equal(t, defaultDownloadTimeout, client.timeout)
	assert.Empty(t, client.clientID)
	assert.Empty(t, client.authToken)
}

func TestDownloadInMemory(t *testing.T) {
	runner := &fakeRunner{
		run: func(_ context.Context, dir string, _ []string) (string, error) {
			writeFiles(t, dir, "Night Drive.mp3", "Night Drive.jpg")
			return "", nil
		},
	}
	client, ws := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:        "https://soundcloud.com/artist/night-drive",
		NameFormat: "{title}",
		APIMode:    true,
	})

	file, ok := result.(*File)
	require.True(t, ok, "expected *File, got %T", result)
	assert.Equal(t, "Night Drive.mp3", file.Filename)
	assert.Equal(t, "audio/mpeg", file.ContentType)
	assert.Equal(t, mp3Bytes, file.Data)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "-l", runner.calls[0][0])
	assert.Equal(t, "https://soundcloud.com/artist/night-drive", runner.calls[0][1])
	assert.Contains(t, runner.calls[0], "--hide-progress")

	assertWorkspaceEmpty(t, ws)
}

func TestDownloadInMemoryMultipleFiles(t *testing.T) {
	runner := &fakeRunner{
		run: func(_ context.Context, dir string, _ []string) (string, error) {
			writeFiles(t, dir, "a.mp3", "b.mp3")
			return "", nil
		},
	}
	client, ws := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:     "https://on.soundcloud.com/abc123",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok, "expected *Failure, got %T", result)
	assert.True(t, f.UnsupportedForDirectDownload)
	assert.Contains(t, f.Message, "2 files")

	assertWorkspaceEmpty(t, ws)
}

func TestDownloadInMemoryNoFiles(t *testing.T) {
	client, ws := newTestClient(t, &fakeRunner{})

	result := client.Download(context.Background(), Args{
		URL:     "https://soundcloud.com/artist/track",
		APIMode: true,
	})

	assert.Nil(t, result)
	assertWorkspaceEmpty(t, ws)
}

func TestDownloadCommandFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(context.Context, string, []string) (string, error) {
			return "Found a track\nERROR: This track is not available\n\n", errors.New("exit status 1")
		},
	}
	client, ws := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:     "https://soundcloud.com/artist/private-track",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok, "expected *Failure, got %T", result)
	assert.False(t, f.UnsupportedForDirectDownload)
	assert.Equal(t, "This track is not available", f.Message)

	assertWorkspaceEmpty(t, ws)
}

func TestDownloadCommandFailureWithoutOutput(t *testing.T) {
	runner := &fakeRunner{
		run: func(context.Context, string, []string) (string, error) {
			return "", errors.New("exit status 2")
		},
	}
	client, _ := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:     "https://soundcloud.com/artist/track",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok)
	assert.Contains(t, f.Message, ErrDownloadFailed.Error())
	assert.Contains(t, f.Message, "exit status 2")
}

func TestDownloadTimeout(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, _ string, _ []string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	client, _ := newTestClient(t, runner)
	client.timeout = 20 * time.Millisecond

	result := client.Download(context.Background(), Args{
		URL:     "https://soundcloud.com/artist/long-mix",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok)
	assert.Contains(t, f.Message, ErrDownloadTimeout.Error())
}

func TestDownloadUnsupportedInAPIMode(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"playlist", "https://soundcloud.com/artist/sets/summer-mixes"},
		{"user profile", "https://soundcloud.com/artist"},
		{"user likes", "https://soundcloud.com/artist/likes"},
		{"discover set", "https://soundcloud.com/discover/sets/weekly::user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			client, _ := newTestClient(t, runner)

			result := client.Download(context.Background(), Args{URL: tt.url, APIMode: true})

			f, ok := result.(*Failure)
			require.True(t, ok, "expected *Failure, got %T", result)
			assert.True(t, f.UnsupportedForDirectDownload)
			assert.Empty(t, runner.calls, "scdl should not run")
		})
	}
}

func TestDownloadRejectsInvalidURL(t *testing.T) {
	runner := &fakeRunner{}
	client, _ := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:     "https://example.com/artist/track",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok)
	assert.False(t, f.UnsupportedForDirectDownload)
	assert.Contains(t, f.Message, ErrNotSoundCloudURL.Error())
	assert.Empty(t, runner.calls)
}

func TestDownloadScdlNotAvailable(t *testing.T) {
	runner := &fakeRunner{versionErr: errors.New("executable file not found in $PATH")}
	client, _ := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:     "https://soundcloud.com/artist/track",
		APIMode: true,
	})

	f, ok := result.(*Failure)
	require.True(t, ok)
	assert.Contains(t, f.Message, ErrScdlNotAvailable.Error())
	assert.Empty(t, runner.calls)
}

func TestDownloadToPath(t *testing.T) {
	outputDir := t.TempDir()
	writeFiles(t, outputDir, "old.mp3")

	runner := &fakeRunner{
		run: func(_ context.Context, dir string, _ []string) (string, error) {
			writeFiles(t, dir, "Summer Mixes/one.mp3", "Summer Mixes/two.mp3")
			return "", nil
		},
	}
	client, _ := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:  "https://soundcloud.com/artist/sets/summer-mixes",
		Path: outputDir,
	})

	saved, ok := result.(*Saved)
	require.True(t, ok, "expected *Saved, got %T", result)
	assert.Equal(t, []string{
		filepath.Join(outputDir, "Summer Mixes", "one.mp3"),
		filepath.Join(outputDir, "Summer Mixes", "two.mp3"),
	}, saved.Files)
	assert.FileExists(t, filepath.Join(outputDir, "old.mp3"))
}

func TestDownloadToPathOverwriteReportsRewrittenFilesOnly(t *testing.T) {
	outputDir := t.TempDir()
	writeFiles(t, outputDir, "kept.mp3", "rewritten.mp3")
	past := time.Now().Add(-time.Hour)
	for _, name := range []string{"kept.mp3", "rewritten.mp3"} {
		require.NoError(t, os.Chtimes(filepath.Join(outputDir, name), past, past))
	}

	runner := &fakeRunner{
		run: func(_ context.Context, dir string, _ []string) (string, error) {
			writeFiles(t, dir, "rewritten.mp3")
			return "", nil
		},
	}
	client, _ := newTestClient(t, runner)

	result := client.Download(context.Background(), Args{
		URL:       "https://soundcloud.com/artist/sets/summer-mixes",
		Path:      outputDir,
		Overwrite: true,
	})

	saved, ok := result.(*Saved)
	require.True(t, ok, "expected *Saved, got %T", result)
	assert.Equal(t, []string{filepath.Join(outputDir, "rewritten.mp3")}, saved.Files)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--overwrite")
}

func TestDownloadToPathNothingWritten(t *testing.T) {
	client, _ := newTestClient(t, &fakeRunner{})

	result := client.Download(context.Background(), Args{
		URL:  "https://soundcloud.com/artist/track",
		Path: t.TempDir(),
	})

	assert.Nil(t, result)
}

func TestDownloadUsesClientCredentials(t *testing.T) {
	runner := &fakeRunner{}
	client, _ := newTestClient(t, runner)
	client.clientID = "client-123"
	client.authToken = "token-456"

	client.Download(context.Background(), Args{URL: "https://soundcloud.com/a/b", APIMode: true})

	require.Len(t, runner.calls, 1)
	assert.Subset(t, runner.calls[0], []string{"--client-id", "client-123", "--auth-token", "token-456"})
}

func TestContentTypeHint(t *testing.T) {
	assert.Equal(t, "audio/mpeg", contentTypeHint(mp3Bytes))
	assert.Empty(t, contentTypeHint([]byte("definitely not audio")))
	assert.Empty(t, contentTypeHint(nil))
}

func TestLastMessage(t *testing.T) {
	assert.Equal(t, "boom", lastMessage([]byte("first\nerror: boom\n  \n")))
	assert.Equal(t, "", lastMessage([]byte("\n\n")))
	assert.Equal(t, "single", lastMessage([]byte("single")))
}

func TestRedact(t *testing.T) {
	argv := []string{"-l", "u", "--client-id", "abc", "--auth-token", "secret"}

	assert.Equal(t, []string{"-l", "u", "--client-id", "***", "--auth-token", "***"}, redact(argv))
	assert.Equal(t, "secret", argv[5], "input must not be modified")
}
