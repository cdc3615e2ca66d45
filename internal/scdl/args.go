package scdl

// Args is the options record for a single download. It is built per call and
// never modified by the client.
type Args struct {
	// SoundCloud URL to resolve
	URL string

	// Optional credentials; when empty the client's own are used
	AuthToken string
	ClientID  string

	// Naming templates understood by scdl
	NameFormat         string
	PlaylistNameFormat string

	Debug            bool
	OnlyMP3          bool
	OriginalArt      bool
	NoPlaylistFolder bool
	Overwrite        bool

	// APIMode returns the audio bytes in memory instead of leaving files on
	// disk; only single-file resources can be fetched this way
	APIMode bool

	// Output directory in filesystem mode, defaults to the working directory
	Path string
}

func (a Args) commandArgs(outputDir, clientID, authToken string) []string {
	argv := []string{"-l", a.URL, "--path", outputDir}

	if a.NameFormat != "" {
		argv = append(argv, "--name-format", a.NameFormat)
	}
	if a.PlaylistNameFormat != "" {
		argv = append(argv, "--playlist-name-format", a.PlaylistNameFormat)
	}

	if a.ClientID != "" {
		clientID = a.ClientID
	}
	if clientID != "" {
		argv = append(argv, "--client-id", clientID)
	}
	if a.AuthToken != "" {
		authToken = a.AuthToken
	}
	if authToken != "" {
		argv = append(argv, "--auth-token", authToken)
	}

	if a.OnlyMP3 {
		argv = append(argv, "--onlymp3")
	}
	if a.OriginalArt {
		argv = append(argv, "--original-art")
	}
	if a.NoPlaylistFolder {
		argv = append(argv, "--no-playlist-folder")
	}
	if a.Overwrite {
		argv = append(argv, "--overwrite")
	}
	if a.Debug {
		argv = append(argv, "--debug")
	}
	if a.APIMode {
		argv = append(argv, "--hide-progress")
	}

	return argv
}
