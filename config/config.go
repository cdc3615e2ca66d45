package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNameFormat         = "{title}"
	DefaultPlaylistNameFormat = "{playlist[title]}_{title}"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server     ServerConfig     `yaml:"server"`
	Downloader DownloaderConfig `yaml:"downloader"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// Gin mode: "debug", "release" or "test"
	Mode string `yaml:"mode"`
}

type DownloaderConfig struct {
	// Path or name of the scdl executable
	Binary string `yaml:"binary"`

	// Optional credentials, empty means anonymous access
	ClientID  string `yaml:"client_id"`
	AuthToken string `yaml:"auth_token"`

	Timeout time.Duration `yaml:"timeout"`

	// Scratch space for in-memory downloads
	TempDir    string        `yaml:"temp_dir"`
	ScratchTTL time.Duration `yaml:"scratch_ttl"`

	NameFormat         string `yaml:"name_format"`
	PlaylistNameFormat string `yaml:"playlist_name_format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	// A missing .env is fine, the variables may come from the environment itself
	_ = godotenv.Load()
	if clientID := os.Getenv("SOUNDCLOUD_CLIENT_ID"); clientID != "" {
		config.Downloader.ClientID = clientID
	}
	if authToken := os.Getenv("SOUNDCLOUD_AUTH_TOKEN"); authToken != "" {
		config.Downloader.AuthToken = authToken
	}

	config.setDefaults()
	return config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	config.setDefaults()
	return config
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if c.Downloader.Binary == "" {
		c.Downloader.Binary = "scdl"
	}

	if c.Downloader.Timeout <= 0 {
		c.Downloader.Timeout = 30 * time.Minute
	}

	if c.Downloader.TempDir == "" {
		c.Downloader.TempDir = filepath.Join(os.TempDir(), "soundcloudy")
	}

	if c.Downloader.ScratchTTL <= 0 {
		c.Downloader.ScratchTTL = 2 * time.Hour
	}

	if c.Downloader.NameFormat == "" {
		c.Downloader.NameFormat = DefaultNameFormat
	}

	if c.Downloader.PlaylistNameFormat == "" {
		c.Downloader.PlaylistNameFormat = DefaultPlaylistNameFormat
	}
}
