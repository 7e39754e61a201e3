package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultRemoteFolder is the drive folder everything deploys into.
	DefaultRemoteFolder = "CooklangApp"

	// DefaultMarkerFile records the last deployed revision at the remote root.
	DefaultMarkerFile = "last_deployed_commit.txt"

	// DefaultDriveURL is the drive service endpoint.
	DefaultDriveURL = "https://drive.cooklabs.dev"

	// DefaultAisleConf is the shopping-aisle config, relative to the repo root.
	DefaultAisleConf = "config/aisle.conf"

	// DefaultTagIndexFile is the generated tag index, relative to the repo root.
	DefaultTagIndexFile = "tags-index.md"
)

// DefaultWhitelist lists the top-level recipe directories eligible for deployment.
var DefaultWhitelist = []string{"bread", "config", "desserts", "entrees", "salad", "sides", "soup"}

var (
	ErrNoRepoDir  = errors.New("config: repo dir missing")
	ErrNoAppleID  = errors.New("config: apple id missing")
	ErrEmptyLists = errors.New("config: whitelist is empty")
)

// Config carries everything the deployer and the recipe utilities need.
// It is built once by the CLI and passed down; nothing reads globals.
type Config struct {
	// RepoDir is the local recipe repository (a git worktree).
	RepoDir string `mapstructure:"repo_dir"`

	// AppleID is the drive account. Falls back to ICLOUD_USERNAME.
	AppleID string `mapstructure:"apple_id"`

	// DriveURL is the drive service base URL.
	DriveURL string `mapstructure:"drive_url"`

	// RemoteFolder is the display name of the remote root folder.
	RemoteFolder string `mapstructure:"remote_folder"`

	// MarkerFile is the name of the state marker file at the remote root.
	MarkerFile string `mapstructure:"marker_file"`

	// Whitelist holds the top-level directory names to sync.
	Whitelist []string `mapstructure:"whitelist"`

	// OpenAIKey is only needed by the tag/ingredient suggestion commands.
	OpenAIKey string `mapstructure:"-"`
}

// LoadDotenv loads a repo-local .env if present. Missing files are fine;
// a malformed one is not.
func LoadDotenv(repoDir string) error {
	path := filepath.Join(repoDir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvFallbacks fills fields from the environment variables the original
// tooling used, without overriding explicit settings.
func (c *Config) ApplyEnvFallbacks() {
	if c.AppleID == "" {
		c.AppleID = os.Getenv("ICLOUD_USERNAME")
	}
	if c.OpenAIKey == "" {
		c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if len(c.Whitelist) == 0 {
		if env := os.Getenv("FOLDERS_TO_SYNC"); env != "" {
			c.Whitelist = SplitFolderList(env)
		}
	}
}

// SplitFolderList parses a comma-separated folder list, trimming blanks.
func SplitFolderList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.RepoDir == "" {
		return ErrNoRepoDir
	}

	abs, err := filepath.Abs(c.RepoDir)
	if err != nil {
		return fmt.Errorf("config: resolve repo dir: %w", err)
	}
	c.RepoDir = filepath.Clean(abs)

	if info, err := os.Stat(c.RepoDir); err != nil || !info.IsDir() {
		return fmt.Errorf("config: repo dir %q is not a directory", c.RepoDir)
	}

	if c.AppleID == "" {
		return ErrNoAppleID
	}

	if c.DriveURL == "" {
		c.DriveURL = DefaultDriveURL
	}
	if c.RemoteFolder == "" {
		c.RemoteFolder = DefaultRemoteFolder
	}
	if c.MarkerFile == "" {
		c.MarkerFile = DefaultMarkerFile
	}
	if len(c.Whitelist) == 0 {
		c.Whitelist = append([]string(nil), DefaultWhitelist...)
	}

	return nil
}
