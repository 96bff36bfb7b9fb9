package config

import (
	"os"
	"path/filepath"

	"github.com/spanlens/spanlens/internal/config/data"
)

const AppName = "spanlens"

var (
	// AppConfigDir is ~/.config/spanlens
	AppConfigDir string

	// AppDataDir is ~/.local/share/spanlens
	AppDataDir string

	// AppStateDir is ~/.local/state/spanlens
	AppStateDir string

	// AppConfigFile is ~/.config/spanlens/spanlens.yaml
	AppConfigFile string

	// AppAliasesFile is ~/.config/spanlens/aliases.yaml
	AppAliasesFile string

	// AppProjectsDir is ~/.local/share/spanlens/projects
	AppProjectsDir string

	// AppDBFile is ~/.local/share/spanlens/spanlens.db
	AppDBFile string

	// AppLogFile is ~/.local/state/spanlens/spanlens.log
	AppLogFile string
)

// InitLocs initializes all application directory paths.
// It respects XDG environment variables if set.
func InitLocs() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	AppConfigDir = filepath.Join(configHome, AppName)
	AppDataDir = filepath.Join(dataHome, AppName)
	AppStateDir = filepath.Join(stateHome, AppName)

	AppConfigFile = filepath.Join(AppConfigDir, AppName+".yaml")
	AppAliasesFile = filepath.Join(AppConfigDir, "aliases.yaml")
	AppProjectsDir = filepath.Join(AppDataDir, "projects")
	AppDBFile = filepath.Join(AppDataDir, AppName+".db")
	AppLogFile = filepath.Join(AppStateDir, AppName+".log")

	data.SetDefaultProjectsDir(AppProjectsDir)

	for _, dir := range []string{AppConfigDir, AppDataDir, AppStateDir, AppProjectsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return nil
}
