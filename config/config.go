// Package config loads user settings from the XDG config directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"

	"github.com/ghthor/polyis/bubbles/polyis"
	"github.com/ghthor/polyis/game"
)

var (
	cfgFile    = "polyis/config.json"
	scoresFile = "polyis/scores.db"
)

type Settings struct {
	Game   game.Config `json:"game"`
	Ghost  bool        `json:"ghost"`
	Player string      `json:"player"`
	// ScoresPath overrides the XDG data location of the score database.
	ScoresPath string `json:"scores_path,omitempty"`
	// Keys maps action names onto keys, replacing the defaults.
	Keys map[string][]string `json:"keys,omitempty"`
}

func Default() Settings {
	player := os.Getenv("USER")
	if player == "" {
		player = "player"
	}
	return Settings{
		Game:   game.DefaultConfig(),
		Ghost:  true,
		Player: player,
	}
}

// Load reads the first config file found in the XDG config directories over
// the defaults. The returned path is empty when no file exists.
func Load() (Settings, string, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		s := Default()
		return s, "", s.Validate()
	}
	s, err := LoadFile(absPath)
	return s, absPath, err
}

func LoadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	_, keyErr := s.KeyMap()
	return errors.Join(s.Game.Validate(), keyErr)
}

func (s Settings) KeyMap() (polyis.KeyMap, error) {
	k := polyis.DefaultKeyMap()
	if err := k.Rebind(s.Keys); err != nil {
		return k, fmt.Errorf("keys: %w", err)
	}
	return k, nil
}

// ScoresFile returns the score database path, creating its parent directory
// when it comes from XDG.
func (s Settings) ScoresFile() (string, error) {
	if s.ScoresPath != "" {
		return s.ScoresPath, nil
	}
	return xdg.DataFile(scoresFile)
}

// Save writes the settings to the user's XDG config file and returns its
// path.
func (s Settings) Save() (string, error) {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", err
	}
	return absPath, SaveFile(absPath, s, 0o664)
}

func SaveFile(path string, s Settings, perm fs.FileMode) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}
