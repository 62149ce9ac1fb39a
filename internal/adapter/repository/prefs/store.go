// Package prefs provides repository implementations on top of fyne.Preferences,
// the key-value store a Fyne host application already owns.
//
// Fyne keeps preferences in OS-specific app data directories:
// - macOS: ~/Library/Preferences/<app-id>.plist
// - Linux: ~/.config/fyne/<app-id>/
// - Windows: %APPDATA%\fyne\<app-id>\
package prefs

import (
	"encoding/json"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// Preference keys.
const (
	keyPlaylistIDs    = "playlist._ids"
	keyPlaylistPrefix = "playlist."
	keyListPrefix     = "tracks."
	keyQueue          = "history.queue"
	keyCurrentIndex   = "history.current_index"
	keyVolume         = "preferences.volume"
	keyShuffle        = "preferences.shuffle"
	keyRepeat         = "preferences.repeat"

	// KeyRecentSearches is shared with the web client's local storage key.
	KeyRecentSearches = "recentSearches"
)

// NewRepositories returns every repository backed by prefs.
func NewRepositories(prefs fyne.Preferences, logger *slog.Logger) ports.Repositories {
	return ports.Repositories{
		Playlists:     NewPlaylistRepository(prefs, logger),
		TrackLists:    NewTrackListRepository(prefs),
		History:       NewHistoryRepository(prefs),
		Preferences:   NewPreferencesRepository(prefs),
		SearchHistory: NewSearchHistoryRepository(prefs),
	}
}

// getJSON decodes the value under key into v. It reports false when the key
// holds nothing.
func getJSON(prefs fyne.Preferences, key string, v any, repo, op string) (bool, error) {
	data := prefs.String(key)
	if data == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return true, domain.NewRepositoryError(op, repo, "failed to decode "+key, err)
	}
	return true, nil
}

func setJSON(prefs fyne.Preferences, key string, v any, repo, op string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.NewRepositoryError(op, repo, "failed to encode "+key, err)
	}
	prefs.SetString(key, string(data))
	return nil
}
