package sqlite

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// Setting keys.
const (
	keyCurrentIndex = "history.current_index"
	keyVolume       = "preferences.volume"
	keyShuffle      = "preferences.shuffle"
	keyRepeat       = "preferences.repeat"

	// KeyRecentSearches holds the recent search terms as a JSON array.
	KeyRecentSearches = "recentSearches"
)

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read setting %q", key)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrapf(err, "failed to write setting %q", key)
}

func (s *Store) remove(keys ...string) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
				return errors.Wrapf(err, "failed to remove setting %q", key)
			}
		}
		return nil
	})
}

func (s *Store) getInt(key string, fallback int) (int, error) {
	value, ok, err := s.get(key)
	if err != nil || !ok {
		return fallback, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "setting %q is not an integer", key)
	}
	return n, nil
}

func (s *Store) setInt(key string, value int) error {
	return s.set(key, strconv.Itoa(value))
}

func (s *Store) getBool(key string) (bool, error) {
	value, ok, err := s.get(key)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "setting %q is not a boolean", key)
	}
	return b, nil
}

func (s *Store) setBool(key string, value bool) error {
	return s.set(key, strconv.FormatBool(value))
}

// PreferencesRepository stores volume, shuffle and repeat.
type PreferencesRepository struct {
	store *Store
}

var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)

// SaveVolume persists the volume.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be within [0, 1]")
	}
	return r.store.set(keyVolume, strconv.FormatFloat(volume, 'g', -1, 64))
}

// LoadVolume returns the saved volume, or domain.DefaultVolume.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	value, ok, err := r.store.get(keyVolume)
	if err != nil || !ok {
		return domain.DefaultVolume, err
	}
	volume, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return domain.DefaultVolume, errors.Wrap(err, "stored volume is not a number")
	}
	return volume, nil
}

// SaveShuffle persists the shuffle flag.
func (r *PreferencesRepository) SaveShuffle(enabled bool) error {
	return r.store.setBool(keyShuffle, enabled)
}

// LoadShuffle returns the saved shuffle flag.
func (r *PreferencesRepository) LoadShuffle() (bool, error) {
	return r.store.getBool(keyShuffle)
}

// SaveRepeat persists the repeat flag.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	return r.store.setBool(keyRepeat, enabled)
}

// LoadRepeat returns the saved repeat flag.
func (r *PreferencesRepository) LoadRepeat() (bool, error) {
	return r.store.getBool(keyRepeat)
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	return r.store.remove(keyVolume, keyShuffle, keyRepeat)
}

// SearchHistoryRepository stores recent search terms.
type SearchHistoryRepository struct {
	store *Store
}

var _ ports.SearchHistoryRepository = (*SearchHistoryRepository)(nil)

// SaveTerms replaces the stored terms.
func (r *SearchHistoryRepository) SaveTerms(terms []string) error {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return errors.Wrap(err, "failed to encode search terms")
	}
	return r.store.set(KeyRecentSearches, string(data))
}

// LoadTerms returns the stored terms, most recent first.
func (r *SearchHistoryRepository) LoadTerms() ([]string, error) {
	value, ok, err := r.store.get(KeyRecentSearches)
	if err != nil {
		return nil, err
	}
	terms := []string{}
	if !ok {
		return terms, nil
	}
	if err := json.Unmarshal([]byte(value), &terms); err != nil {
		return nil, errors.Wrap(err, "failed to decode search terms")
	}
	return terms, nil
}

// Clear removes the stored terms.
func (r *SearchHistoryRepository) Clear() error {
	return r.store.remove(KeyRecentSearches)
}
