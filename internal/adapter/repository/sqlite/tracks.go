package sqlite

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// queueList is the track list holding the saved playback queue.
const queueList = "_queue"

const trackColumns = `track_id, title, artist, album, duration_ms, artwork_url, media_url, created_at`

func trackArgs(t domain.Track) []any {
	var created int64
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.UnixMilli()
	}
	return []any{t.ID, t.Title, t.Artist, t.Album, t.Duration.Milliseconds(), t.ArtworkURL, t.MediaURL, created}
}

func scanTracks(rows *sql.Rows) ([]domain.Track, error) {
	defer rows.Close()

	tracks := make([]domain.Track, 0)
	for rows.Next() {
		var t domain.Track
		var durationMS, created int64
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Album, &durationMS, &t.ArtworkURL, &t.MediaURL, &created); err != nil {
			return nil, errors.Wrap(err, "failed to scan track")
		}
		t.Duration = time.Duration(durationMS) * time.Millisecond
		if created != 0 {
			t.CreatedAt = time.UnixMilli(created)
		}
		tracks = append(tracks, t)
	}
	return tracks, errors.Wrap(rows.Err(), "failed to read tracks")
}

func replaceList(tx *sql.Tx, list string, tracks []domain.Track) error {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO track_lists (name) VALUES (?)`, list); err != nil {
		return errors.Wrapf(err, "failed to register list %q", list)
	}
	if _, err := tx.Exec(`DELETE FROM list_tracks WHERE list = ?`, list); err != nil {
		return errors.Wrapf(err, "failed to clear list %q", list)
	}

	stmt, err := tx.Prepare(`INSERT INTO list_tracks (list, position, ` + trackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, t := range tracks {
		args := append([]any{list, i}, trackArgs(t)...)
		if _, err := stmt.Exec(args...); err != nil {
			return errors.Wrapf(err, "failed to insert track %q", t.ID)
		}
	}
	return nil
}

func (s *Store) loadList(list string) ([]domain.Track, bool, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM track_lists WHERE name = ?`, list).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Track{}, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to look up list %q", list)
	}

	rows, err := s.db.Query(`SELECT `+trackColumns+` FROM list_tracks WHERE list = ? ORDER BY position`, list)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to query list %q", list)
	}
	tracks, err := scanTracks(rows)
	if err != nil {
		return nil, false, err
	}
	return tracks, true, nil
}

// TrackListRepository stores named track lists.
type TrackListRepository struct {
	store *Store
}

var _ ports.TrackListRepository = (*TrackListRepository)(nil)

// SaveTracks replaces the named list.
func (r *TrackListRepository) SaveTracks(list string, tracks []domain.Track) error {
	return r.store.withTx(func(tx *sql.Tx) error {
		return replaceList(tx, list, tracks)
	})
}

// LoadTracks returns the named list and whether it was ever saved.
func (r *TrackListRepository) LoadTracks(list string) ([]domain.Track, bool, error) {
	return r.store.loadList(list)
}

// HistoryRepository stores the playback queue and the current index.
type HistoryRepository struct {
	store *Store
}

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

// SaveQueue persists the playback queue.
func (r *HistoryRepository) SaveQueue(tracks []domain.Track) error {
	return r.store.withTx(func(tx *sql.Tx) error {
		return replaceList(tx, queueList, tracks)
	})
}

// LoadQueue returns the saved queue, empty if none.
func (r *HistoryRepository) LoadQueue() ([]domain.Track, error) {
	tracks, _, err := r.store.loadList(queueList)
	return tracks, err
}

// SaveCurrentIndex persists the current index.
func (r *HistoryRepository) SaveCurrentIndex(index int) error {
	return r.store.setInt(keyCurrentIndex, index)
}

// LoadCurrentIndex returns the saved index, or -1.
func (r *HistoryRepository) LoadCurrentIndex() (int, error) {
	return r.store.getInt(keyCurrentIndex, -1)
}

// Clear removes the saved queue and index.
func (r *HistoryRepository) Clear() error {
	return r.store.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM list_tracks WHERE list = ?`, queueList); err != nil {
			return errors.Wrap(err, "failed to clear queue")
		}
		if _, err := tx.Exec(`DELETE FROM track_lists WHERE name = ?`, queueList); err != nil {
			return errors.Wrap(err, "failed to clear queue")
		}
		_, err := tx.Exec(`DELETE FROM settings WHERE key = ?`, keyCurrentIndex)
		return errors.Wrap(err, "failed to clear current index")
	})
}
