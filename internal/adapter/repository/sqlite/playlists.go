package sqlite

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PlaylistRepository stores playlists and their tracks.
type PlaylistRepository struct {
	store *Store
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)

// Save upserts a playlist. An existing playlist keeps its position.
func (r *PlaylistRepository) Save(p *domain.Playlist) error {
	return r.store.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO playlists (id, seq, name, description, artwork_url, created_at, updated_at)
			VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM playlists), ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				artwork_url = excluded.artwork_url,
				updated_at = excluded.updated_at
		`, p.ID, p.Name, p.Description, p.ArtworkURL, p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli())
		if err != nil {
			return errors.Wrapf(err, "failed to save playlist %q", p.ID)
		}

		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, p.ID); err != nil {
			return errors.Wrapf(err, "failed to clear playlist %q", p.ID)
		}

		stmt, err := tx.Prepare(`INSERT INTO playlist_tracks (playlist_id, position, ` + trackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return errors.Wrap(err, "failed to prepare insert")
		}
		defer stmt.Close()

		for i, t := range p.Tracks {
			args := append([]any{p.ID, i}, trackArgs(t)...)
			if _, err := stmt.Exec(args...); err != nil {
				return errors.Wrapf(err, "failed to insert track %q", t.ID)
			}
		}
		return nil
	})
}

// Load retrieves a playlist by ID.
func (r *PlaylistRepository) Load(id string) (*domain.Playlist, error) {
	row := r.store.db.QueryRow(`
		SELECT id, name, description, artwork_url, created_at, updated_at
		FROM playlists WHERE id = ?`, id)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load playlist %q", id)
	}
	if p.Tracks, err = r.tracks(id); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadAll returns every playlist in creation order.
func (r *PlaylistRepository) LoadAll() ([]*domain.Playlist, error) {
	rows, err := r.store.db.Query(`
		SELECT id, name, description, artwork_url, created_at, updated_at
		FROM playlists ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query playlists")
	}

	playlists := make([]*domain.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan playlist")
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "failed to read playlists")
	}
	rows.Close()

	// Track queries run after the cursor is closed: the pool holds one connection.
	for _, p := range playlists {
		if p.Tracks, err = r.tracks(p.ID); err != nil {
			r.store.logger.Warn("playlist tracks unreadable", slog.String("id", p.ID), slog.Any("error", err))
			p.Tracks = []domain.Track{}
		}
	}
	return playlists, nil
}

func (r *PlaylistRepository) tracks(id string) ([]domain.Track, error) {
	rows, err := r.store.db.Query(`SELECT `+trackColumns+` FROM playlist_tracks WHERE playlist_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query tracks of %q", id)
	}
	return scanTracks(rows)
}

// Delete removes a playlist and its tracks. Unknown IDs are ignored.
func (r *PlaylistRepository) Delete(id string) error {
	return r.store.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
			return errors.Wrapf(err, "failed to delete tracks of %q", id)
		}
		_, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		return errors.Wrapf(err, "failed to delete playlist %q", id)
	})
}

// Exists reports whether a playlist is stored under id.
func (r *PlaylistRepository) Exists(id string) bool {
	var one int
	err := r.store.db.QueryRow(`SELECT 1 FROM playlists WHERE id = ?`, id).Scan(&one)
	return err == nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row scanner) (*domain.Playlist, error) {
	var p domain.Playlist
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ArtworkURL, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(created)
	p.UpdatedAt = time.UnixMilli(updated)
	return &p, nil
}
