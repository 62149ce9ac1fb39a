package localfs

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

// id3Frame encodes an ID3v2.3 text frame with ISO-8859-1 text.
func id3Frame(id, text string) []byte {
	body := append([]byte{0x00}, []byte(text)...)
	frame := make([]byte, 10, 10+len(body))
	copy(frame, id)
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(body)))
	return append(frame, body...)
}

func syncsafe(n int) []byte {
	return []byte{byte(n>>21) & 0x7f, byte(n>>14) & 0x7f, byte(n>>7) & 0x7f, byte(n) & 0x7f}
}

// writeTagged writes a file holding only an ID3v2.3 tag.
func writeTagged(t *testing.T, path string, frames map[string]string) {
	t.Helper()
	var payload []byte
	for _, id := range []string{"TIT2", "TPE1", "TALB", "TCON", "TYER"} {
		if v, ok := frames[id]; ok {
			payload = append(payload, id3Frame(id, v)...)
		}
	}
	header := append([]byte("ID3"), 0x03, 0x00, 0x00)
	header = append(header, syncsafe(len(payload))...)
	data := append(header, payload...)
	data = append(data, make([]byte, 128)...)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func newLibrary(t *testing.T) (string, *Source) {
	t.Helper()
	root := t.TempDir()

	writeTagged(t, filepath.Join(root, "jazz", "blue.mp3"), map[string]string{
		"TIT2": "Blue Hour", "TPE1": "Nina Vale", "TALB": "Late Sets", "TCON": "Jazz", "TYER": "2019",
	})
	writeTagged(t, filepath.Join(root, "rock", "storm.mp3"), map[string]string{
		"TIT2": "Storm Front", "TPE1": "Arc Lights", "TALB": "Voltage", "TCON": "Rock", "TYER": "2023",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "Odd Trio - Quiet Room.ogg"), []byte("not really audio"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.jpg"), []byte("jpg"), 0o644))
	writeTagged(t, filepath.Join(root, ".cache", "hidden.mp3"), map[string]string{"TIT2": "Hidden"})

	return root, New(root, logger.NewTestLogger())
}

func TestSource_ScanReadsTagsAndFilenames(t *testing.T) {
	_, src := newLibrary(t)

	all, err := src.PopularTracks(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, src.Len())

	// Ordered by artist: Arc Lights, Nina Vale, Odd Trio.
	assert.Equal(t, "Storm Front", all[0].Title)
	assert.Equal(t, "Blue Hour", all[1].Title)
	assert.Equal(t, "Late Sets", all[1].Album)
	assert.Equal(t, "Odd Trio", all[2].Artist)
	assert.Equal(t, "Quiet Room", all[2].Title)

	for _, tr := range all {
		assert.NotEmpty(t, tr.ID)
		assert.True(t, strings.HasPrefix(tr.MediaURL, "file://"), tr.MediaURL)
		assert.NotEmpty(t, tr.ArtworkURL)
	}
}

func TestSource_StableIDs(t *testing.T) {
	root, src := newLibrary(t)
	first, err := src.SearchTracks(context.Background(), "blue", 5)
	require.NoError(t, err)

	again := New(root, logger.NewTestLogger())
	second, err := again.SearchTracks(context.Background(), "blue", 5)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestSource_Search(t *testing.T) {
	_, src := newLibrary(t)
	ctx := context.Background()

	byArtist, err := src.SearchTracks(ctx, "NINA", 10)
	require.NoError(t, err)
	require.Len(t, byArtist, 1)
	assert.Equal(t, "Blue Hour", byArtist[0].Title)

	byAlbum, err := src.SearchTracks(ctx, "voltage", 10)
	require.NoError(t, err)
	require.Len(t, byAlbum, 1)

	none, err := src.SearchTracks(ctx, "polka", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	limited, err := src.SearchTracks(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSource_TracksByGenre(t *testing.T) {
	_, src := newLibrary(t)

	jazz, err := src.TracksByGenre(context.Background(), "jazz", 10)
	require.NoError(t, err)
	require.Len(t, jazz, 1)
	assert.Equal(t, "Blue Hour", jazz[0].Title)

	empty, err := src.TracksByGenre(context.Background(), " ", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSource_NewReleases(t *testing.T) {
	_, src := newLibrary(t)

	latest, err := src.NewReleases(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Storm Front", latest[0].Title)
	assert.Equal(t, "Blue Hour", latest[1].Title)
}

func TestSource_Rescan(t *testing.T) {
	root, src := newLibrary(t)
	require.NoError(t, src.Rescan(context.Background()))
	require.Equal(t, 3, src.Len())

	writeTagged(t, filepath.Join(root, "new.flac"), map[string]string{"TIT2": "Fresh"})
	now := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(root, "new.flac"), now, now))

	assert.Equal(t, 3, src.Len(), "scans are cached")
	require.NoError(t, src.Rescan(context.Background()))
	assert.Equal(t, 4, src.Len())
}

func TestSource_MissingRoot(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope"), logger.NewTestLogger())

	_, err := src.SearchTracks(context.Background(), "x", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read library root")
}

func TestSource_CanceledScan(t *testing.T) {
	_, src := newLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := src.Rescan(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.Len())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a/B.MP3"))
	assert.True(t, IsSupported("x.flac"))
	assert.False(t, IsSupported("cover.jpg"))
	assert.False(t, IsSupported("noext"))
}
