// Package main is the command-line entry point for TuneStream.
//
// It browses the configured catalog, manages the saved collections and plays
// queues headlessly through the virtual media element.
//
// Build:
//
//	go build -o build/tunestream ./cmd/tunestream
//
// Run:
//
//	./build/tunestream popular
//	./build/tunestream play --from=search "lofi"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	tsapp "github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/config"
)

var (
	cli        = kingpin.New("tunestream", "TuneStream headless music player")
	configPath = cli.Flag("config", "Config file (default: XDG config dir, then ./config.toml)").Short('c').Envar("TUNESTREAM_CONFIG").String()
	logLevel   = cli.Flag("log-level", "Override the configured log level").Enum("debug", "info", "warn", "error")
	limit      = cli.Flag("limit", "Maximum number of catalog results").Short('n').Default("20").Int()

	// catalog commands
	searchCmd   = cli.Command("search", "Search the catalog")
	searchTerm  = searchCmd.Arg("term", "Search term").Required().String()
	popularCmd  = cli.Command("popular", "List popular tracks")
	genreCmd    = cli.Command("genre", "List tracks of a genre")
	genreName   = genreCmd.Arg("name", "Genre, e.g. rock").Required().String()
	releasesCmd = cli.Command("new", "List new releases").Alias("releases")

	// history command
	historyCmd   = cli.Command("history", "Show recent searches")
	historyClear = historyCmd.Flag("clear", "Forget recent searches").Bool()

	// collection commands
	playlistsCmd    = cli.Command("playlists", "List playlists")
	playlistCmd     = cli.Command("playlist", "Manage a playlist")
	plShowCmd       = playlistCmd.Command("show", "Show the tracks of a playlist")
	plShowID        = plShowCmd.Arg("id", "Playlist ID").Required().String()
	plCreateCmd     = playlistCmd.Command("create", "Create a playlist")
	plCreateName    = plCreateCmd.Arg("name", "Playlist name").Required().String()
	plCreateDesc    = plCreateCmd.Flag("description", "Playlist description").String()
	plDeleteCmd     = playlistCmd.Command("delete", "Delete a playlist")
	plDeleteID      = plDeleteCmd.Arg("id", "Playlist ID").Required().String()
	plAddCmd        = playlistCmd.Command("add", "Add the top search result to a playlist")
	plAddID         = plAddCmd.Arg("id", "Playlist ID").Required().String()
	plAddTerm       = plAddCmd.Arg("term", "Search term").Required().String()
	plRemoveCmd     = playlistCmd.Command("remove", "Remove a track from a playlist")
	plRemoveID      = plRemoveCmd.Arg("id", "Playlist ID").Required().String()
	plRemoveTrackID = plRemoveCmd.Arg("track-id", "Track ID").Required().String()
	likedCmd        = cli.Command("liked", "List liked songs")
	likeCmd         = cli.Command("like", "Like or unlike the top search result")
	likeTerm        = likeCmd.Arg("term", "Search term").Required().String()
	recentCmd       = cli.Command("recent", "List recently played tracks")

	// playback
	playCmd     = cli.Command("play", "Play a queue headlessly until it has been played through")
	playFrom    = playCmd.Flag("from", "What to play").Default(sourcePopular).Enum(playSources...)
	playArg     = playCmd.Arg("value", "Playlist ID, search term or genre").String()
	playShuffle = playCmd.Flag("shuffle", "Enable shuffle").Bool()
	playRepeat  = playCmd.Flag("repeat", "Enable repeat").Bool()
	playFor     = playCmd.Flag("for", "Stop after this long, e.g. 10m").Duration()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	cli.Version(tsapp.GetVersionInfo().FullString())
	cli.HelpFlag.Short('h')
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		cli.Fatalf("%v", err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := tsapp.NewApplication(cfg)
	if err != nil {
		cli.Fatalf("failed to start: %v", err)
	}

	err = run(ctx, application, command)

	if shutdownErr := application.Shutdown(); shutdownErr != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", shutdownErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *tsapp.Application, command string) error {
	out := newPrinter(os.Stdout)

	switch command {
	case searchCmd.FullCommand():
		out.tracks(a.Controller().Search(ctx, *searchTerm, *limit))
	case popularCmd.FullCommand():
		out.tracks(a.Catalog().Popular(ctx, *limit))
	case genreCmd.FullCommand():
		out.tracks(a.Catalog().ByGenre(ctx, *genreName, *limit))
	case releasesCmd.FullCommand():
		out.tracks(a.Catalog().NewReleases(ctx, *limit))

	case historyCmd.FullCommand():
		if *historyClear {
			return a.Searches().Clear()
		}
		out.lines(a.Searches().Terms())

	case playlistsCmd.FullCommand():
		out.playlists(a.Collection().Playlists())
	case plShowCmd.FullCommand():
		p, err := a.Collection().Playlist(*plShowID)
		if err != nil {
			return err
		}
		out.playlist(p)
	case plCreateCmd.FullCommand():
		p, err := a.Collection().CreatePlaylist(*plCreateName, *plCreateDesc)
		if err != nil {
			return err
		}
		out.info("created playlist %q (%s)", p.Name, p.ID)
	case plDeleteCmd.FullCommand():
		if _, err := a.Collection().Playlist(*plDeleteID); err != nil {
			return err
		}
		a.Collection().DeletePlaylist(*plDeleteID)
		out.info("playlist deleted")
	case plAddCmd.FullCommand():
		return addToPlaylist(ctx, a, out, *plAddID, *plAddTerm)
	case plRemoveCmd.FullCommand():
		if _, err := a.Collection().Playlist(*plRemoveID); err != nil {
			return err
		}
		a.Collection().RemoveSongFromPlaylist(*plRemoveID, *plRemoveTrackID)
		out.info("track removed")
	case likedCmd.FullCommand():
		out.tracks(a.Collection().LikedSongs())
	case likeCmd.FullCommand():
		return like(ctx, a, out, *likeTerm)
	case recentCmd.FullCommand():
		out.tracks(a.Collection().RecentlyPlayed())

	case playCmd.FullCommand():
		return play(ctx, a, out, playOptions{
			from:    *playFrom,
			value:   *playArg,
			shuffle: *playShuffle,
			repeat:  *playRepeat,
			limit:   *limit,
			maxTime: *playFor,
		})
	}
	return nil
}
