// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/catalog/jamendo"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/catalog/localfs"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/media/virtual"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/repository/prefs"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/repository/sqlite"
	"github.com/tejashwikalptaru/tunestream/internal/config"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

// Application is the root application structure that holds all dependencies.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Restoring the previous session
// - Persisting and releasing everything on Shutdown
type Application struct {
	// Core dependencies
	logger *slog.Logger
	config config.Config

	// Infrastructure
	eventBus ports.EventBus
	media    ports.MediaElement
	store    *sqlite.Store
	closers  []io.Closer

	// Services
	player      *service.PlayerService
	binding     *service.MediaBinding
	collection  *service.CollectionService
	catalog     *service.CatalogService
	searches    *service.SearchHistoryService
	preferences *service.PreferenceService
	controller  *service.Controller

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option customizes NewApplication.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	preferences fyne.Preferences
	media       ports.MediaElement
	source      ports.CatalogSource
	sourceSet   bool
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPreferences stores everything in the host's Fyne preferences instead of
// the configured storage backend.
func WithPreferences(p fyne.Preferences) Option {
	return func(o *options) { o.preferences = p }
}

// WithMediaElement drives media instead of the built-in virtual element. The
// caller keeps ownership of media.
func WithMediaElement(media ports.MediaElement) Option {
	return func(o *options) { o.media = media }
}

// WithCatalogSource replaces the configured catalog provider. A nil source
// disables the catalog.
func WithCatalogSource(source ports.CatalogSource) Option {
	return func(o *options) {
		o.source = source
		o.sourceSet = true
	}
}

// NewApplication creates a new application with all dependencies wired and
// the previous session restored.
func NewApplication(cfg config.Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &Application{config: cfg}

	// Step 1: Create logger
	app.logger = o.logger
	if app.logger == nil {
		app.logger = logger.NewLogger(cfg.LoggerConfig())
	}
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("catalog", cfg.Catalog.Provider),
		slog.String("storage", cfg.Storage.Backend))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create repositories
	repos, err := app.openRepositories(cfg, o.preferences)
	if err != nil {
		_ = app.eventBus.Close()
		return nil, err
	}

	// Step 4: Create services (with dependency injection)
	app.player = service.NewPlayerService(app.logger, app.eventBus, repos.History, nil)
	app.preferences = service.NewPreferenceService(app.logger, repos.Preferences, app.eventBus)
	app.collection = service.NewCollectionService(app.logger, app.eventBus, repos.Playlists, repos.TrackLists)
	app.searches = service.NewSearchHistoryService(app.logger, repos.SearchHistory, app.eventBus)

	source := o.source
	if !o.sourceSet {
		source = app.newCatalogSource(cfg.Catalog)
	}
	app.catalog = service.NewCatalogService(app.logger, source)

	// Step 5: Load saved state before media is attached so the restored
	// track is loaded but not played.
	app.preferences.Apply(app.player)
	if err := app.player.LoadQueue(); err != nil {
		// Non-fatal - just log and continue
		app.logger.Warn("failed to load saved queue", slog.Any("error", err))
	}

	// Step 6: Create the media element and bind it
	app.media = o.media
	if app.media == nil {
		element := virtual.New(app.logger, cfg.Playback.ProgressInterval, app.queuedDuration)
		app.media = element
		app.closers = append(app.closers, element)
	}
	app.binding = service.NewMediaBinding(app.logger, app.player, app.media, app.eventBus, cfg.Playback.ErrorRetryDelay)

	app.controller = service.NewController(app.logger, app.player, app.collection, app.catalog, app.searches)

	app.logger.Info("all services initialized successfully")
	return app, nil
}

func (a *Application) openRepositories(cfg config.Config, p fyne.Preferences) (ports.Repositories, error) {
	if p != nil {
		a.logger.Debug("using fyne preferences for storage")
		return prefs.NewRepositories(p, a.logger), nil
	}

	path := cfg.Storage.Path
	if cfg.Storage.Backend == config.BackendMemory {
		path = sqlite.MemoryPath
	}

	store, err := sqlite.Open(path, a.logger)
	if err != nil {
		return ports.Repositories{}, errors.Wrap(err, "failed to open storage")
	}
	a.store = store
	return store.Repositories(), nil
}

func (a *Application) newCatalogSource(cfg config.CatalogConfig) ports.CatalogSource {
	switch cfg.Provider {
	case config.ProviderJamendo:
		if cfg.Jamendo.ClientID == "" {
			a.logger.Warn("jamendo client id not set, requests may be rejected",
				slog.String("env", config.EnvJamendoClientID))
		}
		return jamendo.New(jamendo.Config{
			BaseURL:  cfg.Jamendo.BaseURL,
			ClientID: cfg.Jamendo.ClientID,
			Timeout:  cfg.Jamendo.Timeout,
		}, a.logger)
	case config.ProviderLocal:
		return localfs.New(cfg.Local.Root, a.logger)
	default:
		return nil
	}
}

// queuedDuration resolves a media URL to the duration of the queued track
// that uses it, so the virtual element knows when a track ends.
func (a *Application) queuedDuration(url string) (time.Duration, error) {
	if current := a.player.CurrentTrack(); current != nil && current.MediaURL == url {
		return current.Duration, nil
	}
	for _, track := range a.player.Queue() {
		if track.MediaURL == url {
			return track.Duration, nil
		}
	}
	return 0, nil
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Config returns the configuration the application was built with.
func (a *Application) Config() config.Config { return a.config }

// EventBus returns the event bus.
func (a *Application) EventBus() ports.EventBus { return a.eventBus }

// Media returns the media element being driven.
func (a *Application) Media() ports.MediaElement { return a.media }

// Player returns the playback engine.
func (a *Application) Player() *service.PlayerService { return a.player }

// Binding returns the media binding.
func (a *Application) Binding() *service.MediaBinding { return a.binding }

// Collection returns the collection store.
func (a *Application) Collection() *service.CollectionService { return a.collection }

// Catalog returns the catalog service.
func (a *Application) Catalog() *service.CatalogService { return a.catalog }

// Searches returns the recent-search history.
func (a *Application) Searches() *service.SearchHistoryService { return a.searches }

// Preferences returns the preference service.
func (a *Application) Preferences() *service.PreferenceService { return a.preferences }

// Controller returns the intent controller.
func (a *Application) Controller() *service.Controller { return a.controller }

// Shutdown saves the queue and releases everything in reverse order of
// creation. It is safe to call more than once.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")
		a.shutdownErr = a.shutdown()
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}

func (a *Application) shutdown() error {
	var result error

	// Save the current state
	if err := a.player.SaveQueue(); err != nil {
		a.logger.Warn("failed to save state", slog.Any("error", err))
		result = errors.CombineErrors(result, err)
	}

	if err := a.binding.Close(); err != nil {
		a.logger.Warn("failed to close media binding", slog.Any("error", err))
		result = errors.CombineErrors(result, err)
	}
	a.preferences.Close()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close media element", slog.Any("error", err))
			result = errors.CombineErrors(result, err)
		}
	}

	if err := a.eventBus.Close(); err != nil {
		result = errors.CombineErrors(result, err)
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close storage", slog.Any("error", err))
			result = errors.CombineErrors(result, errors.Wrap(err, "failed to close storage"))
		}
	}

	return result
}
