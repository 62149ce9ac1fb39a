package service

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// SearchHistoryService remembers the most recent distinct search terms.
type SearchHistoryService struct {
	logger     *slog.Logger
	repository ports.SearchHistoryRepository
	bus        ports.EventBus

	terms []string
	mu    sync.RWMutex
}

// NewSearchHistoryService creates the service and loads saved terms.
// repository may be nil for an in-memory history.
func NewSearchHistoryService(
	logger *slog.Logger,
	repository ports.SearchHistoryRepository,
	bus ports.EventBus,
) *SearchHistoryService {
	s := &SearchHistoryService{
		logger:     logger.With(slog.String("service", "search_history")),
		repository: repository,
		bus:        bus,
		terms:      []string{},
	}

	if repository != nil {
		terms, err := repository.LoadTerms()
		if err != nil {
			s.logger.Warn("failed to load recent searches", slog.Any("error", err))
		} else {
			s.terms = normalizeTerms(terms)
		}
	}

	return s
}

// normalizeTerms trims, drops blanks and duplicates, and caps the list.
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, domain.RecentSearchLimit)
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
		if len(out) == domain.RecentSearchLimit {
			break
		}
	}
	return out
}

// Record puts term at the front of the history. Blank terms are ignored.
func (s *SearchHistoryService) Record(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	s.terms = normalizeTerms(append([]string{term}, s.terms...))
	terms := slices.Clone(s.terms)
	s.mu.Unlock()

	s.persist(terms)
	s.bus.Publish(domain.NewSearchHistoryChangedEvent(terms))
}

// Terms returns the remembered terms, most recent first.
func (s *SearchHistoryService) Terms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.terms)
}

// Clear forgets all terms.
func (s *SearchHistoryService) Clear() error {
	s.mu.Lock()
	s.terms = []string{}
	s.mu.Unlock()

	if s.repository != nil {
		if err := s.repository.Clear(); err != nil {
			return domain.NewServiceError("SearchHistoryService", "Clear", "failed to clear recent searches", err)
		}
	}
	s.bus.Publish(domain.NewSearchHistoryChangedEvent([]string{}))
	return nil
}

func (s *SearchHistoryService) persist(terms []string) {
	if s.repository == nil {
		return
	}
	if err := s.repository.SaveTerms(terms); err != nil {
		s.logger.Warn("failed to save recent searches", slog.Any("error", err))
	}
}
