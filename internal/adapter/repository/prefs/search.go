package prefs

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// SearchHistoryRepository stores recent search terms as a JSON array under
// KeyRecentSearches.
type SearchHistoryRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

var _ ports.SearchHistoryRepository = (*SearchHistoryRepository)(nil)

// NewSearchHistoryRepository creates a search history repository.
func NewSearchHistoryRepository(prefs fyne.Preferences) *SearchHistoryRepository {
	return &SearchHistoryRepository{prefs: prefs}
}

// SaveTerms replaces the stored terms.
func (r *SearchHistoryRepository) SaveTerms(terms []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if terms == nil {
		terms = []string{}
	}
	return setJSON(r.prefs, KeyRecentSearches, terms, "search_history", "save")
}

// LoadTerms returns the stored terms, most recent first.
func (r *SearchHistoryRepository) LoadTerms() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var terms []string
	found, err := getJSON(r.prefs, KeyRecentSearches, &terms, "search_history", "load")
	if err != nil {
		return nil, err
	}
	if !found || terms == nil {
		return []string{}, nil
	}
	return terms, nil
}

// Clear removes the stored terms.
func (r *SearchHistoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.RemoveValue(KeyRecentSearches)
	return nil
}
