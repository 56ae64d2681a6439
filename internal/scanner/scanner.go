package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"NewsAnalyzer/internal/domain"
)

// ErrUnknownScanner is returned when a site names a strategy nobody registered.
var ErrUnknownScanner = errors.New("unknown scanner")

// Category is one listing endpoint of a site: a Naver section code or a feed.
// URL overrides the address the scanner would derive from Name.
type Category struct {
	Name string
	URL  string
}

// Request carries one site's scan parameters. Limit applies per category.
type Request struct {
	SiteName   string
	Categories []Category
	Limit      int
	Options    map[string]string
}

// Scanner lists article links for one kind of site (Naver sections, RSS feeds).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.ArticleRef, error)
}

// Registry maps strategy names, compared case-insensitively, to scanners.
type Registry struct {
	scanners map[string]Scanner
}

func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner under its Name.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[key(s.Name())] = s
}

func (r *Registry) Resolve(name string) (Scanner, error) {
	if s, ok := r.scanners[key(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScanner, name)
}

// Names lists registered strategies in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
