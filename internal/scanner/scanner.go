package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"MorningDigest/internal/domain"
)

// Request carries all parameters required to execute a scan.
type Request struct {
	SourceName string
	Category   string
	Topics     []string
	MaxResults int
	// Since and Until bound date-range listings; query-style scanners ignore them.
	Since   time.Time
	Until   time.Time
	Options map[string]string
}

// DayPrecise is implemented by scanners whose timestamps carry a calendar
// date only.
type DayPrecise interface {
	DayPrecision() bool
}

// Scanner captures a single strategy implementation (arXiv, bioRxiv, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Paper, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered scanners in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
