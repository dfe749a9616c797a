// Package quantity turns raw logger columns into physically meaningful,
// unit-tagged quantities. A memoizing store performs dependency-ordered
// derivation against a statically declared rule set, caching results
// relative to exactly one row filter at a time.
package quantity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gstrugala/hp-tests/internal/dataset"
	apperrors "github.com/gstrugala/hp-tests/internal/errors"
	"github.com/gstrugala/hp-tests/internal/thermo"
	"github.com/gstrugala/hp-tests/internal/units"
)

// Store memoizes derived quantities for one dataset. It is a single-slot
// cache: entries are valid only for the active row filter, and any
// resolve under a different filter (or with force set) discards the
// whole cache before deriving. Fine-grained invalidation would risk
// silently mixing samples from different subsets.
//
// A Store is not safe for concurrent use; the engine is single-writer,
// single-reader per instance.
type Store struct {
	ds       *dataset.Dataset
	table    dataset.NameTable
	registry *units.Registry
	provider thermo.PropertyProvider
	rules    map[string]Rule
	logger   *slog.Logger

	cache        map[string]*units.Quantity
	activeFilter dataset.Filter
	activeSig    string
	rows         []int
}

// NewStore creates a store over the dataset using the built-in
// derivation rules. The unit registry and property provider are
// injected; the store never consults ambient global state.
func NewStore(ds *dataset.Dataset, table dataset.NameTable, registry *units.Registry,
	provider thermo.PropertyProvider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		ds:       ds,
		table:    table,
		registry: registry,
		provider: provider,
		rules:    DefaultRules(),
		logger:   logger,
		cache:    make(map[string]*units.Quantity),
	}
	// The initial active filter is the empty one: all rows selected.
	s.rows, _ = ds.Subset(nil)
	return s
}

// SetRules replaces the rule set, clearing the cache. Intended for
// custom analyses; the built-in set is DefaultRules.
func (s *Store) SetRules(rules map[string]Rule) {
	s.rules = rules
	s.cache = make(map[string]*units.Quantity)
}

// Dataset returns the underlying dataset.
func (s *Store) Dataset() *dataset.Dataset { return s.ds }

// UnitRegistry returns the injected unit registry.
func (s *Store) UnitRegistry() *units.Registry { return s.registry }

// ActiveFilter returns the filter the cache is currently valid for.
func (s *Store) ActiveFilter() dataset.Filter { return s.activeFilter }

// Resolve derives (or fetches from cache) the requested quantities under
// the given filter. If force is set, or the filter differs from the
// store's active filter, the cache is cleared and every requested name
// is re-derived; otherwise only missing names are derived.
//
// On error the store keeps the names already derived during this call;
// they are valid for the unchanged filter.
func (s *Store) Resolve(ctx context.Context, names []string, filter dataset.Filter, force bool) (map[string]*units.Quantity, error) {
	sig := filter.Signature()
	if force || sig != s.activeSig {
		rows, err := s.ds.Subset(filter)
		if err != nil {
			return nil, fmt.Errorf("apply filter %q: %w", sig, err)
		}
		s.cache = make(map[string]*units.Quantity)
		s.activeFilter = filter
		s.activeSig = sig
		s.rows = rows
		s.logger.DebugContext(ctx, "quantity cache invalidated",
			"filter", sig,
			"forced", force,
			"samples", len(rows),
		)
	}

	start := time.Now()
	dc := &deriveContext{ctx: ctx, store: s, visiting: make(map[string]bool)}

	out := make(map[string]*units.Quantity, len(names))
	derived := 0
	for _, name := range names {
		if _, hit := s.cache[name]; !hit {
			derived++
		}
		q, err := dc.Get(name)
		if err != nil {
			return nil, err
		}
		out[name] = q
	}

	if derived > 0 {
		s.logger.DebugContext(ctx, "quantities resolved",
			"requested", len(names),
			"derived", derived,
			"duration", time.Since(start),
		)
	}
	return out, nil
}

// Get resolves quantities under the store's active filter without
// forcing. This is the read-only surface handed to collaborators such
// as the validation checks.
func (s *Store) Get(ctx context.Context, names ...string) ([]*units.Quantity, error) {
	m, err := s.Resolve(ctx, names, s.activeFilter, false)
	if err != nil {
		return nil, err
	}
	out := make([]*units.Quantity, len(names))
	for i, name := range names {
		out[i] = m[name]
	}
	return out, nil
}

// resolveOne derives a single quantity, resolving prerequisites first.
// visiting tracks the in-progress derivation chain for cycle detection.
func (s *Store) resolveOne(ctx context.Context, name string, dc *deriveContext) (*units.Quantity, error) {
	if q, ok := s.cache[name]; ok {
		return q, nil
	}
	if dc.visiting[name] {
		return nil, apperrors.DependencyCycle(append(dc.chain, name))
	}

	rule, ok := s.rules[name]
	if !ok {
		// Anything without an explicit rule resolves as-is through the
		// name table; a name absent from both is unknown.
		if _, tabled := s.table.Lookup(name); !tabled {
			return nil, apperrors.UnknownQuantity(name)
		}
		rule = asIsRule(name)
	}

	dc.visiting[name] = true
	dc.chain = append(dc.chain, name)
	defer func() {
		delete(dc.visiting, name)
		dc.chain = dc.chain[:len(dc.chain)-1]
	}()

	for _, dep := range rule.Deps {
		if _, err := s.resolveOne(ctx, dep, dc); err != nil {
			return nil, err
		}
	}

	q, err := rule.Derive(dc)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", name, err)
	}
	s.cache[name] = q
	return q, nil
}

// deriveContext carries one resolve pass: the dataset subset, cycle
// tracking and access to the store's collaborators.
type deriveContext struct {
	ctx      context.Context
	store    *Store
	visiting map[string]bool
	chain    []string
}

// Get resolves a quantity within the current pass, participating in
// cycle detection. Rules use it for mode-dependent prerequisites that
// cannot be declared statically.
func (dc *deriveContext) Get(name string) (*units.Quantity, error) {
	return dc.store.resolveOne(dc.ctx, name, dc)
}

// Rows returns the row indices selected by the active filter.
func (dc *deriveContext) Rows() []int { return dc.store.rows }

// Column returns a raw column restricted to the active subset.
func (dc *deriveContext) Column(name string) ([]float64, error) {
	col, err := dc.store.ds.Column(name)
	if err != nil {
		return nil, err
	}
	return dataset.Gather(col, dc.store.rows), nil
}

// Lookup fetches the name-table entry for a quantity.
func (dc *deriveContext) Lookup(name string) (dataset.ColumnInfo, error) {
	info, ok := dc.store.table.Lookup(name)
	if !ok {
		return dataset.ColumnInfo{}, apperrors.MissingColumn(name)
	}
	return info, nil
}

// Unit resolves a unit name through the injected registry, mapping the
// table's empty cell to the dimensionless fraction.
func (dc *deriveContext) Unit(name string) (units.Unit, error) {
	if name == "" {
		name = "fraction"
	}
	return dc.store.registry.Lookup(name)
}

// Interval returns the dataset's fixed sampling interval.
func (dc *deriveContext) Interval() (time.Duration, error) {
	return dc.store.ds.Interval()
}

// Provider returns the thermophysical property provider.
func (dc *deriveContext) Provider() thermo.PropertyProvider {
	return dc.store.provider
}
