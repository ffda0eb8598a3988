package sections

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

const (
	defaultLoadTimeout = 5 * time.Second
	defaultCacheSize   = 64
	preloadConcurrency = 4
)

// Loader produces the implementation of one (variant, mode) pair. It may block; ctx carries
// the factory load timeout.
type Loader func(ctx context.Context) (Component, error)

// ImplementationTable maps every variant and mode to its loader.
type ImplementationTable map[Variant]map[Mode]Loader

// FactoryOptions tunes loading and caching.
type FactoryOptions struct {
	LoadTimeout time.Duration
	CacheSize   int
}

// CacheStats reports how many implementations are cached per mode.
type CacheStats struct {
	Components int `json:"components"`
	Editors    int `json:"editors"`
	Previews   int `json:"previews"`
}

// PreloadReport lists the outcome of a preload batch keyed by "variant/mode".
type PreloadReport struct {
	Loaded []string          `json:"loaded"`
	Failed map[string]string `json:"failed,omitempty"`
}

// Factory resolves (variant, mode) pairs to implementations. Concurrent loads of the same
// uncached pair share one in-flight load; only successful loads are cached.
type Factory struct {
	registry *Registry
	table    ImplementationTable
	timeout  time.Duration
	caches   map[Mode]*lru.Cache[Variant, Component]
	inflight singleflight.Group
}

// NewFactory creates a factory that validates variants against registry.
func NewFactory(registry *Registry, table ImplementationTable, opts FactoryOptions) (*Factory, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	caches := make(map[Mode]*lru.Cache[Variant, Component], len(modes))
	for _, mode := range modes {
		cache, err := lru.New[Variant, Component](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s cache: %w", mode, err)
		}
		caches[mode] = cache
	}

	if table == nil {
		table = ImplementationTable{}
	}
	return &Factory{
		registry: registry,
		table:    table,
		timeout:  opts.LoadTimeout,
		caches:   caches,
	}, nil
}

// LoadComponent returns the storefront implementation of variant.
func (f *Factory) LoadComponent(ctx context.Context, variant Variant) (Component, error) {
	return f.Load(ctx, variant, ModeStorefront)
}

// LoadEditor returns the editor implementation of variant.
func (f *Factory) LoadEditor(ctx context.Context, variant Variant) (Component, error) {
	return f.Load(ctx, variant, ModeEditor)
}

// LoadPreview returns the preview implementation of variant.
func (f *Factory) LoadPreview(ctx context.Context, variant Variant) (Component, error) {
	return f.Load(ctx, variant, ModePreview)
}

// Load validates the variant, then returns the cached implementation or performs a shared
// load. Cancelling ctx abandons only this caller's wait; the shared load keeps running and
// still populates the cache.
func (f *Factory) Load(ctx context.Context, variant Variant, mode Mode) (Component, error) {
	if err := f.check(variant); err != nil {
		return nil, err
	}
	cache, ok := f.caches[mode]
	if !ok {
		return nil, fmt.Errorf("unknown render mode %q", mode)
	}
	if component, ok := cache.Get(variant); ok {
		return component, nil
	}

	ch := f.inflight.DoChan(string(variant)+"/"+string(mode), func() (interface{}, error) {
		return f.load(variant, mode, cache)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Component), nil
	}
}

func (f *Factory) check(variant Variant) error {
	if !variant.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	desc, ok := f.registry.Get(variant.TypeID())
	if !ok {
		return fmt.Errorf("%w: %q is not registered", ErrUnknownVariant, variant)
	}
	if !desc.IsActive {
		return fmt.Errorf("%w: %q", ErrInactiveVariant, variant)
	}
	return nil
}

type loadOutcome struct {
	component Component
	err       error
}

func (f *Factory) load(variant Variant, mode Mode, cache *lru.Cache[Variant, Component]) (Component, error) {
	if component, ok := cache.Get(variant); ok {
		return component, nil
	}

	started := time.Now()
	component, err := f.runLoader(variant, mode)
	recordLoad(variant, mode, started, err)
	if err != nil {
		loadErr := &LoadError{Variant: variant, Mode: mode, Err: err}
		logger.Error(err, "Failed to load section implementation", map[string]interface{}{
			"variant": variant,
			"mode":    mode,
		})
		return nil, loadErr
	}

	cache.Add(variant, component)
	return component, nil
}

func (f *Factory) runLoader(variant Variant, mode Mode) (Component, error) {
	loader := f.table[variant][mode]
	if loader == nil {
		return nil, errNoImplementation
	}

	// Detached from caller contexts; only the factory timeout bounds it.
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	done := make(chan loadOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- loadOutcome{err: fmt.Errorf("loader panicked: %v", r)}
			}
		}()
		component, err := loader(ctx)
		done <- loadOutcome{component: component, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.component == nil {
			return nil, errNilComponent
		}
		return out.component, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load timed out after %s: %w", f.timeout, ctx.Err())
	}
}

// Preload warms the caches for variants in the given modes (all modes when none are given).
// Individual failures are reported and never abort the batch.
func (f *Factory) Preload(ctx context.Context, variants []Variant, preloadModes ...Mode) PreloadReport {
	if len(preloadModes) == 0 {
		preloadModes = modes
	}

	var (
		mu     sync.Mutex
		report = PreloadReport{Loaded: []string{}, Failed: map[string]string{}}
	)

	g := new(errgroup.Group)
	g.SetLimit(preloadConcurrency)
	for _, variant := range variants {
		for _, mode := range preloadModes {
			g.Go(func() error {
				key := string(variant) + "/" + string(mode)
				_, err := f.Load(ctx, variant, mode)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed[key] = err.Error()
				} else {
					report.Loaded = append(report.Loaded, key)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	sort.Strings(report.Loaded)

	if len(report.Failed) > 0 {
		logger.Warn("Section preload finished with failures", map[string]interface{}{
			"loaded": len(report.Loaded),
			"failed": len(report.Failed),
		})
	}
	return report
}

// CacheStats returns the number of cached implementations per mode.
func (f *Factory) CacheStats() CacheStats {
	return CacheStats{
		Components: f.caches[ModeStorefront].Len(),
		Editors:    f.caches[ModeEditor].Len(),
		Previews:   f.caches[ModePreview].Len(),
	}
}

// IsCached reports whether the implementation for (variant, mode) is cached.
func (f *Factory) IsCached(variant Variant, mode Mode) bool {
	cache, ok := f.caches[mode]
	if !ok {
		return false
	}
	return cache.Contains(variant)
}

// Evict drops every cached implementation of variant, e.g. after it is deactivated.
func (f *Factory) Evict(variant Variant) {
	for _, cache := range f.caches {
		cache.Remove(variant)
	}
}

// ClearCache drops every cached implementation.
func (f *Factory) ClearCache() {
	for _, cache := range f.caches {
		cache.Purge()
	}
}
