// Package resolver reconciles the competing extraction strategies for each
// product field under a fixed precedence: remembered selectors for the host,
// then the per-site override, then the generic heuristics. "Not found" is a
// first-class outcome carrying a per-field sentinel, never an error.
package resolver

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/money"
	"github.com/productlens/backend/pkg/logger"
)

type Field string

const (
	FieldTitle       Field = "title"
	FieldBrand       Field = "brand"
	FieldPrice       Field = "price"
	FieldDescription Field = "description"
	FieldImages      Field = "images"
)

// Fields lists every resolvable field in resolution order.
var Fields = []Field{FieldTitle, FieldBrand, FieldPrice, FieldDescription, FieldImages}

type Source string

const (
	SourceMemory   Source = "memory"
	SourceOverride Source = "site_override"
	SourceGeneric  Source = "generic"
)

const (
	TitleNotFound = "Title not found"
	PriceNotFound = "Price not found"
)

// StrategyResult is the normalized return shape for every strategy tier:
// a value (or image list) plus the selector descriptor that produced it,
// when one exists.
type StrategyResult struct {
	Value    string
	Images   []string
	Selector string
}

// FieldResolution is the outcome for one field. Source and Selector record
// which strategy satisfied the field; they are part of the value so that
// resolving independent fields shares no state.
type FieldResolution struct {
	Field    Field    `json:"field"`
	Value    string   `json:"value,omitempty"`
	Images   []string `json:"images,omitempty"`
	Found    bool     `json:"found"`
	Source   Source   `json:"source,omitempty"`
	Selector string   `json:"selector,omitempty"`
}

// MemoryEntry is one remembered extraction hint for a host and field.
type MemoryEntry struct {
	Selectors []string `json:"selectors"`
	Attr      string   `json:"attr"`
}

// MemoryReader supplies externally persisted per-host selector memory,
// read-only. A nil map or an error both mean "no memory".
type MemoryReader interface {
	GetMemory(ctx context.Context, host string) (map[Field]MemoryEntry, error)
}

// OverrideFunc is a per-site strategy for one string field. Returning an
// empty value or an error (or panicking) all mean the strategy found
// nothing.
type OverrideFunc func(ctx context.Context, doc page.Accessor) (string, error)

// ImagesOverrideFunc is the per-site strategy for the images field.
type ImagesOverrideFunc func(ctx context.Context, doc page.Accessor) ([]string, error)

// Bundle groups the override functions registered for one site. Any entry
// may be nil.
type Bundle struct {
	Title       OverrideFunc
	Brand       OverrideFunc
	Price       OverrideFunc
	Description OverrideFunc
	Images      ImagesOverrideFunc
}

// BundleResolver maps a host to its override bundle, first match wins.
type BundleResolver interface {
	ResolveHost(host string) *Bundle
}

// GenericStrategy is the always-present fallback tier.
type GenericStrategy interface {
	Extract(ctx context.Context, field Field, doc page.Accessor) (StrategyResult, error)
}

type Resolver struct {
	memory    MemoryReader
	overrides BundleResolver
	generic   GenericStrategy
	maxImages int
}

func New(memory MemoryReader, overrides BundleResolver, generic GenericStrategy, maxImages int) *Resolver {
	if maxImages <= 0 {
		maxImages = 20
	}
	return &Resolver{
		memory:    memory,
		overrides: overrides,
		generic:   generic,
		maxImages: maxImages,
	}
}

// Resolve runs the three tiers for one field in strict sequence. A later
// tier only runs once the earlier ones produced nothing that validates.
func (r *Resolver) Resolve(ctx context.Context, field Field, host string, doc page.Accessor) FieldResolution {
	if res, ok := r.tryMemory(ctx, field, host, doc); ok {
		return res
	}
	if res, ok := r.tryOverride(ctx, field, host, doc); ok {
		return res
	}
	if res, ok := r.tryGeneric(ctx, field, doc); ok {
		return res
	}

	return notFound(field)
}

// ResolveAll resolves every field. The fields have no data dependency on
// each other, so they run concurrently against the shared read-only page.
func (r *Resolver) ResolveAll(ctx context.Context, host string, doc page.Accessor) map[Field]FieldResolution {
	results := make(map[Field]FieldResolution, len(Fields))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, field := range Fields {
		wg.Add(1)
		go func(f Field) {
			defer wg.Done()
			res := r.Resolve(ctx, f, host, doc)
			mu.Lock()
			results[f] = res
			mu.Unlock()
		}(field)
	}

	wg.Wait()
	return results
}

func (r *Resolver) tryMemory(ctx context.Context, field Field, host string, doc page.Accessor) (FieldResolution, bool) {
	if r.memory == nil {
		return FieldResolution{}, false
	}

	entries, err := r.memory.GetMemory(ctx, host)
	if err != nil {
		logger.Warn("Selector memory unavailable",
			zap.String("host", host),
			zap.Error(err),
		)
		return FieldResolution{}, false
	}

	entry, ok := entries[field]
	if !ok {
		return FieldResolution{}, false
	}

	for _, selector := range entry.Selectors {
		result := extractWithSelector(doc, selector, entry.Attr, field == FieldImages)
		if res, ok := r.validate(field, SourceMemory, result); ok {
			return res, true
		}
	}

	return FieldResolution{}, false
}

func (r *Resolver) tryOverride(ctx context.Context, field Field, host string, doc page.Accessor) (FieldResolution, bool) {
	if r.overrides == nil {
		return FieldResolution{}, false
	}

	bundle := r.overrides.ResolveHost(host)
	if bundle == nil {
		return FieldResolution{}, false
	}

	result, err := runBundleField(ctx, bundle, field, doc)
	if err != nil {
		// A failing override is indistinguishable from "found nothing".
		logger.Debug("Site override failed",
			zap.String("host", host),
			zap.String("field", string(field)),
			zap.Error(err),
		)
		return FieldResolution{}, false
	}

	return r.validate(field, SourceOverride, result)
}

func (r *Resolver) tryGeneric(ctx context.Context, field Field, doc page.Accessor) (FieldResolution, bool) {
	if r.generic == nil {
		return FieldResolution{}, false
	}

	result, err := safeExtract(ctx, r.generic, field, doc)
	if err != nil {
		logger.Debug("Generic strategy failed",
			zap.String("field", string(field)),
			zap.Error(err),
		)
		return FieldResolution{}, false
	}

	return r.validate(field, SourceGeneric, result)
}

// validate applies the per-field validator and builds the resolution.
func (r *Resolver) validate(field Field, source Source, result StrategyResult) (FieldResolution, bool) {
	if field == FieldImages {
		images := r.validImages(result.Images)
		if len(images) == 0 {
			return FieldResolution{}, false
		}
		return FieldResolution{
			Field:    field,
			Images:   images,
			Found:    true,
			Source:   source,
			Selector: result.Selector,
		}, true
	}

	value := strings.TrimSpace(result.Value)
	if value == "" {
		return FieldResolution{}, false
	}

	if field == FieldPrice {
		normalized, ok := money.Normalize(value)
		if !ok {
			// Not money: the strategy found nothing usable.
			return FieldResolution{}, false
		}
		value = normalized
	}

	return FieldResolution{
		Field:    field,
		Value:    value,
		Found:    true,
		Source:   source,
		Selector: result.Selector,
	}, true
}

func notFound(field Field) FieldResolution {
	res := FieldResolution{Field: field}
	switch field {
	case FieldTitle:
		res.Value = TitleNotFound
	case FieldPrice:
		res.Value = PriceNotFound
	case FieldImages:
		res.Images = []string{}
	}
	return res
}

// extractWithSelector pulls a value for a remembered selector: the named
// attribute when one is stored, the text content otherwise.
func extractWithSelector(doc page.Accessor, selector, attr string, wantImages bool) StrategyResult {
	elements := doc.Query(selector)
	if len(elements) == 0 {
		return StrategyResult{}
	}

	if wantImages {
		if attr == "" {
			attr = "src"
		}
		var urls []string
		for _, el := range elements {
			if value, ok := el.Attr(attr); ok && value != "" {
				urls = append(urls, value)
			}
		}
		return StrategyResult{Images: urls, Selector: selector}
	}

	el := elements[0]
	if attr != "" && attr != "text" {
		value, _ := el.Attr(attr)
		return StrategyResult{Value: value, Selector: selector}
	}
	return StrategyResult{Value: el.Text(), Selector: selector}
}

// runBundleField invokes the override function for a field, converting
// panics into plain errors so a bad override can never take the pipeline
// down.
func runBundleField(ctx context.Context, bundle *Bundle, field Field, doc page.Accessor) (result StrategyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = StrategyResult{}
			err = recoveredError(r)
		}
	}()

	switch field {
	case FieldTitle:
		if bundle.Title != nil {
			value, ferr := bundle.Title(ctx, doc)
			return StrategyResult{Value: value}, ferr
		}
	case FieldBrand:
		if bundle.Brand != nil {
			value, ferr := bundle.Brand(ctx, doc)
			return StrategyResult{Value: value}, ferr
		}
	case FieldPrice:
		if bundle.Price != nil {
			value, ferr := bundle.Price(ctx, doc)
			return StrategyResult{Value: value}, ferr
		}
	case FieldDescription:
		if bundle.Description != nil {
			value, ferr := bundle.Description(ctx, doc)
			return StrategyResult{Value: value}, ferr
		}
	case FieldImages:
		if bundle.Images != nil {
			urls, ferr := bundle.Images(ctx, doc)
			return StrategyResult{Images: urls}, ferr
		}
	}

	return StrategyResult{}, nil
}

func safeExtract(ctx context.Context, strategy GenericStrategy, field Field, doc page.Accessor) (result StrategyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = StrategyResult{}
			err = recoveredError(r)
		}
	}()

	return strategy.Extract(ctx, field, doc)
}
