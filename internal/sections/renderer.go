package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

const defaultPrefix = "section"

// RenderState is the terminal state of a render request.
type RenderState string

const (
	StateRendered RenderState = "rendered"
	StateFallback RenderState = "fallback"
)

// FallbackReason explains why a render degraded to a placeholder.
type FallbackReason string

const (
	ReasonUnknownType   FallbackReason = "unknown_type"
	ReasonInactiveType  FallbackReason = "inactive_type"
	ReasonUnavailable   FallbackReason = "variant_unavailable"
	ReasonLoadFailure   FallbackReason = "load_failure"
	ReasonRenderFailure FallbackReason = "render_failure"
	ReasonCanceled      FallbackReason = "canceled"
)

// RenderRequest describes one section to render.
type RenderRequest struct {
	InstanceID string
	TypeID     string
	Properties models.Properties
	Mode       Mode
	// OnSave and OnCancel are wired through in editor mode only.
	OnSave   func(models.Properties) error
	OnCancel func()
}

// RenderResult is the outcome of a render request. Fallback results carry Reason and, for
// failures, Err.
type RenderResult struct {
	InstanceID string         `json:"instance_id,omitempty"`
	TypeID     string         `json:"type_id"`
	Mode       Mode           `json:"mode"`
	State      RenderState    `json:"state"`
	Reason     FallbackReason `json:"reason,omitempty"`
	Message    string         `json:"message,omitempty"`
	HTML       string         `json:"html"`
	Scripts    []string       `json:"scripts,omitempty"`
	Err        error          `json:"-"`

	schema   *EditorSchema
	onSave   func(models.Properties) error
	onCancel func()
}

// Save validates props against the section schema and hands them to the OnSave callback.
func (r *RenderResult) Save(props models.Properties) error {
	if r.Mode != ModeEditor || r.State != StateRendered {
		return fmt.Errorf("section %s is not open in the editor", r.TypeID)
	}
	if r.schema != nil {
		if errs := r.schema.Validate(props); len(errs) > 0 {
			return &SchemaError{TypeID: r.TypeID, Errors: errs}
		}
	}
	if r.onSave == nil {
		return nil
	}
	return r.onSave(props.Clone())
}

// Cancel invokes the OnCancel callback, if any.
func (r *RenderResult) Cancel() {
	if r.onCancel != nil {
		r.onCancel()
	}
}

// PendingRender is a render in progress. Skeleton is available immediately; Result blocks
// until the section has been loaded and rendered or has fallen back.
type PendingRender struct {
	skeleton string
	done     chan struct{}
	result   *RenderResult
}

func (p *PendingRender) Skeleton() string {
	return p.skeleton
}

func (p *PendingRender) Done() <-chan struct{} {
	return p.done
}

func (p *PendingRender) Result() *RenderResult {
	<-p.done
	return p.result
}

// Renderer dispatches a section to the implementation for a mode and degrades gracefully
// when the type is unknown, inactive, or fails to load or render.
type Renderer struct {
	registry *Registry
	factory  *Factory
	ctx      RenderContext
	prefix   string
}

// NewRenderer creates a renderer. Variant families are loaded through factory; legacy types
// use their compiled-in implementations.
func NewRenderer(registry *Registry, factory *Factory, rc RenderContext) *Renderer {
	return &Renderer{
		registry: registry,
		factory:  factory,
		ctx:      rc,
		prefix:   defaultPrefix,
	}
}

type resolution struct {
	desc    Descriptor
	variant Variant
}

// Start resolves the request synchronously and loads the implementation in the background.
// Cancelling ctx abandons the request; a shared load still completes for later renders.
func (r *Renderer) Start(ctx context.Context, req RenderRequest) *PendingRender {
	if mode, ok := ParseMode(string(req.Mode)); ok {
		req.Mode = mode
	}
	pending := &PendingRender{
		skeleton: r.skeleton(req),
		done:     make(chan struct{}),
	}

	res, fallback := r.resolve(req)
	if fallback != nil {
		pending.result = fallback
		close(pending.done)
		return pending
	}

	if !res.desc.IsVariant() && req.Mode == ModeStorefront {
		if component, ok := legacyImplementation(res.desc.ID, ModeStorefront); ok {
			pending.result = r.renderWith(req, res, component)
			close(pending.done)
			return pending
		}
	}

	go func() {
		defer close(pending.done)
		component, err := r.load(ctx, req.Mode, res)
		if err != nil {
			pending.result = r.loadFallback(ctx, req, res, err)
			return
		}
		pending.result = r.renderWith(req, res, component)
	}()
	return pending
}

// Render blocks until the section has been rendered or has fallen back.
func (r *Renderer) Render(ctx context.Context, req RenderRequest) *RenderResult {
	return r.Start(ctx, req).Result()
}

func (r *Renderer) resolve(req RenderRequest) (resolution, *RenderResult) {
	if _, ok := ParseMode(string(req.Mode)); !ok {
		return resolution{}, &RenderResult{
			TypeID: req.TypeID, Mode: req.Mode, State: StateFallback,
			Err: fmt.Errorf("unknown render mode %q", req.Mode),
		}
	}

	typeID := normaliseTypeID(req.TypeID)
	if variant, isFamily, valid := ParseVariantID(typeID); isFamily {
		if !valid {
			return resolution{}, r.fallback(req, Descriptor{ID: typeID}, ReasonUnavailable,
				fmt.Errorf("%w: %q", ErrUnknownVariant, variant))
		}
		desc, ok := r.registry.Get(typeID)
		if !ok {
			return resolution{}, r.fallback(req, Descriptor{ID: typeID}, ReasonUnavailable,
				fmt.Errorf("%w: %q is not registered", ErrUnknownVariant, variant))
		}
		if !desc.IsActive {
			return resolution{}, r.fallback(req, desc, ReasonUnavailable,
				fmt.Errorf("%w: %q", ErrInactiveVariant, variant))
		}
		return resolution{desc: desc, variant: variant}, nil
	}

	desc, ok := r.registry.Get(typeID)
	if !ok {
		return resolution{}, r.fallback(req, Descriptor{ID: typeID}, ReasonUnknownType,
			fmt.Errorf("%w: %q", ErrUnknownType, typeID))
	}
	if !desc.IsActive {
		return resolution{}, r.fallback(req, desc, ReasonInactiveType,
			fmt.Errorf("section type %q is inactive", typeID))
	}
	return resolution{desc: desc}, nil
}

func (r *Renderer) load(ctx context.Context, mode Mode, res resolution) (Component, error) {
	if res.desc.IsVariant() {
		if r.factory == nil {
			return nil, &LoadError{Variant: res.variant, Mode: mode, Err: errNoImplementation}
		}
		return r.factory.Load(ctx, res.variant, mode)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	component, ok := legacyImplementation(res.desc.ID, mode)
	if !ok {
		return nil, &LoadError{Mode: mode, Err: fmt.Errorf("%w for %s", errNoImplementation, res.desc.ID)}
	}
	return component, nil
}

func (r *Renderer) loadFallback(ctx context.Context, req RenderRequest, res resolution, err error) *RenderResult {
	if ctx.Err() != nil && !errors.Is(err, ErrLoadFailure) {
		return r.fallback(req, res.desc, ReasonCanceled, err)
	}
	switch {
	case errors.Is(err, ErrUnknownVariant), errors.Is(err, ErrInactiveVariant):
		return r.fallback(req, res.desc, ReasonUnavailable, err)
	default:
		return r.fallback(req, res.desc, ReasonLoadFailure, err)
	}
}

func (r *Renderer) renderWith(req RenderRequest, res resolution, component Component) (result *RenderResult) {
	props := req.Properties
	if props == nil {
		props = models.Properties{}
	}

	var schema *EditorSchema
	if req.Mode == ModeEditor {
		schema = SchemaFor(res.desc.ID)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = r.fallback(req, res.desc, ReasonRenderFailure, fmt.Errorf("render panicked: %v", rec))
		}
	}()

	html, scripts := component.Render(r.ctx, RenderInput{
		InstanceID:  req.InstanceID,
		TypeID:      res.desc.ID,
		DisplayName: res.desc.DisplayName,
		Prefix:      r.prefix,
		Properties:  props,
		Schema:      schema,
	})

	result = &RenderResult{
		InstanceID: req.InstanceID,
		TypeID:     res.desc.ID,
		Mode:       req.Mode,
		State:      StateRendered,
		HTML:       html,
		Scripts:    scripts,
		schema:     schema,
	}
	if req.Mode == ModeEditor {
		result.onSave = req.OnSave
		result.onCancel = req.OnCancel
	}
	return result
}

func (r *Renderer) fallback(req RenderRequest, desc Descriptor, reason FallbackReason, err error) *RenderResult {
	message := fallbackMessage(desc, reason)
	result := &RenderResult{
		InstanceID: req.InstanceID,
		TypeID:     normaliseTypeID(req.TypeID),
		Mode:       req.Mode,
		State:      StateFallback,
		Reason:     reason,
		Message:    message,
		Err:        err,
	}

	fields := map[string]interface{}{
		"section_type": result.TypeID,
		"mode":         req.Mode,
		"reason":       reason,
	}
	switch reason {
	case ReasonLoadFailure, ReasonRenderFailure:
		logger.Error(err, "Section render fell back to placeholder", fields)
	case ReasonCanceled:
	default:
		logger.Debug("Section render fell back to placeholder", fields)
	}
	recordFallback(req.Mode, reason)

	switch req.Mode {
	case ModeStorefront:
		result.HTML = r.storefrontFallback(desc, reason)
	case ModeEditor:
		result.HTML = r.editorNotice(reason, message)
	default:
		result.HTML = r.previewPlaceholder(desc, reason, message)
	}
	return result
}

func fallbackMessage(desc Descriptor, reason FallbackReason) string {
	name := desc.DisplayName
	if name == "" {
		name = desc.ID
	}
	switch reason {
	case ReasonUnknownType:
		return fmt.Sprintf("Unknown section type %q. It may have been removed.", desc.ID)
	case ReasonInactiveType:
		return fmt.Sprintf("The %q section is currently disabled.", name)
	case ReasonUnavailable:
		return fmt.Sprintf("The variant %q is not available.", name)
	case ReasonLoadFailure:
		return fmt.Sprintf("The %q section could not be loaded. Try again later.", name)
	case ReasonRenderFailure:
		return fmt.Sprintf("The %q section failed to render. Check its settings.", name)
	case ReasonCanceled:
		return "Rendering was cancelled."
	default:
		return "This section cannot be displayed."
	}
}

// storefrontFallback never exposes error text: unresolvable sections render nothing and
// broken ones a neutral metadata card.
func (r *Renderer) storefrontFallback(desc Descriptor, reason FallbackReason) string {
	if reason != ReasonLoadFailure && reason != ReasonRenderFailure {
		return ""
	}
	if desc.DisplayName == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div class="` + className(r.prefix, "card") + `" data-section-type="` + escape(desc.ID) + `">`)
	if desc.Icon != "" {
		sb.WriteString(`<span class="` + className(r.prefix, "card-icon") + `" data-icon="` + escape(desc.Icon) + `"></span>`)
	}
	sb.WriteString(`<h3 class="` + className(r.prefix, "card-title") + `">` + escape(desc.DisplayName) + `</h3>`)
	if desc.Description != "" {
		sb.WriteString(`<p class="` + className(r.prefix, "card-text") + `">` + escape(desc.Description) + `</p>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func (r *Renderer) editorNotice(reason FallbackReason, message string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="` + className(r.prefix, "notice") + " " + className(r.prefix, "notice--"+string(reason)) + `" role="alert">`)
	sb.WriteString(`<p class="` + className(r.prefix, "notice-text") + `">` + escape(message) + `</p>`)
	sb.WriteString(`<button type="button" class="` + className(r.prefix, "notice-close") + `" data-action="dismiss" aria-label="Dismiss">&times;</button>`)
	sb.WriteString(`</div>`)
	return sb.String()
}

func (r *Renderer) previewPlaceholder(desc Descriptor, reason FallbackReason, message string) string {
	label := desc.DisplayName
	if label == "" {
		label = desc.ID
	}
	var sb strings.Builder
	sb.WriteString(`<div class="` + className(r.prefix, "placeholder") + " " + className(r.prefix, "placeholder--"+string(reason)) + `">`)
	sb.WriteString(`<span class="` + className(r.prefix, "placeholder-label") + `">` + escape(label) + `</span>`)
	sb.WriteString(`<p class="` + className(r.prefix, "placeholder-text") + `">` + escape(message) + `</p>`)
	sb.WriteString(`</div>`)
	return sb.String()
}

func (r *Renderer) skeleton(req RenderRequest) string {
	return `<div class="` + className(r.prefix, "skeleton") + `" data-section-id="` + escape(req.InstanceID) +
		`" aria-busy="true"><div class="` + className(r.prefix, "skeleton-pulse") + `"></div></div>`
}

// PageResult is a rendered page: the concatenated output in section order plus the
// per-section results.
type PageResult struct {
	HTML     string          `json:"html"`
	Scripts  []string        `json:"scripts"`
	Sections []*RenderResult `json:"sections"`
}

// RenderPage renders instances concurrently and assembles them in order. A failing section
// never affects its siblings.
func (r *Renderer) RenderPage(ctx context.Context, instances []models.SectionInstance, mode Mode, concurrency int) (*PageResult, error) {
	ordered := append([]models.SectionInstance(nil), instances...)
	models.SortSectionInstances(ordered)

	results := make([]*RenderResult, len(ordered))
	g := new(errgroup.Group)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, instance := range ordered {
		g.Go(func() error {
			results[i] = r.Render(ctx, RenderRequest{
				InstanceID: instance.ID,
				TypeID:     instance.TypeID,
				Properties: instance.Properties,
				Mode:       mode,
			})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := &PageResult{Scripts: []string{}, Sections: results}
	var sb strings.Builder
	seen := make(map[string]struct{})
	for _, result := range results {
		sb.WriteString(result.HTML)
		for _, script := range result.Scripts {
			if _, ok := seen[script]; ok {
				continue
			}
			seen[script] = struct{}{}
			page.Scripts = append(page.Scripts, script)
		}
	}
	page.HTML = sb.String()
	return page, nil
}
