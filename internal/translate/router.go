package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-discovery-service/internal/observability"
	"github.com/kjstillabower/travel-discovery-service/internal/provider"
)

const (
	// DefaultSource is assumed when the caller does not name a source language.
	DefaultSource = "en"
	// DefaultTarget is assumed when the caller does not name a target language.
	DefaultTarget = "vi"

	DefaultModelENVI = "Helsinki-NLP/opus-mt-en-vi"
	DefaultModelVIEN = "Helsinki-NLP/opus-mt-vi-en"
)

// Direction is a (source, target) language pair.
type Direction struct {
	Source string
	Target string
}

func (d Direction) String() string {
	return d.Source + "-" + d.Target
}

var (
	EnglishToVietnamese = Direction{Source: "en", Target: "vi"}
	VietnameseToEnglish = Direction{Source: "vi", Target: "en"}
)

// Backend performs one translation call and returns the raw provider body.
type Backend interface {
	Translate(ctx context.Context, text string) ([]byte, error)
}

// BackendFactory creates the backend for a model identifier.
type BackendFactory func(model string) (Backend, error)

// Translator translates short text between languages. Any failure wraps
// provider.ErrTranslationFailed; untranslated input is never returned as a result.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Models names the model used for each supported direction.
type Models struct {
	ENVI string
	VIEN string
}

type handle struct {
	mu      sync.Mutex
	model   string
	backend Backend
}

// Router selects a backend per language direction. Backends are created on first
// use and reused afterwards; a failed creation is retried by the next call.
type Router struct {
	factory BackendFactory
	handles map[Direction]*handle
}

// NewRouter returns a Router over the two supported directions. Empty model
// names fall back to the Helsinki-NLP defaults.
func NewRouter(factory BackendFactory, models Models) *Router {
	if models.ENVI == "" {
		models.ENVI = DefaultModelENVI
	}
	if models.VIEN == "" {
		models.VIEN = DefaultModelVIEN
	}
	return &Router{
		factory: factory,
		handles: map[Direction]*handle{
			EnglishToVietnamese: {model: models.ENVI},
			VietnameseToEnglish: {model: models.VIEN},
		},
	}
}

// Route returns the direction used for a language pair. Empty codes default to
// en and vi; pairs outside the table use the en-vi entry.
func (r *Router) Route(source, target string) Direction {
	d := Direction{Source: normalizeLang(source, DefaultSource), Target: normalizeLang(target, DefaultTarget)}
	if _, ok := r.handles[d]; ok {
		return d
	}
	return EnglishToVietnamese
}

// Model returns the model identifier configured for d's table entry.
func (r *Router) Model(d Direction) string {
	return r.handles[r.Route(d.Source, d.Target)].model
}

// Translate implements Translator.
func (r *Router) Translate(ctx context.Context, text, source, target string) (string, error) {
	logger := observability.LoggerFromContext(ctx)
	requested := Direction{Source: normalizeLang(source, DefaultSource), Target: normalizeLang(target, DefaultTarget)}
	d := r.Route(source, target)
	if d != requested {
		logger.Debug("unsupported language pair, using default direction",
			zap.Stringer("requested", requested), zap.Stringer("direction", d))
	}

	if strings.TrimSpace(text) == "" {
		observability.TranslationRequestsTotal.WithLabelValues(d.String(), "failed").Inc()
		return "", fmt.Errorf("%w: %w: empty input", provider.ErrTranslationFailed, provider.ErrEmptyResult)
	}

	out, err := r.translate(ctx, d, text)
	if err != nil {
		observability.TranslationRequestsTotal.WithLabelValues(d.String(), "failed").Inc()
		logger.Debug("translation failed",
			zap.Stringer("direction", d),
			zap.String("model", r.Model(d)),
			zap.String("category", string(provider.CategorizeError(err))),
			zap.Error(err))
		return "", err
	}
	observability.TranslationRequestsTotal.WithLabelValues(d.String(), "success").Inc()
	return out, nil
}

func (r *Router) translate(ctx context.Context, d Direction, text string) (string, error) {
	backend, err := r.backend(d)
	if err != nil {
		return "", err
	}
	raw, err := backend.Translate(ctx, text)
	if err != nil {
		if errors.Is(err, provider.ErrTranslationFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", provider.ErrTranslationFailed, d, err)
	}
	return Normalize(raw)
}

func (r *Router) backend(d Direction) (Backend, error) {
	h := r.handles[d]
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.backend != nil {
		return h.backend, nil
	}
	b, err := r.factory(h.model)
	if err != nil {
		return nil, fmt.Errorf("%w: init %s backend %q: %w", provider.ErrTranslationFailed, d, h.model, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: init %s backend %q: factory returned nil", provider.ErrTranslationFailed, d, h.model)
	}
	observability.TranslationBackendInitsTotal.WithLabelValues(d.String()).Inc()
	h.backend = b
	return b, nil
}

func normalizeLang(code, def string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return def
	}
	return code
}
