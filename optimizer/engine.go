package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/cache"
	"github.com/jonwraymond/assetops/minifier"
	"github.com/jonwraymond/assetops/observe"
	"github.com/jonwraymond/assetops/source"
)

// Components named in fallback logs and metrics.
const (
	ComponentFingerprint = "fingerprint"
	ComponentStore       = "store"
	ComponentSource      = "source"
	ComponentMinifier    = "minifier"
)

// Separators placed between concatenated assets.
const (
	StyleSeparator  = "\n"
	ScriptSeparator = ";\n"
)

// Separator returns the join string for kind.
func Separator(kind asset.Kind) string {
	if kind == asset.KindScript {
		return ScriptSeparator
	}
	return StyleSeparator
}

// Engine bundles asset groups. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	cfg              asset.Config
	store            cache.Store
	reader           source.Reader
	minifier         minifier.Minifier
	fingerprinter    cache.Fingerprinter
	mw               *observe.Middleware
	flight           *singleflight.Group
	fetchConcurrency int
}

// NewEngine creates an engine. cfg is validated and must not change afterwards.
func NewEngine(cfg asset.Config, store cache.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, cache.ErrNilStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	e := &Engine{
		cfg:   cfg,
		store: store,
		reader: source.NewComposite(
			source.NewLocalReader(cfg.Webroot),
			source.NewRemoteReader(source.RemoteConfig{Timeout: cfg.ReadTimeout}),
		),
		minifier:      minifier.New(),
		fingerprinter: cache.NewDefaultFingerprinter(nil),
		mw:            observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() asset.Config {
	return e.cfg
}

// OptimizeGroup returns the replacement list for group.
//
// When combining is disabled for kind, or the group is empty, the group is
// returned unchanged. Otherwise every mergeable reference is replaced by a
// single bundle entry appended after the references that pass through.
// Any failure returns the group unchanged.
func (e *Engine) OptimizeGroup(ctx context.Context, kind asset.Kind, group asset.Group) []asset.Entry {
	return e.optimizeGroup(ctx, kind, "", group)
}

func (e *Engine) optimizeGroup(ctx context.Context, kind asset.Kind, position string, group asset.Group) []asset.Entry {
	if len(group) == 0 || !e.cfg.For(kind).Combine {
		return group.Entries()
	}
	// References take the kind of the group they were registered in.
	group = group.WithKind(kind)

	meta := observe.BundleMeta{Kind: kind.String(), Position: position, Entries: len(group)}
	var out []asset.Entry
	e.mw.Run(ctx, meta, func(ctx context.Context) observe.Record {
		entries, rec := e.pass(ctx, kind, meta, group)
		if rec.Outcome == observe.OutcomeFallback {
			entries = group.Entries()
		}
		out = entries
		return rec
	})
	return out
}

// componentError tags a failure with the component that caused it.
type componentError struct {
	component string
	err       error
}

func (e *componentError) Error() string { return e.component + ": " + e.err.Error() }
func (e *componentError) Unwrap() error { return e.err }

func fallback(err error) observe.Record {
	rec := observe.Record{Outcome: observe.OutcomeFallback, Err: err}
	var ce *componentError
	if errors.As(err, &ce) {
		rec.Component = ce.component
		rec.Err = ce.err
	}
	return rec
}

func (e *Engine) pass(ctx context.Context, kind asset.Kind, meta observe.BundleMeta, group asset.Group) ([]asset.Entry, observe.Record) {
	fp, err := e.fingerprinter.Fingerprint(kind, group, e.cfg)
	if err != nil {
		return nil, fallback(&componentError{ComponentFingerprint, err})
	}

	b, ok, err := e.store.Lookup(ctx, fp, kind)
	if err != nil {
		return nil, fallback(&componentError{ComponentStore, err})
	}

	merge, keep := e.partition(kind, group)
	if ok {
		return e.assemble(kind, keep, b), observe.Record{Outcome: observe.OutcomeHit, Fingerprint: fp}
	}
	if len(merge) == 0 {
		return group.Entries(), observe.Record{Outcome: observe.OutcomePassThrough, Fingerprint: fp}
	}

	meta.Fingerprint = fp
	b, built, err := e.buildOnce(ctx, kind, meta, fp, merge)
	if err != nil {
		rec := fallback(err)
		rec.Fingerprint = fp
		return nil, rec
	}

	rec := observe.Record{Outcome: observe.OutcomeBuilt, Fingerprint: fp, Bytes: len(b.Content)}
	if !built {
		rec.Outcome = observe.OutcomeHit
	}
	return e.assemble(kind, keep, b), rec
}

// partition splits group into references merged into the bundle and
// references passed through with their original tag.
func (e *Engine) partition(kind asset.Kind, group asset.Group) (merge, keep asset.Group) {
	remote := e.cfg.For(kind).RemoteEnable
	for _, ref := range group {
		if remote || ref.IsLocal() {
			merge = append(merge, ref)
		} else {
			keep = append(keep, ref)
		}
	}
	return merge, keep
}

func (e *Engine) assemble(kind asset.Kind, keep asset.Group, b cache.Bundle) []asset.Entry {
	out := make([]asset.Entry, 0, len(keep)+1)
	out = append(out, keep.Entries()...)
	url := e.store.PublicReference(b)
	return append(out, asset.Entry{ID: url, Tag: asset.RenderTag(kind, url)})
}

// buildOnce builds the bundle, sharing the work with concurrent callers
// when single-flight is enabled. built is false when another pass wrote
// the bundle first.
func (e *Engine) buildOnce(ctx context.Context, kind asset.Kind, meta observe.BundleMeta, fp string, merge asset.Group) (cache.Bundle, bool, error) {
	if e.flight == nil {
		b, err := e.build(ctx, kind, meta, fp, merge)
		return b, err == nil, err
	}

	type result struct {
		bundle cache.Bundle
		built  bool
	}
	leader := false
	v, err, _ := e.flight.Do(cache.FileName(fp, kind), func() (any, error) {
		leader = true
		// A flight that finished between our Lookup and Do already wrote it.
		if b, ok, err := e.store.Lookup(ctx, fp, kind); err == nil && ok {
			return result{bundle: b}, nil
		}
		b, err := e.build(ctx, kind, meta, fp, merge)
		if err != nil {
			return nil, err
		}
		return result{bundle: b, built: true}, nil
	})
	if err != nil {
		return cache.Bundle{}, false, err
	}
	r := v.(result)
	return r.bundle, r.built && leader, nil
}

func (e *Engine) build(ctx context.Context, kind asset.Kind, meta observe.BundleMeta, fp string, merge asset.Group) (cache.Bundle, error) {
	raw, err := e.readAll(ctx, merge)
	if err != nil {
		return cache.Bundle{}, &componentError{ComponentSource, err}
	}

	parts := make([]string, len(merge))
	for i, ref := range merge {
		res := minifier.Apply(e.minifier, ref, string(raw[i]), e.cfg)
		if res.Err != nil {
			e.mw.Logger().WithBundle(meta).Warn(ctx, "minification failed, using original text",
				observe.Field{Key: "component", Value: ComponentMinifier},
				observe.Field{Key: "asset", Value: ref.ID},
				observe.Field{Key: "error", Value: res.Err.Error()},
			)
		}
		parts[i] = res.Text
	}
	content := strings.Join(parts, Separator(kind))

	b, err := e.store.Write(ctx, fp, kind, []byte(content))
	if err != nil {
		return cache.Bundle{}, &componentError{ComponentStore, err}
	}
	return b, nil
}

// readAll reads every reference, stopping at the first failure.
func (e *Engine) readAll(ctx context.Context, refs asset.Group) ([][]byte, error) {
	out := make([][]byte, len(refs))
	if e.fetchConcurrency <= 1 {
		for i, ref := range refs {
			data, err := e.reader.Read(ctx, ref)
			if err != nil {
				return nil, err
			}
			out[i] = data
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			data, err := e.reader.Read(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
