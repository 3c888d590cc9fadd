// Package optimizer combines, minifies and caches groups of page assets.
//
// An Engine takes an ordered group of style or script references and returns
// a replacement list in which every mergeable asset is collapsed into one
// versioned bundle URL. Assets that cannot be merged keep their position
// relative to each other and their original markup.
//
// The engine never fails a page: any error while fingerprinting, reading
// sources or writing the bundle makes it return the group exactly as given,
// and the failure is reported through observe.
//
//	engine, err := optimizer.NewEngine(cfg, store,
//	    optimizer.WithMiddleware(mw),
//	    optimizer.WithSingleFlight(),
//	)
//	entries := engine.OptimizeGroup(ctx, asset.KindStyle, styles)
package optimizer
