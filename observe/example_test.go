package observe_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/assetops/observe"
)

func ExampleBundleMeta_SpanName() {
	meta := observe.BundleMeta{Kind: "css", Entries: 3}
	fmt.Println(meta.SpanName())
	// Output: asset.optimize.css
}

func ExampleMiddleware_Run() {
	mw := observe.NopMiddleware()
	rec := mw.Run(context.Background(), observe.BundleMeta{Kind: "js"}, func(context.Context) observe.Record {
		return observe.Record{Outcome: observe.OutcomeHit, Fingerprint: "0f3a"}
	})
	fmt.Println(rec.Outcome, rec.Fingerprint)
	// Output: hit 0f3a
}
