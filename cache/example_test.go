package cache_test

import (
	"fmt"
	"time"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/cache"
)

func ExampleDefaultFingerprinter() {
	f := cache.NewDefaultFingerprinter(nil)
	cfg := asset.DefaultConfig("/srv/www")
	g := asset.Group{
		{ID: "/css/a.css", Kind: asset.KindStyle},
		{ID: "/css/b.css", Kind: asset.KindStyle},
	}

	first, _ := f.Fingerprint(asset.KindStyle, g, cfg)
	second, _ := f.Fingerprint(asset.KindStyle, g, cfg)
	fmt.Println("Stable:", first == second)
	fmt.Println("Length:", len(first))
	// Output:
	// Stable: true
	// Length: 32
}

func ExampleMemoryStore_PublicReference() {
	s := cache.NewMemoryStore("https://static.example.com/assets")
	b := cache.Bundle{
		Fingerprint: "5d41402abc4b2a76b9719d911017c592",
		Kind:        asset.KindScript,
		ModTime:     time.Unix(1700000000, 0),
	}
	fmt.Println(s.PublicReference(b))
	// Output:
	// https://static.example.com/assets/js-compress/5d41402abc4b2a76b9719d911017c592.js?v=1700000000
}

func ExampleRetentionPolicy_Expired() {
	policy := cache.RetentionPolicy{MaxAge: 24 * time.Hour}
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	fmt.Println(policy.Expired(now.Add(-time.Hour), now))
	fmt.Println(policy.Expired(now.Add(-48*time.Hour), now))
	// Output:
	// false
	// true
}
