package config

import (
	"github.com/jonwraymond/assetops/cache"
	"github.com/jonwraymond/assetops/observe"
	"github.com/jonwraymond/assetops/optimizer"
	"github.com/jonwraymond/assetops/source"
)

// NewFileStore creates the configured bundle store.
func (c *Config) NewFileStore() (*cache.FileStore, error) {
	return cache.NewFileStore(c.FileStoreConfig())
}

// Reader returns a reader for local files under the webroot and remote URLs.
func (c *Config) Reader() source.Reader {
	return source.NewComposite(
		source.NewLocalReader(c.Asset.Webroot),
		source.NewRemoteReader(c.RemoteReaderConfig()),
	)
}

// Fingerprinter returns the fingerprinter with the configured salt.
func (c *Config) Fingerprinter() cache.Fingerprinter {
	var salt map[string]any
	if len(c.Engine.FingerprintSalt) > 0 {
		salt = make(map[string]any, len(c.Engine.FingerprintSalt))
		for k, v := range c.Engine.FingerprintSalt {
			salt[k] = v
		}
	}
	return cache.NewDefaultFingerprinter(salt)
}

// NewEngine creates an engine writing to store and instrumented by mw.
func (c *Config) NewEngine(store cache.Store, mw *observe.Middleware) (*optimizer.Engine, error) {
	opts := []optimizer.Option{
		optimizer.WithReader(c.Reader()),
		optimizer.WithFingerprinter(c.Fingerprinter()),
		optimizer.WithMiddleware(mw),
		optimizer.WithFetchConcurrency(c.Engine.FetchConcurrency),
	}
	if c.Engine.SingleFlight {
		opts = append(opts, optimizer.WithSingleFlight())
	}
	return optimizer.NewEngine(c.Asset, store, opts...)
}
