// Package secret resolves credentials referenced from configuration.
//
// Remote asset hosts sometimes require request headers carrying tokens.
// Configuration values may reference them instead of embedding them:
//
//	Authorization: "Bearer secretref:env:CDN_TOKEN"
//	X-Api-Key:     "secretref:file:cdn-key"
//
// Plain values still go through strict ${VAR} expansion (see ExpandEnvStrict).
package secret
