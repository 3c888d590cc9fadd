package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/assetops/asset"
)

// ErrEmptyManifest is returned for a manifest without groups.
var ErrEmptyManifest = errors.New("config: manifest has no groups")

// Manifest lists asset groups to build ahead of traffic.
//
//	groups:
//	  - kind: css
//	    assets: [css/site.css, css/theme.css]
//	  - kind: js
//	    position: end
//	    assets:
//	      - js/app.js
//	      - id: https://cdn.example.com/lib.js
//	        tag: <script src="https://cdn.example.com/lib.js" defer></script>
type Manifest struct {
	Groups []ManifestGroup `yaml:"groups"`
}

// ManifestGroup is one group of a manifest.
type ManifestGroup struct {
	Kind     string          `yaml:"kind"`
	Position string          `yaml:"position"`
	Assets   []ManifestAsset `yaml:"assets"`
}

// ManifestAsset is an identifier with an optional tag. A plain string is
// accepted as an identifier.
type ManifestAsset struct {
	ID  string `yaml:"id"`
	Tag string `yaml:"tag"`
}

// UnmarshalYAML accepts both scalar and mapping forms.
func (a *ManifestAsset) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.ID = node.Value
		return nil
	}
	type plain ManifestAsset
	return node.Decode((*plain)(a))
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if len(m.Groups) == 0 {
		return nil, fmt.Errorf("config: %s: %w", path, ErrEmptyManifest)
	}
	return &m, nil
}

// Group converts the manifest group into an asset group.
func (g ManifestGroup) Group() (asset.Kind, asset.Group, error) {
	kind, err := asset.ParseKind(g.Kind)
	if err != nil {
		return 0, nil, err
	}
	out := make(asset.Group, 0, len(g.Assets))
	for i, a := range g.Assets {
		ref, err := asset.NewReference(kind, a.ID, a.Tag)
		if err != nil {
			return 0, nil, fmt.Errorf("asset %d: %w", i, err)
		}
		out = append(out, ref)
	}
	return kind, out, nil
}
