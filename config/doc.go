// Package config loads assetops settings from a YAML file and wires the
// engine, store, source readers and telemetry from them.
//
// A minimal file:
//
//	webroot: ./public
//	store:
//	  root: ./public/assets
//	  base_url: /assets
//
// Omitted settings keep their defaults (see Default). Path and URL values
// accept ${VAR} references; remote request headers additionally accept
// secretref:<provider>:<ref> values resolved through package secret.
package config
