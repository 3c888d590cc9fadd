// Package asset defines the data model shared by the bundling engine.
//
// A Reference is one style sheet or script as the page declared it. A Group is
// an ordered run of references of the same kind that render at the same place.
// Config carries every toggle that influences how a group is bundled; it is
// part of the bundle fingerprint, so two different configs never share an
// artifact.
package asset
