// Package demo ships a small annotated application used by cmd/dispatch
// when no source root is configured.
package demo

import "embed"

// Sources holds the demo namespace tree, rooted at "app"
//
//go:embed app
var Sources embed.FS

// ScanPackage is the root namespace of the demo sources
const ScanPackage = "app"
