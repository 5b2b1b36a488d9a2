package cocktailsgram

import "embed"

// EmbeddedAssets contains the stylesheet shipped with the binary. It defines
// the header, footer, and page classes used by package views.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
