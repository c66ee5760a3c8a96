// Package web holds the embedded single-page frontend.
package web

import "embed"

//go:embed index.html
var Assets embed.FS
