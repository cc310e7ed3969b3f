// Package web embeds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS contains the page layouts and the dashboard page.
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS contains the dashboard stylesheet and script.
//
//go:embed all:static
var StaticFS embed.FS
