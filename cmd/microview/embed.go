package main

import "embed"

//go:embed all:templates
var embeddedTemplates embed.FS
