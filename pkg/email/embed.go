package email

import "embed"

//go:embed templates/*
var embeddedTemplates embed.FS
