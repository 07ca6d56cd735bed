package cache

import (
	"fmt"
	"strings"

	"github.com/kbukum/voicebridge/translation"
)

// Key returns the normalized cache key for a request. Each field is
// length-prefixed so the encoding is injective by construction: no choice
// of field values can make two different tuples render identically.
func Key(req translation.Request) string {
	preserve := "0"
	if req.Options.PreserveFormatting {
		preserve = "1"
	}
	formality := req.Options.Formality
	if formality == "" {
		formality = translation.FormalityDefault
	}
	service := req.Service
	if service == "" {
		service = translation.ServiceAny
	}

	fields := []string{
		service,
		strings.ToLower(req.SourceLanguage),
		strings.ToLower(req.TargetLanguage),
		formality,
		preserve,
		req.Text,
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%d:%s", len(f), f)
	}
	return b.String()
}

// KeyForService returns the key the request would have under a different
// service name, leaving every other field untouched.
func KeyForService(req translation.Request, service string) string {
	req.Service = service
	return Key(req)
}
