// Package source implements one provider per platform family and a
// registry that picks the provider for a given URL. Adding a platform
// means registering it here; the fetch scheduler and the decryption
// engine never change.
package source

import (
	"fmt"
	"regexp"

	"tankobon/internal/domain"
)

// Options carries caller preferences into provider construction.
type Options struct {
	// Quality selects which image variant is requested (normal|high).
	Quality string
	// DeviceSecret is the opaque device-identity token for platforms
	// that require one. A random identity is generated when empty.
	DeviceSecret string
	// Position selects a chapter relative to a manga (first|last) when
	// the locator names a manga instead of a chapter.
	Position string
	// BaseURL overrides the platform base URL, for self-hosted mirrors.
	BaseURL string
}

type factory func(rawURL string, opts Options) domain.Provider

type registration struct {
	name    string
	pattern *regexp.Regexp
	create  factory
}

var registry []registration

func register(name string, pattern *regexp.Regexp, create factory) {
	registry = append(registry, registration{name: name, pattern: pattern, create: create})
}

// NewFromURL returns the provider whose URL pattern matches the given
// locator, in registration order.
func NewFromURL(rawURL string, opts Options) (domain.Provider, error) {
	for _, reg := range registry {
		if reg.pattern.MatchString(rawURL) {
			return reg.create(rawURL, opts), nil
		}
	}
	return nil, fmt.Errorf("no provider matches url: %s", rawURL)
}

// Names lists the registered provider names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, reg := range registry {
		names = append(names, reg.name)
	}
	return names
}
