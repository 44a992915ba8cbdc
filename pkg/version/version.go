// Package version carries the build identity advertised in the NIP-11
// document and log banners.
package version

var (
	// Name is the application name.
	Name = "roost"
	// V is the current version string.
	V = "v0.1.0"
	// URL points at the source of the software.
	URL = "https://roost.dev"
	// Description is the default relay description.
	Description = "personal nostr relay"
)
