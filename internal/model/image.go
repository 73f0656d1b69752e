package model

import (
	"strings"
)

// ResolveImageURL turns a backend image reference into something a client
// can fetch. Absolute URLs pass through; upload paths are joined to
// assetBaseURL; anything else resolves to "" so the caller shows a placeholder.
func ResolveImageURL(assetBaseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/uploads"), strings.HasPrefix(ref, "/images"):
		if assetBaseURL == "" {
			return ""
		}
		return strings.TrimSuffix(assetBaseURL, "/") + ref
	default:
		return ""
	}
}
