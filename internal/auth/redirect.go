package auth

import (
	"net/url"
	"strings"
)

// ResolveCallback turns a callbackUrl value into a same-origin path plus
// query. Absolute URLs are accepted only when their host equals requestHost.
// Anything else resolves to fallback.
func ResolveCallback(raw, requestHost, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	if strings.ContainsAny(raw, "\\\x00\r\n\t") {
		return fallback
	}

	u, err := url.Parse(raw)
	if err != nil || u.User != nil || u.Opaque != "" {
		return fallback
	}

	if u.Scheme != "" || u.Host != "" {
		if requestHost == "" || !strings.EqualFold(u.Host, requestHost) {
			return fallback
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fallback
		}
	} else if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}

	clean := CleanPath(u.Path)

	target := url.URL{Path: clean, RawQuery: u.RawQuery}
	return target.String()
}

// SamePath reports whether a resolved target lands on p, ignoring the query.
func SamePath(target, p string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return CleanPath(u.Path) == CleanPath(p)
}
