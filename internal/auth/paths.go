package auth

import (
	"path"
	"strings"
)

const (
	LoginPath          = "/admin/login"
	DefaultLandingPath = "/admin/dashboard"
	UnauthorizedPath   = "/admin/unauthorized"
	CallbackParam      = "callbackUrl"
)

type Classification int

const (
	// Protected is the zero value so an unclassified path is never public.
	Protected Classification = iota
	Public
)

func (c Classification) String() string {
	if c == Public {
		return "public"
	}
	return "protected"
}

// DefaultPublicPaths lists the routes servable without a session. A trailing
// "*" matches by prefix; other entries match the exact path or entry+"/".
var DefaultPublicPaths = []string{
	"/",
	LoginPath,
	"/api/auth",
	"/api/blog",
	"/blog",
	"/about",
	"/contact",
	"/legal",
	"/thank-you",
	"/healthz",
	"/readyz",
	"/metrics",
	"/static*",
}

var staticAssetExtensions = []string{
	".ico", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	".css", ".js", ".map", ".woff", ".woff2", ".txt",
}

type PathClassifier struct {
	entries []string
}

func NewPathClassifier(entries []string) *PathClassifier {
	if len(entries) == 0 {
		entries = DefaultPublicPaths
	}

	cp := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e != "" {
			cp = append(cp, e)
		}
	}

	return &PathClassifier{entries: cp}
}

// Classify partitions the URL namespace. It is pure and total.
func (p *PathClassifier) Classify(rawPath string) Classification {
	clean := CleanPath(rawPath)

	if isStaticAsset(clean) {
		return Public
	}

	for _, entry := range p.entries {
		if matchEntry(entry, clean) {
			return Public
		}
	}

	return Protected
}

// CleanPath canonicalizes a request path so "/blog/../admin" cannot borrow
// a public prefix.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func matchEntry(entry, p string) bool {
	if prefix, ok := strings.CutSuffix(entry, "*"); ok {
		return strings.HasPrefix(p, prefix)
	}
	return p == entry || strings.HasPrefix(p, entry+"/")
}

func isStaticAsset(p string) bool {
	if strings.HasPrefix(p, "/_assets/") {
		return true
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range staticAssetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
