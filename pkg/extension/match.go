package extension

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

const allURLs = "<all_urls>"

// matchPattern is a parsed content-script match pattern:
// <scheme>://<host><path>.
type matchPattern struct {
	scheme string
	host   string
	path   glob.Glob
}

// Matches reports whether a content script of the extension is injected into
// rawURL. Ports are ignored, the same way browsers ignore them when matching
// content scripts.
func (e *Extension) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Host == "" && u.Scheme != "file" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	for _, pattern := range e.manifest.MatchPatterns() {
		if pattern == allURLs {
			if isWebScheme(u.Scheme) || u.Scheme == "file" {
				return true
			}
			continue
		}
		p, err := parsePattern(pattern)
		if err != nil {
			continue
		}
		if p.matchScheme(u.Scheme) && p.matchHost(host) && p.path.Match(path) {
			return true
		}
	}
	return false
}

// parsePattern splits a match pattern into scheme, host and path. Only '*'
// is a wildcard; the path glob is compiled with every other rune quoted.
func parsePattern(pattern string) (*matchPattern, error) {
	scheme, rest, ok := strings.Cut(pattern, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("missing scheme in match pattern %q", pattern)
	}

	slash := strings.Index(rest, "/")
	if slash < 0 {
		return nil, fmt.Errorf("missing path in match pattern %q", pattern)
	}
	host, path := strings.ToLower(rest[:slash]), rest[slash:]

	if host == "" && scheme != "file" {
		return nil, fmt.Errorf("missing host in match pattern %q", pattern)
	}
	if strings.Contains(strings.TrimPrefix(host, "*."), "*") && host != "*" {
		return nil, fmt.Errorf("invalid host wildcard in match pattern %q", pattern)
	}

	g, err := glob.Compile(strings.ReplaceAll(glob.QuoteMeta(path), `\*`, "*"))
	if err != nil {
		return nil, fmt.Errorf("invalid path in match pattern %q: %w", pattern, err)
	}
	return &matchPattern{scheme: scheme, host: host, path: g}, nil
}

// matchScheme accepts http and https for a '*' scheme.
func (p *matchPattern) matchScheme(scheme string) bool {
	if p.scheme == "*" {
		return isWebScheme(scheme)
	}
	return p.scheme == scheme
}

// matchHost never crosses into the path: "*.example.com" covers
// example.com and its subdomains only.
func (p *matchPattern) matchHost(host string) bool {
	switch {
	case p.host == "*":
		return true
	case strings.HasPrefix(p.host, "*."):
		domain := p.host[2:]
		return host == domain || strings.HasSuffix(host, "."+domain)
	default:
		return host == p.host
	}
}

func isWebScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}
