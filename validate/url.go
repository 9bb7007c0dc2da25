package validate

import (
	"net/netip"
	"net/url"
	"path"
	"strings"
)

// URLResult is the outcome of a URL safety check
type URLResult struct {
	Valid  bool
	Reason string // human-readable rejection reason, empty when valid
}

// DefaultAllowedDomains returns the outbound domain allow-list used when
// the caller passes none: the media CDN and the identity provider.
func DefaultAllowedDomains() []string {
	return []string{
		"cdn.quillcms.com",
		"media.quillcms.com",
		"accounts.quillcms.com",
	}
}

// internalPrefixes covers loopback, RFC 1918 private ranges, link-local
// and their IPv6 equivalents. IPv4-mapped IPv6 addresses are handled by
// unmapping before the prefix check.
var internalPrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"), // includes fd00::/8
}

// internalHostnames are name aliases that resolve to the local machine
var internalHostnames = map[string]bool{
	"localhost":             true,
	"localhost.localdomain": true,
	"ip6-localhost":         true,
	"ip6-loopback":          true,
}

// suspiciousExtensions are script-like path extensions that have no
// business appearing in an image URL
var suspiciousExtensions = map[string]bool{
	".php": true,
	".asp": true,
	".jsp": true,
	".cgi": true,
	".exe": true,
	".sh":  true,
	".bat": true,
}

// IsInternalIP reports whether host is a private or internal address that
// outbound requests must never reach: IPv4 loopback, RFC 1918 ranges,
// link-local, their IPv6 equivalents (including IPv4-mapped forms) and
// localhost aliases. Matching is case-insensitive and tolerant of
// surrounding whitespace. Non-address hostnames return false.
func IsInternalIP(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if internalHostnames[h] {
		return true
	}

	// IPv6 literals may arrive bracketed from URL parsing
	h = strings.Trim(h, "[]")

	addr, err := netip.ParseAddr(h)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, p := range internalPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// URL decides whether raw is safe to fetch: parseable, http(s) only, not
// pointing at an internal host, and within the domain allow-list. A nil
// allowedDomains falls back to DefaultAllowedDomains. Checks short-circuit
// on the first failure.
func URL(raw string, allowedDomains []string) URLResult {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return URLResult{Valid: false, Reason: "URL is malformed"}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return URLResult{Valid: false, Reason: "only http and https URLs are allowed"}
	}

	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" {
		return URLResult{Valid: false, Reason: "URL has no host"}
	}

	if IsInternalIP(host) {
		return URLResult{Valid: false, Reason: "URL points to a private or internal address"}
	}

	if allowedDomains == nil {
		allowedDomains = DefaultAllowedDomains()
	}
	if !domainAllowed(host, allowedDomains) {
		return URLResult{Valid: false, Reason: "URL host is not in the allowed domain list"}
	}

	return URLResult{Valid: true}
}

// ImageURL runs the full URL check and additionally rejects script-like
// path extensions (php, exe, ...) that indicate the link is not an image.
func ImageURL(raw string, allowedDomains []string) URLResult {
	res := URL(raw, allowedDomains)
	if !res.Valid {
		return res
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return URLResult{Valid: false, Reason: "URL is malformed"}
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if suspiciousExtensions[ext] {
		return URLResult{Valid: false, Reason: "URL path has a suspicious non-image extension"}
	}

	return URLResult{Valid: true}
}

// domainAllowed reports whether host equals or is a subdomain of any
// allow-list entry
func domainAllowed(host string, allowed []string) bool {
	for _, d := range allowed {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
