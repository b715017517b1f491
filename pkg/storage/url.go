package storage

import (
	"net/url"
	"strconv"
	"strings"
)

// DomainURL joins path onto domain. A domain without a scheme ("statichost")
// is treated as a host and produces a scheme relative URL.
func DomainURL(domain, path string) string {
	if domain == "" {
		return path
	}

	parsed, err := url.Parse(domain)
	if err == nil && parsed.Host == "" && parsed.Path != "" && parsed.Scheme == "" {
		domain = "//" + domain
	}
	return joinURL(domain, path)
}

// BuildURL returns the public URL of a thumbnail name. prefix is the path the
// thumbnail handler is mounted on; factors above 1 get a "<factor>x/"
// segment.
func BuildURL(domain, prefix, name string, factor int) string {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	path := prefix + name
	if factor > 1 {
		path = prefix + strconv.Itoa(factor) + "x/" + name
	}
	return DomainURL(domain, path)
}

// URLPath returns the path component of a URL, e.g. for X-Accel-Redirect.
func URLPath(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.Path
}

func joinURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	return b.ResolveReference(&url.URL{Path: ref}).String()
}
