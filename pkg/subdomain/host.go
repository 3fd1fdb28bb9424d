package subdomain

import (
	"regexp"
	"strings"
)

var ipv4Literal = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// FromHost extracts the candidate subdomain from a Host header value.
//
// Supported forms: pizza.example.com, pizza.example.com:8080, pizza.localhost and
// pizza.localhost:3000. The bare base domain, bare localhost and IPv4 literals yield no
// candidate. Hosts with several labels in front of the base domain yield the first label.
// Host names are case-insensitive, so both inputs are lower-cased. The result is not validated.
func FromHost(host, baseDomain string) (string, bool) {
	host = strings.ToLower(stripPort(host))
	if host == "" {
		return "", false
	}
	base := strings.ToLower(stripPort(baseDomain))

	if host == "localhost" || ipv4Literal.MatchString(host) {
		return "", false
	}

	if base != "" {
		if strings.Contains(base, "localhost") {
			labels := strings.Split(host, ".")
			if len(labels) >= 2 && labels[len(labels)-1] == "localhost" {
				return nonEmpty(labels[0])
			}
		}
		if prefix, ok := strings.CutSuffix(host, "."+base); ok && prefix != "" {
			return nonEmpty(firstLabel(prefix))
		}
		if host == base {
			return "", false
		}
	}

	labels := strings.Split(host, ".")
	switch {
	case len(labels) >= 2 && labels[len(labels)-1] == "localhost":
		return nonEmpty(labels[0])
	case len(labels) > 2:
		return nonEmpty(labels[0])
	}
	return "", false
}

// stripPort drops a trailing :port. Bracketed IPv6 literals lose their brackets.
func stripPort(h string) string {
	h = strings.TrimSpace(h)
	if strings.HasPrefix(h, "[") {
		if i := strings.Index(h, "]"); i > 0 {
			return h[1:i]
		}
		return h
	}
	if i := strings.Index(h, ":"); i >= 0 {
		return h[:i]
	}
	return h
}

func firstLabel(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}
