package routing

import (
	"net"
	"strings"
)

// ExtractSlug pulls the tenant slug out of the request host. The slug is the
// subdomain label directly under the configured base domain; hosts that are
// the bare base domain, or that sit outside it entirely, carry no slug.
func ExtractSlug(host, baseDomain string) string {
	if host == "" || baseDomain == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	baseDomain = strings.ToLower(strings.TrimSuffix(baseDomain, "."))

	// Local hosts never name a tenant, whatever the base domain is set to.
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ""
	}
	if ip := net.ParseIP(host); ip != nil {
		return ""
	}

	if host == baseDomain {
		return ""
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	sub := strings.TrimSuffix(host, "."+baseDomain)
	labels := strings.Split(sub, ".")
	// Deeper prefixes resolve to the label nearest the base domain.
	return labels[len(labels)-1]
}
