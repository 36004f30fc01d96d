// Package validation checks URLs that reach the site from forms and config.
package validation

import (
	"net"
	"net/url"
	"strings"
)

// metadataIPs are cloud instance metadata endpoints (AWS/GCP, Azure).
var metadataIPs = []net.IP{
	net.ParseIP("169.254.169.254"),
	net.ParseIP("168.63.129.16"),
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This rejects javascript:, data:, vbscript: and other dangerous schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// NormalizePageURL returns the page a lead form was submitted from, or ""
// when the value is neither a site-relative path nor an http(s) URL.
func NormalizePageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 2048 {
		return ""
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return ""
		}
		return raw
	}
	if ok, _ := ValidateURL(raw); ok {
		return raw
	}
	return ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}

	for _, m := range metadataIPs {
		if ip.Equal(m) {
			return true
		}
	}

	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// Unresolvable hosts are blocked.
		return true, err
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateOutboundURL validates a webhook target. Unless allowPrivate is set,
// hosts resolving to private IPs, localhost or metadata endpoints are blocked.
func ValidateOutboundURL(urlStr string, allowPrivate bool) (bool, string) {
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}
	if allowPrivate {
		return true, ""
	}

	u, _ := url.Parse(urlStr)

	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}
