// Package iputil splits a client address into IPv4 and IPv6 components.
package iputil

import (
	"net"
	"strings"
)

// Split parses an IP address string and returns it as (ipv4, ipv6); the
// component for the other family is empty. An empty or unparseable input
// returns two empty strings.
func Split(ip string) (ipv4, ipv6 string) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", ""
	}
	if parsed.To4() != nil {
		return parsed.String(), ""
	}
	return "", parsed.String()
}
