package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ipPayload is the JSON response body.
type ipPayload struct {
	IPv4 string `json:"ipv4"`
	IPv6 string `json:"ipv6"`
}

// xmlReplacer escapes the five XML special characters.
var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes XML special characters to prevent injection.
func escapeXML(input string) string {
	return xmlReplacer.Replace(input)
}

// textBody formats the IP addresses as plain text, one per line.
func textBody(ipv4, ipv6 string) string {
	return fmt.Sprintf("%s\n%s\n", ipv4, ipv6)
}

// xmlBody formats the IP addresses as a fixed XML document.
func xmlBody(ipv4, ipv6 string) string {
	return fmt.Sprintf("<ip><ipv4>%s</ipv4><ipv6>%s</ipv6></ip>", escapeXML(ipv4), escapeXML(ipv6))
}

// writeResponse renders the observed addresses in the requested format.
func writeResponse(w http.ResponseWriter, format Format, ipv4, ipv6 string) {
	switch format {
	case FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ipPayload{IPv4: ipv4, IPv6: ipv6})
	case FormatXML:
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, xmlBody(ipv4, ipv6))
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, textBody(ipv4, ipv6))
	}
}
