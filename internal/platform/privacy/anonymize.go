// Package privacy truncates personal identifiers before they reach logs.
// A donor directory handles health narratives and locations; its log stream
// must not also pinpoint individual machines.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP drops the host-identifying part of an IP address.
//
// IPv4 keeps the /24 network: "192.168.1.47" becomes "192.168.1.0". IPv6
// keeps the /48 prefix: "2001:db8:85a3::8a2e:370:7334" becomes
// "2001:0db8:85a3::". Up to 256 IPv4 hosts share one anonymized value, which
// is still enough to spot an abusive subnet in the request log.
//
// Unparseable input yields "invalid"; empty input yields "unknown".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	// IPv4, including IPv4-mapped IPv6.
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6: first 6 of 16 bytes is the /48 prefix.
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
