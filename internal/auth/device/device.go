// Package device derives a coarse device identity from the User-Agent header.
// Logins record the fingerprint and a readable name so unusual devices stand
// out in the session log. Nothing is blocked on it.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Fingerprint hashes the stable parts of a User-Agent: browser, major
// version, OS, and desktop/mobile. The IP address is deliberately excluded,
// it is too volatile to identify a device. Empty input yields "".
func Fingerprint(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()

	majorVersion := "unknown"
	if version != "" {
		parts := strings.Split(version, ".")
		if len(parts) > 0 && parts[0] != "" {
			majorVersion = parts[0]
		}
	}

	os := ua.OS()
	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}
	os = strings.ToLower(strings.TrimSpace(os))
	if os == "" {
		os = "unknown"
	}

	data := fmt.Sprintf("%s|%s|%s|%s", browser, majorVersion, os, platform)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// DisplayName renders a User-Agent as "Browser on OS", e.g. "Chrome on macOS"
// or "Safari on iPhone" for mobile platforms.
func DisplayName(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
