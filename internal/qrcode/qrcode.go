// Package qrcode builds and parses member QR payloads. Rendering the image
// is delegated to an external service.
package qrcode

import (
	"net/url"
	"strings"
)

// Prefix tags club member payloads so foreign QR codes are rejected.
const Prefix = "CLUB_MEMBER_"

const imageEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// Payload returns the scannable string for a membership number.
func Payload(membershipNumber string) string {
	return Prefix + membershipNumber
}

// ParsePayload extracts the membership number, reporting whether the
// payload carries the club prefix.
func ParsePayload(payload string) (string, bool) {
	return strings.CutPrefix(payload, Prefix)
}

// ImageURL returns a URL that renders the member's QR code.
func ImageURL(membershipNumber string) string {
	return imageEndpoint + "?size=200x200&data=" + url.QueryEscape(Payload(membershipNumber))
}
