// Package detect classifies raw device frames into one of the known wire
// protocol families. Classification is pure and never fails: anything
// unparseable is Unknown and the caller drops it.
package detect

import (
	"regexp"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	HeadHTTP
	HeadCSV
	GT06Login
	GT06Location
	NMEA
	TK103
)

func (k Kind) String() string {
	switch k {
	case HeadHTTP:
		return "head-http"
	case HeadCSV:
		return "head-csv"
	case GT06Login:
		return "gt06-login"
	case GT06Location:
		return "gt06-location"
	case NMEA:
		return "nmea"
	case TK103:
		return "tk103"
	default:
		return "unknown"
	}
}

// IsGT06 reports whether the kind belongs to the binary GT06 family, which is
// the only family that expects an acknowledgment frame.
func (k Kind) IsGT06() bool {
	return k == GT06Login || k == GT06Location
}

var bareIMEI = regexp.MustCompile(`\d{15}`)

const gt06LoginMsg = 0x01

// Detect inspects a raw frame and returns its protocol family. Order matters:
// signatures overlap (an HTTP request line can contain a 15-digit run, an
// NMEA sentence can ride inside a HEAD payload), so the first match wins.
func Detect(data []byte) Kind {
	if len(data) == 0 {
		return Unknown
	}

	text := string(data)

	if strings.Contains(text, "HEAD") {
		if strings.Contains(text, "HTTP/1.1") || strings.Contains(text, "HTTP/1.0") {
			return HeadHTTP
		}
		return HeadCSV
	}

	if len(data) >= 2 && data[0] == 0x78 && data[1] == 0x78 {
		if len(data) < 4 {
			return Unknown
		}
		if data[3] == gt06LoginMsg {
			return GT06Login
		}
		// Location and any other report subtype; the decoder rejects
		// subtypes it does not understand.
		return GT06Location
	}

	if strings.Contains(text, "$GPRMC") || strings.Contains(text, "$GPGGA") {
		return NMEA
	}

	if strings.Contains(strings.ToLower(text), "imei:") || bareIMEI.MatchString(text) {
		return TK103
	}

	return Unknown
}
