// Package tk103 decodes the TK103-like CSV family: an IMEI-identified
// comma-separated report with DDMM.MMMM coordinates paired with hemisphere
// tokens.
package tk103

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fleettrack/internal/core/model"
)

var ErrNoDeviceID = errors.New("no IMEI found in TK103 payload")

var (
	// 15-digit IMEI, optionally behind a case-insensitive "imei:" prefix.
	imeiPattern = regexp.MustCompile(`(?i)(?:imei:)?(\d{15})`)

	// DDMM.MMMM latitude and DDDMM.MMMM longitude magnitudes.
	latToken = regexp.MustCompile(`^\d{4}\.\d{4}$`)
	lonToken = regexp.MustCompile(`^\d{5}\.\d{4}$`)
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode scans the comma-separated fields pairwise: a 4-integer+4-decimal
// token immediately followed by N/S is the latitude, a 5-integer+4-decimal
// token followed by E/W the longitude. The protocol in scope exposes no
// heading; it stays at the zero default. No coordinate pair means no fix.
func (d *Decoder) Decode(data []byte) (*model.Fix, error) {
	text := string(data)

	m := imeiPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrNoDeviceID
	}
	deviceID := m[1]

	fields := strings.Split(text, ",")

	var lat, lon float64
	var latSet, lonSet bool

	for i := 0; i+1 < len(fields); i++ {
		token := strings.TrimSpace(fields[i])
		next := strings.TrimSpace(fields[i+1])

		switch {
		case !latSet && latToken.MatchString(token) && (next == "N" || next == "S"):
			lat = dmmToDegrees(token)
			if next == "S" {
				lat = -lat
			}
			latSet = true
		case !lonSet && lonToken.MatchString(token) && (next == "E" || next == "W"):
			lon = dmmToDegrees(token)
			if next == "W" {
				lon = -lon
			}
			lonSet = true
		}
	}

	if !latSet || !lonSet || !model.ValidCoordinates(lat, lon) {
		return nil, nil
	}

	return model.NewFix(deviceID, "tk103", lat, lon), nil
}

// dmmToDegrees converts a DDMM.MMMM magnitude to decimal degrees. Tokens are
// pre-validated by the pattern match, so parsing cannot fail here.
func dmmToDegrees(token string) float64 {
	v, _ := strconv.ParseFloat(token, 64)
	degrees := math.Floor(v / 100)
	minutes := math.Mod(v, 100)
	return degrees + minutes/60
}
