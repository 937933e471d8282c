// Package nmea decodes $GPRMC sentences as emitted by trackers that relay
// their GPS module output verbatim. $GPGGA is recognized by detection but not
// parsed in this version; those payloads produce no fix by design.
package nmea

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fleettrack/internal/core/model"
)

var (
	ErrTooFewFields  = errors.New("GPRMC sentence has too few fields")
	ErrBadCoordinate = errors.New("invalid GPRMC coordinate field")
)

// UnknownDeviceID is the sentinel used when a sentence carries no device
// identifier at all. It is a legitimate value, preserved end to end, not an
// error.
const UnknownDeviceID = "UNKNOWN"

const knotsToKmh = 1.852

var (
	idMarker   = regexp.MustCompile(`(?i)ID:([0-9A-Za-z]+)`)
	bareDigits = regexp.MustCompile(`\d{10,}`)
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts a fix from the first $GPRMC sentence in the payload.
// Payloads that contain only other sentence types ($GPGGA and friends) yield
// no fix and no error.
func (d *Decoder) Decode(data []byte) (*model.Fix, error) {
	text := string(data)

	start := strings.Index(text, "$GPRMC")
	if start < 0 {
		return nil, nil
	}

	fields := strings.Split(text[start:], ",")
	if len(fields) < 10 {
		return nil, ErrTooFewFields
	}

	lat, err := dmmToDegrees(fields[3], fields[4], "S")
	if err != nil {
		return nil, err
	}
	lon, err := dmmToDegrees(fields[5], fields[6], "W")
	if err != nil {
		return nil, err
	}
	if !model.ValidCoordinates(lat, lon) {
		return nil, nil
	}

	fix := model.NewFix(deviceID(text), "nmea", lat, lon)
	if knots, err := strconv.ParseFloat(fields[7], 64); err == nil {
		fix.Speed = knots * knotsToKmh
	}
	if course, err := strconv.ParseFloat(fields[8], 64); err == nil {
		fix.Heading = course
	}
	return fix, nil
}

// deviceID looks for an "ID:<token>" marker first, then any bare run of ten
// or more digits anywhere in the payload. Sentences with neither keep the
// UNKNOWN sentinel.
func deviceID(text string) string {
	if m := idMarker.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareDigits.FindString(text); m != "" {
		return m
	}
	return UnknownDeviceID
}

// dmmToDegrees converts NMEA "DDMM.MMMM" degrees-minutes notation to decimal
// degrees. The hemisphere letter is the sole sign source and is applied after
// the magnitude conversion.
func dmmToDegrees(value, hemisphere, negative string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return 0, ErrBadCoordinate
	}

	degrees := math.Floor(v / 100)
	minutes := math.Mod(v, 100)
	decimal := degrees + minutes/60

	if strings.EqualFold(hemisphere, negative) {
		decimal = -decimal
	}
	return decimal, nil
}
