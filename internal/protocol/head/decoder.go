// Package head decodes the text "HEAD" family: raw HTTP HEAD request lines
// carrying the position in the query string, and a comma-separated vendor
// variant with no stable field order.
package head

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"fleettrack/internal/core/model"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Query parameter aliases accepted per field. Cheap trackers disagree on
// names, so every known spelling maps to the same slot.
var (
	idParams      = []string{"id", "device_id", "imei"}
	latParams     = []string{"lat", "latitude"}
	lonParams     = []string{"lon", "lng", "longitude"}
	speedParams   = []string{"speed", "spd"}
	headingParams = []string{"heading", "course"}
)

var numericID = regexp.MustCompile(`^\d{8,}$`)

// DecodeHTTP parses a raw HTTP request line of the form
// "HEAD <path>?<query> HTTP/1.x". A payload missing device id, latitude or
// longitude is a keepalive or health probe, not an error: no fix, no failure.
func (d *Decoder) DecodeHTTP(data []byte) *model.Fix {
	line := string(data)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil
	}

	rawQuery := ""
	if i := strings.Index(fields[1], "?"); i >= 0 {
		rawQuery = fields[1][i+1:]
	}

	// ParseQuery keeps whatever pairs it managed to read; a bad escape in
	// one parameter must not discard the rest.
	values, _ := url.ParseQuery(rawQuery)

	deviceID := firstParam(values, idParams)
	lat, latOK := firstParamFloat(values, latParams)
	lon, lonOK := firstParamFloat(values, lonParams)
	if deviceID == "" || !latOK || !lonOK || !model.ValidCoordinates(lat, lon) {
		return nil
	}

	fix := model.NewFix(deviceID, "head-http", lat, lon)
	if speed, ok := firstParamFloat(values, speedParams); ok {
		fix.Speed = speed
	}
	if heading, ok := firstParamFloat(values, headingParams); ok {
		fix.Heading = heading
	}
	return fix
}

// DecodeCSV parses the comma-separated HEAD variant. The device id is the
// first 8-or-more-digit token among the first three fields; remaining fields
// are assigned by the positional heuristic documented on scanFields. Vendors
// shuffle field order freely, which is why the heuristic is range-driven
// rather than positional in the strict sense.
func (d *Decoder) DecodeCSV(data []byte) *model.Fix {
	fields := strings.Split(string(data), ",")

	idIndex := -1
	for i := 0; i < len(fields) && i < 3; i++ {
		if numericID.MatchString(strings.TrimSpace(fields[i])) {
			idIndex = i
			break
		}
	}
	if idIndex < 0 {
		return nil
	}
	deviceID := strings.TrimSpace(fields[idIndex])

	lat, lon, speed, ok := scanFields(fields[idIndex+1:])
	if !ok || !model.ValidCoordinates(lat, lon) {
		return nil
	}

	fix := model.NewFix(deviceID, "head-csv", lat, lon)
	fix.Speed = speed
	return fix
}

// scanFields walks the tokens after the device id and assigns coordinates:
// an N/S-prefixed token (or a lone N/S followed by a magnitude token) is a
// hemisphere latitude, E/W likewise a longitude. Bare decimals fall back to
// ranges: the first unused value in [-90,90] becomes latitude, the first
// subsequent value in [-180,180] longitude, and the first value in [0,300]
// after both becomes speed. Known limitation: a speed above 300 km/h or a
// coordinate-range speed value can be misassigned; devices in the field
// depend on exactly this tolerance, so it stays.
func scanFields(fields []string) (lat, lon, speed float64, ok bool) {
	var latSet, lonSet, speedSet bool

	for i := 0; i < len(fields); i++ {
		token := strings.TrimSpace(fields[i])
		if token == "" {
			continue
		}

		switch token[0] {
		case 'N', 'S':
			mag, used, err := hemisphereMagnitude(token, fields, i)
			if err != nil {
				continue
			}
			i += used
			if token[0] == 'S' {
				mag = -mag
			}
			lat, latSet = mag, true
			continue
		case 'E', 'W':
			mag, used, err := hemisphereMagnitude(token, fields, i)
			if err != nil {
				continue
			}
			i += used
			if token[0] == 'W' {
				mag = -mag
			}
			lon, lonSet = mag, true
			continue
		}

		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		switch {
		case !latSet && value >= -90 && value <= 90:
			lat, latSet = value, true
		case latSet && !lonSet && value >= -180 && value <= 180:
			lon, lonSet = value, true
		case latSet && lonSet && !speedSet && value >= 0 && value <= 300:
			speed, speedSet = value, true
		}
	}

	return lat, lon, speed, latSet && lonSet
}

// hemisphereMagnitude extracts the magnitude of a hemisphere token. The
// magnitude either trails the letter ("N40.77") or sits in the next token
// ("N","40.77"); the second form consumes one extra field.
func hemisphereMagnitude(token string, fields []string, i int) (float64, int, error) {
	if len(token) > 1 {
		mag, err := strconv.ParseFloat(token[1:], 64)
		return mag, 0, err
	}
	if i+1 < len(fields) {
		mag, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		return mag, 1, err
	}
	return 0, 0, strconv.ErrSyntax
}

func firstParam(values url.Values, names []string) string {
	for _, name := range names {
		if v := values.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func firstParamFloat(values url.Values, names []string) (float64, bool) {
	raw := firstParam(values, names)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
