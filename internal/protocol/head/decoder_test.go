package head

import (
	"math"
	"testing"
)

func TestDecodeHTTP(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name     string
		data     []byte
		wantNil  bool
		deviceID string
		lat, lon float64
		speed    float64
		heading  float64
	}{
		{
			name:     "full query",
			data:     []byte("HEAD /gps?id=12345678&lat=40.7128&lon=-74.0060&speed=25.5&heading=180 HTTP/1.1\r\nHost: x\r\n\r\n"),
			deviceID: "12345678",
			lat:      40.7128, lon: -74.0060,
			speed: 25.5, heading: 180,
		},
		{
			name:     "alias parameters",
			data:     []byte("HEAD /?imei=359586015829802&latitude=10.5&lng=20.25&spd=3&course=90 HTTP/1.0\r\n"),
			deviceID: "359586015829802",
			lat:      10.5, lon: 20.25,
			speed: 3, heading: 90,
		},
		{
			name:     "defaults when speed and heading missing",
			data:     []byte("HEAD /gps?device_id=87654321&lat=-33.9&longitude=151.2 HTTP/1.1\r\n"),
			deviceID: "87654321",
			lat:      -33.9, lon: 151.2,
			speed: 0, heading: 0,
		},
		{
			name:    "missing longitude is a keepalive",
			data:    []byte("HEAD /gps?id=12345678&lat=40.0 HTTP/1.1\r\n"),
			wantNil: true,
		},
		{
			name:    "missing device id",
			data:    []byte("HEAD /gps?lat=40.0&lon=3.0 HTTP/1.1\r\n"),
			wantNil: true,
		},
		{
			name:    "no query at all",
			data:    []byte("HEAD / HTTP/1.1\r\n\r\n"),
			wantNil: true,
		},
		{
			name:    "latitude out of bounds",
			data:    []byte("HEAD /gps?id=12345678&lat=91.0&lon=0 HTTP/1.1\r\n"),
			wantNil: true,
		},
		{
			name:    "bare HEAD with nothing else",
			data:    []byte("HEAD"),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := d.DecodeHTTP(tt.data)
			if tt.wantNil {
				if fix != nil {
					t.Fatalf("DecodeHTTP() = %+v, want nil", fix)
				}
				return
			}
			if fix == nil {
				t.Fatal("DecodeHTTP() = nil, want fix")
			}
			if fix.DeviceID != tt.deviceID {
				t.Errorf("DeviceID = %q, want %q", fix.DeviceID, tt.deviceID)
			}
			if fix.Latitude != tt.lat || fix.Longitude != tt.lon {
				t.Errorf("coords = (%v, %v), want (%v, %v)", fix.Latitude, fix.Longitude, tt.lat, tt.lon)
			}
			if fix.Speed != tt.speed || fix.Heading != tt.heading {
				t.Errorf("speed/heading = (%v, %v), want (%v, %v)", fix.Speed, fix.Heading, tt.speed, tt.heading)
			}
			if fix.Accuracy != 10 {
				t.Errorf("Accuracy = %v, want default 10", fix.Accuracy)
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name     string
		data     []byte
		wantNil  bool
		deviceID string
		lat, lon float64
		speed    float64
	}{
		{
			name:     "hemisphere prefixed tokens",
			data:     []byte("HEAD,12345678,N40.7700,W73.9800,25.0"),
			deviceID: "12345678",
			lat:      40.77, lon: -73.98, speed: 25,
		},
		{
			name:     "lone hemisphere letter pairs with next token",
			data:     []byte("HEAD,12345678,S,33.8700,E,151.2100"),
			deviceID: "12345678",
			lat:      -33.87, lon: 151.21, speed: 0,
		},
		{
			name:     "bare decimal heuristic",
			data:     []byte("HEAD,87654321,40.7128,-74.0060,55.5"),
			deviceID: "87654321",
			lat:      40.7128, lon: -74.0060, speed: 55.5,
		},
		{
			name:     "device id in second field",
			data:     []byte("HEAD,359586015829802,12.34,56.78"),
			deviceID: "359586015829802",
			lat:      12.34, lon: 56.78, speed: 0,
		},
		{
			name:    "no numeric id in first three fields",
			data:    []byte("HEAD,abc,def,40.0,3.0"),
			wantNil: true,
		},
		{
			name:    "id but no coordinate pair",
			data:    []byte("HEAD,12345678,hello,world"),
			wantNil: true,
		},
		{
			name:    "latitude without longitude",
			data:    []byte("HEAD,12345678,45.0"),
			wantNil: true,
		},
		{
			name:    "empty payload",
			data:    []byte(""),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := d.DecodeCSV(tt.data)
			if tt.wantNil {
				if fix != nil {
					t.Fatalf("DecodeCSV() = %+v, want nil", fix)
				}
				return
			}
			if fix == nil {
				t.Fatal("DecodeCSV() = nil, want fix")
			}
			if fix.DeviceID != tt.deviceID {
				t.Errorf("DeviceID = %q, want %q", fix.DeviceID, tt.deviceID)
			}
			if math.Abs(fix.Latitude-tt.lat) > 1e-9 || math.Abs(fix.Longitude-tt.lon) > 1e-9 {
				t.Errorf("coords = (%v, %v), want (%v, %v)", fix.Latitude, fix.Longitude, tt.lat, tt.lon)
			}
			if fix.Speed != tt.speed {
				t.Errorf("Speed = %v, want %v", fix.Speed, tt.speed)
			}
		})
	}
}

// A value outside coordinate range must not become a coordinate, and a value
// above 300 is never taken as speed. This mirrors the deployed heuristic
// exactly, misclassification risk included.
func TestDecodeCSVHeuristicRanges(t *testing.T) {
	d := NewDecoder()

	fix := d.DecodeCSV([]byte("HEAD,12345678,500.0,40.0,120.0,80.0"))
	if fix == nil {
		t.Fatal("DecodeCSV() = nil, want fix")
	}
	// 500.0 is out of every range; 40.0 becomes latitude, 120.0 longitude,
	// 80.0 speed.
	if fix.Latitude != 40.0 || fix.Longitude != 120.0 || fix.Speed != 80.0 {
		t.Errorf("got (%v, %v, %v), want (40, 120, 80)", fix.Latitude, fix.Longitude, fix.Speed)
	}
}
