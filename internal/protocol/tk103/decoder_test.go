package tk103

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"fleettrack/internal/core/model"
)

func TestDecode(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name     string
		data     []byte
		wantNil  bool
		wantErr  error
		deviceID string
		lat, lon float64
	}{
		{
			name:     "full report with imei prefix",
			data:     []byte("imei:359586015829802,tracker,0809231929,13554900601,F,112909.397,A,2234.4669,N,11354.3287,E,0.11,"),
			deviceID: "359586015829802",
			lat:      22 + 34.4669/60,
			lon:      113 + 54.3287/60,
		},
		{
			name:     "uppercase prefix",
			data:     []byte("IMEI:359586015829802,help me,0809231929,F,2234.4669,S,11354.3287,W"),
			deviceID: "359586015829802",
			lat:      -(22 + 34.4669/60),
			lon:      -(113 + 54.3287/60),
		},
		{
			name:     "bare fifteen digit id",
			data:     []byte("359586015829802,tracker,4046.2000,N,07400.3600,W"),
			deviceID: "359586015829802",
			lat:      40 + 46.2/60,
			lon:      -(74 + 0.36/60),
		},
		{
			name:    "missing imei",
			data:    []byte("tracker,0809231929,F,2234.4669,N,11354.3287,E"),
			wantNil: true,
			wantErr: ErrNoDeviceID,
		},
		{
			name:    "imei but no coordinate pair",
			data:    []byte("imei:359586015829802,tracker,0809231929,F"),
			wantNil: true,
		},
		{
			name:    "latitude token with no hemisphere after it",
			data:    []byte("imei:359586015829802,2234.4669,X,11354.3287,E"),
			wantNil: true,
		},
		{
			name:    "empty payload",
			data:    []byte(""),
			wantNil: true,
			wantErr: ErrNoDeviceID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, err := d.Decode(tt.data)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantNil {
				if fix != nil {
					t.Fatalf("Decode() = %+v, want nil", fix)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if fix == nil {
				t.Fatal("Decode() = nil, want fix")
			}
			if fix.DeviceID != tt.deviceID {
				t.Errorf("DeviceID = %q, want %q", fix.DeviceID, tt.deviceID)
			}
			if math.Abs(fix.Latitude-tt.lat) > 1e-6 || math.Abs(fix.Longitude-tt.lon) > 1e-6 {
				t.Errorf("coords = (%v, %v), want (%v, %v)", fix.Latitude, fix.Longitude, tt.lat, tt.lon)
			}
			if fix.Heading != 0 {
				t.Errorf("Heading = %v, want 0 (protocol exposes none)", fix.Heading)
			}
			if fix.Accuracy != 10 {
				t.Errorf("Accuracy = %v, want default 10", fix.Accuracy)
			}
		})
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	d := NewDecoder()
	rng := rand.New(rand.NewSource(3))

	for n := 0; n < 64; n++ {
		for i := 0; i < 100; i++ {
			data := make([]byte, n)
			rng.Read(data)
			fix, _ := d.Decode(data)
			if fix != nil && !model.ValidCoordinates(fix.Latitude, fix.Longitude) {
				t.Fatalf("out-of-bounds fix from random input: %+v", fix)
			}
		}
	}
}
