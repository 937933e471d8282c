package nmea

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"fleettrack/internal/core/model"
)

func TestDecodeGPRMC(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name     string
		data     []byte
		wantNil  bool
		wantErr  error
		deviceID string
		lat, lon float64
		speed    float64
		heading  float64
	}{
		{
			name:     "standard sentence with bare digit run id",
			data:     []byte("$GPRMC,123519,A,4807.0380,N,01131.0000,E,022.4,084.4,230394,003.1,W*6A,3595860158"),
			deviceID: "3595860158",
			lat:      48 + 7.038/60,
			lon:      11 + 31.0/60,
			speed:    22.4 * 1.852,
			heading:  84.4,
		},
		{
			name:     "id marker wins over digit run",
			data:     []byte("ID:DEV42,$GPRMC,123519,A,4046.2000,N,07400.3600,W,10.0,180.0,230394,,,1234567890123"),
			deviceID: "DEV42",
			lat:      40 + 46.2/60,
			lon:      -(74 + 0.36/60),
			speed:    18.52,
			heading:  180.0,
		},
		{
			name:     "no identifier keeps the sentinel",
			data:     []byte("$GPRMC,123519,A,4046.2000,N,07400.3600,W,0.0,0.0,230394,,"),
			deviceID: UnknownDeviceID,
			lat:      40 + 46.2/60,
			lon:      -(74 + 0.36/60),
		},
		{
			name:     "southern hemisphere negates",
			data:     []byte("$GPRMC,123519,A,4046.2000,S,07400.3600,E,0.0,0.0,230394,,"),
			deviceID: UnknownDeviceID,
			lat:      -(40 + 46.2/60),
			lon:      74 + 0.36/60,
		},
		{
			name:    "gpgga only is not decoded",
			data:    []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"),
			wantNil: true,
		},
		{
			name:    "too few fields",
			data:    []byte("$GPRMC,123519,A,4807.038,N"),
			wantNil: true,
			wantErr: ErrTooFewFields,
		},
		{
			name:    "garbage latitude",
			data:    []byte("$GPRMC,123519,A,notanumber,N,01131.000,E,0,0,230394,,"),
			wantNil: true,
			wantErr: ErrBadCoordinate,
		},
		{
			name:    "empty payload",
			data:    []byte(""),
			wantNil: true,
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
			if math.Abs(fix.Speed-tt.speed) > 1e-9 {
				t.Errorf("Speed = %v, want %v", fix.Speed, tt.speed)
			}
			if fix.Heading != tt.heading {
				t.Errorf("Heading = %v, want %v", fix.Heading, tt.heading)
			}
		})
	}
}

// 4046.2000/N must convert to 40 + 46.2/60 = 40.77 within 1e-6, and S flips
// the sign after conversion.
func TestDMMConversion(t *testing.T) {
	got, err := dmmToDegrees("4046.2000", "N", "S")
	if err != nil {
		t.Fatalf("dmmToDegrees() error = %v", err)
	}
	if math.Abs(got-40.77) > 1e-6 {
		t.Errorf("dmmToDegrees(N) = %v, want 40.77", got)
	}

	got, err = dmmToDegrees("4046.2000", "S", "S")
	if err != nil {
		t.Fatalf("dmmToDegrees() error = %v", err)
	}
	if math.Abs(got+40.77) > 1e-6 {
		t.Errorf("dmmToDegrees(S) = %v, want -40.77", got)
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	d := NewDecoder()
	rng := rand.New(rand.NewSource(2))

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
