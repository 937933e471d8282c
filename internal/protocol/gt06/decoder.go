// Package gt06 decodes the binary GT06/Concox family and builds the
// acknowledgment frames the hardware requires to stay connected.
package gt06

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strconv"

	"fleettrack/internal/core/model"
)

var (
	ErrPacketTooShort     = errors.New("packet too short for GT06 protocol")
	ErrInvalidHeader      = errors.New("invalid GT06 protocol header")
	ErrUnsupportedMessage = errors.New("unsupported GT06 message type")
	ErrTruncatedPacket    = errors.New("GT06 packet shorter than declared length")
)

const (
	startByte1 = 0x78
	startByte2 = 0x78

	loginMsg      = 0x01
	locationMsg   = 0x12
	locationMsgV2 = 0x22

	// Location report field offsets from frame start.
	latOffset     = 11
	lonOffset     = 15
	speedOffset   = 19
	headingOffset = 20

	// Raw coordinate unit: 1/1800000 of a degree.
	coordDivisor = 1800000.0
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts a normalized fix from a GT06 frame. Login frames carry no
// position and decode to no fix; their only effect is the acknowledgment,
// which BuildAck computes from the raw frame. Any truncated read is a decode
// failure, never a panic.
func (d *Decoder) Decode(data []byte) (*model.Fix, error) {
	if len(data) < 4 {
		return nil, ErrPacketTooShort
	}
	if data[0] != startByte1 || data[1] != startByte2 {
		return nil, ErrInvalidHeader
	}

	switch data[3] {
	case loginMsg:
		return nil, nil
	case locationMsg, locationMsgV2:
		return d.decodeLocation(data)
	default:
		return nil, ErrUnsupportedMessage
	}
}

func (d *Decoder) decodeLocation(data []byte) (*model.Fix, error) {
	if len(data) < headingOffset+2 {
		return nil, ErrPacketTooShort
	}

	// The device id of a location report is its serial number, read at
	// declared_length-4. The ack serial lives at declared_length-2; the two
	// offsets serve different frame positions and are deliberately not
	// unified (see BuildAck).
	declaredLen := int(data[2])
	serialOffset := declaredLen - 4
	if serialOffset < 0 || serialOffset+2 > len(data) {
		return nil, ErrTruncatedPacket
	}
	serial := binary.BigEndian.Uint16(data[serialOffset : serialOffset+2])

	lat := float64(binary.BigEndian.Uint32(data[latOffset:latOffset+4])) / coordDivisor
	lon := float64(binary.BigEndian.Uint32(data[lonOffset:lonOffset+4])) / coordDivisor
	if !model.ValidCoordinates(lat, lon) {
		return nil, nil
	}

	fix := model.NewFix(strconv.Itoa(int(serial)), "gt06", lat, lon)
	fix.Speed = float64(data[speedOffset])
	fix.Heading = float64(binary.BigEndian.Uint16(data[headingOffset : headingOffset+2]))
	return fix, nil
}

// LoginIMEI extracts the 8-byte IMEI of a login frame as hex text. Used for
// connection logging only; identification of a session happens on the first
// decoded location report.
func LoginIMEI(data []byte) (string, error) {
	if len(data) < 12 {
		return "", ErrPacketTooShort
	}
	if data[0] != startByte1 || data[1] != startByte2 || data[3] != loginMsg {
		return "", ErrInvalidHeader
	}
	return hex.EncodeToString(data[4:12]), nil
}
