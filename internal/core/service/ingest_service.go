package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fleettrack/internal/bus"
	"fleettrack/internal/cache"
	"fleettrack/internal/core/model"
	"fleettrack/internal/core/repository"
	"fleettrack/internal/observability"
	"fleettrack/internal/protocol/detect"
	"fleettrack/internal/protocol/gt06"
	"fleettrack/internal/protocol/head"
	"fleettrack/internal/protocol/nmea"
	"fleettrack/internal/protocol/tk103"
)

// IngestService runs the per-frame pipeline: detect, decode, resolve the
// vehicle, persist, publish, evaluate alerts. Its guiding rule comes from the
// device population it serves: a tracker must never be disconnected or denied
// its acknowledgment because a backend is down, so every downstream failure
// is caught here and converted to a logged drop.
type IngestService struct {
	deviceRepo repository.DeviceRepository
	fixRepo    repository.FixRepository
	events     *bus.Bus
	alerts     *AlertService
	logger     *slog.Logger

	headDecoder  *head.Decoder
	gt06Decoder  *gt06.Decoder
	nmeaDecoder  *nmea.Decoder
	tk103Decoder *tk103.Decoder
}

func NewIngestService(
	deviceRepo repository.DeviceRepository,
	fixRepo repository.FixRepository,
	events *bus.Bus,
	alerts *AlertService,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		deviceRepo:   deviceRepo,
		fixRepo:      fixRepo,
		events:       events,
		alerts:       alerts,
		logger:       logger,
		headDecoder:  head.NewDecoder(),
		gt06Decoder:  gt06.NewDecoder(),
		nmeaDecoder:  nmea.NewDecoder(),
		tk103Decoder: tk103.NewDecoder(),
	}
}

// DecodeFrame classifies a raw frame and runs the matching decoder. No fix is
// the normal outcome for keepalives, logins and garbled frames; decode errors
// are demoted to debug logs because they are expected traffic, not failures.
func (s *IngestService) DecodeFrame(data []byte) (detect.Kind, *model.Fix) {
	start := time.Now()
	defer observability.ObserveDecodeLatency(start)

	kind := detect.Detect(data)

	var fix *model.Fix
	var err error

	switch kind {
	case detect.HeadHTTP:
		fix = s.headDecoder.DecodeHTTP(data)
	case detect.HeadCSV:
		fix = s.headDecoder.DecodeCSV(data)
	case detect.GT06Login, detect.GT06Location:
		fix, err = s.gt06Decoder.Decode(data)
	case detect.NMEA:
		fix, err = s.nmeaDecoder.Decode(data)
	case detect.TK103:
		fix, err = s.tk103Decoder.Decode(data)
	default:
		observability.FramesUnknown.Inc()
		s.logger.Debug("unrecognized protocol, frame dropped", "bytes", len(data))
		return kind, nil
	}

	if err != nil {
		s.logger.Debug("decode failed, frame dropped", "protocol", kind.String(), "error", err)
		return kind, nil
	}
	if fix != nil {
		observability.FixesDecoded.WithLabelValues(fix.Protocol).Inc()
	}
	return kind, fix
}

// ProcessFix runs pipeline steps after decode: directory lookup, status
// update, sink append, event publish, alert evaluation. The returned error is
// non-nil only when the sink append itself failed; everything else is logged
// and absorbed. An unknown device is informational, not an error.
func (s *IngestService) ProcessFix(ctx context.Context, fix *model.Fix) error {
	if fix == nil || !fix.Valid() {
		return nil
	}

	device, err := s.deviceRepo.FindByUniqueID(fix.DeviceID)
	if err != nil {
		observability.DownstreamErrors.WithLabelValues("directory").Inc()
		s.logger.Error("directory lookup failed", "deviceId", fix.DeviceID, "error", err)
		return nil
	}
	if device == nil {
		observability.UnknownDevices.Inc()
		s.logger.Info("fix from unregistered device dropped", "deviceId", fix.DeviceID)
		return nil
	}
	fix.VehicleID = device.VehicleID

	if err := s.deviceRepo.MarkActive(fix.DeviceID, fix.Timestamp); err != nil {
		observability.DownstreamErrors.WithLabelValues("directory").Inc()
		s.logger.Error("device status update failed", "deviceId", fix.DeviceID, "error", err)
	}

	if err := s.fixRepo.Create(fix); err != nil {
		observability.DownstreamErrors.WithLabelValues("sink").Inc()
		s.logger.Error("sink append failed", "deviceId", fix.DeviceID, "error", err)
		return fmt.Errorf("failed to persist fix: %w", err)
	}
	observability.FixesPersisted.Inc()

	if err := cache.SetLatestFix(ctx, fix); err != nil {
		observability.DownstreamErrors.WithLabelValues("cache").Inc()
		s.logger.Warn("latest-fix cache write failed", "deviceId", fix.DeviceID, "error", err)
	}

	if err := s.events.PublishGPSUpdate(fix.VehicleID, fix); err != nil {
		observability.DownstreamErrors.WithLabelValues("bus").Inc()
		s.logger.Error("gps_update publish failed", "vehicleId", fix.VehicleID, "error", err)
	}

	if s.alerts != nil {
		s.alerts.Evaluate(ctx, fix.VehicleID, fix)
	}
	return nil
}

// LatestFix returns the newest fix for a device, serving from the cache when
// possible and falling back to the sink. Nil with no error means no fix yet.
func (s *IngestService) LatestFix(ctx context.Context, deviceID string) (*model.Fix, error) {
	if fix, err := cache.GetLatestFix(ctx, deviceID); err == nil && fix != nil {
		return fix, nil
	}
	return s.fixRepo.FindLatestByDeviceID(deviceID)
}

// Ingest is the full per-frame pipeline for stream transports. Downstream
// errors are swallowed here; the transport only needs the detected kind for
// acknowledgment framing and the fix for session identification.
func (s *IngestService) Ingest(ctx context.Context, data []byte) (detect.Kind, *model.Fix) {
	kind, fix := s.DecodeFrame(data)
	if fix != nil {
		if err := s.ProcessFix(ctx, fix); err != nil {
			s.logger.Error("pipeline failed downstream, device unaffected", "error", err)
		}
	}
	return kind, fix
}
