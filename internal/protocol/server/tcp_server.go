// Package server is the TCP transport devices stream raw protocol bytes to.
// One goroutine per connection; each connection's frames are processed in
// arrival order, and the GT06 acknowledgment is written before the downstream
// persistence steps run.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"fleettrack/internal/core/service"
	"fleettrack/internal/observability"
	"fleettrack/internal/protocol/detect"
	"fleettrack/internal/protocol/gt06"
	"fleettrack/internal/session"
)

const readBufferSize = 4096

type TCPServer struct {
	addr     string
	listener net.Listener
	registry *session.Registry
	ingest   *service.IngestService
	logger   *slog.Logger
}

func NewTCPServer(port string, registry *session.Registry, ingest *service.IngestService, logger *slog.Logger) *TCPServer {
	return &TCPServer{
		addr:     "0.0.0.0:" + port,
		registry: registry,
		ingest:   ingest,
		logger:   logger,
	}
}

func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", "addr", s.addr)
	go s.acceptConnections()
	return nil
}

// Addr reports the bound listener address, useful when started on port 0.
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *TCPServer) Stop() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *TCPServer) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		observability.TCPConnections.Inc()
		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(60 * time.Second)
	}

	sess := s.registry.Open(conn)
	defer s.registry.Close(sess)

	s.logger.Info("device connected", "remote", sess.RemoteAddr)

	buffer := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buffer)
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("read failed, closing session", "remote", sess.RemoteAddr, "error", err)
			} else {
				s.logger.Info("device disconnected", "remote", sess.RemoteAddr, "deviceId", sess.DeviceID)
			}
			return
		}
		if n == 0 {
			continue
		}

		frame := make([]byte, n)
		copy(frame, buffer[:n])
		observability.FramesReceived.WithLabelValues("tcp").Inc()

		s.handleFrame(sess, conn, frame)
	}
}

// handleFrame runs one frame through the pipeline. The ack only depends on
// the decode having completed; it goes out before persistence and publish so
// the hardware's latency-sensitive retry logic never waits on a backend.
func (s *TCPServer) handleFrame(sess *session.Session, conn net.Conn, frame []byte) {
	kind, fix := s.ingest.DecodeFrame(frame)

	if kind.IsGT06() {
		s.writeAck(sess, conn, frame)
	}
	if kind == detect.GT06Login {
		if imei, err := gt06.LoginIMEI(frame); err == nil {
			s.logger.Info("GT06 login", "remote", sess.RemoteAddr, "imei", imei)
		}
	}

	if fix == nil {
		return
	}

	s.registry.Identify(sess, fix.DeviceID)

	if err := s.ingest.ProcessFix(context.Background(), fix); err != nil {
		// Backend trouble stays on our side of the socket.
		s.logger.Error("pipeline failed downstream, device unaffected",
			"deviceId", fix.DeviceID, "error", err)
	}
}

func (s *TCPServer) writeAck(sess *session.Session, conn net.Conn, frame []byte) {
	ack, err := gt06.BuildAck(frame)
	if err != nil {
		s.logger.Debug("ack not computable for frame", "remote", sess.RemoteAddr, "error", err)
		return
	}
	if _, err := conn.Write(ack); err != nil {
		s.logger.Warn("ack write failed", "remote", sess.RemoteAddr, "error", err)
		return
	}
	observability.AcksSent.Inc()
}
