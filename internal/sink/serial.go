package sink

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/chase3718/lou-dome/internal/frame"
)

// DefaultBaud suits the strip controller's USB serial link.
const DefaultBaud = 921600

// SerialStrip publishes frames to an LED strip controller on a serial port.
type SerialStrip struct {
	mu   sync.Mutex
	port io.WriteCloser
	log  *slog.Logger
	seq  uint64
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int, logger *slog.Logger) (*SerialStrip, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s at %d baud: %w", name, baud, err)
	}
	s := NewSerialStrip(p, logger)
	s.log.Info("serial: port opened", "device", name, "baud", baud)
	return s, nil
}

// NewSerialStrip writes frames to w.
func NewSerialStrip(w io.WriteCloser, logger *slog.Logger) *SerialStrip {
	if logger == nil {
		logger = slog.Default()
	}
	return &SerialStrip{port: w, log: logger}
}

// SerialPorts lists the serial devices present on the host.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

func (s *SerialStrip) Publish(colors []frame.RGB) error {
	data := EncodeFrame(colors)

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	s.seq++
	s.log.Debug("serial: frame sent", "bytes", n, "seq", s.seq, "units", len(colors))
	return nil
}

func (s *SerialStrip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("serial: closing port")
	return s.port.Close()
}
