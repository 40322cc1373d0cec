package sink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/chase3718/lou-dome/internal/frame"
)

const (
	ArtNetPort = 6454

	// UnitsPerUniverse fills 510 of a universe's 512 DMX channels.
	UnitsPerUniverse = 170

	dmxDataSize     = 512
	artDmxHeaderLen = 18

	// DefaultRefreshEvery forces a resend of unchanged universes every n
	// frames so nodes that missed a packet catch up.
	DefaultRefreshEvery = 30
)

// Universe routes one Art-Net universe to a node. Universes are filled with
// consecutive runs of UnitsPerUniverse units in the order they are given.
type Universe struct {
	Universe int    `yaml:"universe"`
	Host     string `yaml:"host"`
}

type universeOut struct {
	universe int
	w        io.Writer
	header   []byte
	last     []byte
	sent     bool
	seq      byte
}

// ArtNet publishes frames as ArtDmx packets, sending only universes whose
// data changed since the previous frame.
type ArtNet struct {
	mu           sync.Mutex
	outs         []*universeOut
	log          *slog.Logger
	refreshEvery int
	frames       int
	closers      []io.Closer
}

// ArtNetOutput pairs a universe number with the writer its packets go to.
type ArtNetOutput struct {
	Universe int
	W        io.Writer
}

// NewArtNet publishes to the given outputs. refreshEvery <= 0 picks
// DefaultRefreshEvery.
func NewArtNet(outputs []ArtNetOutput, refreshEvery int, logger *slog.Logger) *ArtNet {
	if logger == nil {
		logger = slog.Default()
	}
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshEvery
	}
	a := &ArtNet{log: logger, refreshEvery: refreshEvery}
	for _, o := range outputs {
		a.outs = append(a.outs, &universeOut{
			universe: o.Universe,
			w:        o.W,
			header:   ArtDmxHeader(o.Universe),
			last:     make([]byte, dmxDataSize),
		})
	}
	return a
}

// DialArtNet opens a UDP socket per universe.
func DialArtNet(universes []Universe, logger *slog.Logger) (*ArtNet, error) {
	var outputs []ArtNetOutput
	var closers []io.Closer
	for _, u := range universes {
		addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(u.Host, strconv.Itoa(ArtNetPort)))
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("artnet: universe %d: %w", u.Universe, err)
		}
		conn, err := net.DialUDP("udp", nil, addr)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("artnet: universe %d: %w", u.Universe, err)
		}
		outputs = append(outputs, ArtNetOutput{Universe: u.Universe, W: conn})
		closers = append(closers, conn)
	}
	a := NewArtNet(outputs, 0, logger)
	a.closers = closers
	a.log.Info("artnet: sender ready", "universes", len(universes))
	return a, nil
}

// ArtDmxHeader builds the fixed part of an ArtDmx packet for universe. The
// sequence byte at offset 12 is left zero.
func ArtDmxHeader(universe int) []byte {
	h := make([]byte, artDmxHeaderLen)
	copy(h[0:8], "Art-Net\x00")
	binary.LittleEndian.PutUint16(h[8:10], 0x5000) // OpDmx
	binary.BigEndian.PutUint16(h[10:12], 14)       // protocol version
	binary.LittleEndian.PutUint16(h[14:16], uint16(universe))
	binary.BigEndian.PutUint16(h[16:18], dmxDataSize)
	return h
}

func (a *ArtNet) Publish(colors []frame.RGB) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frames++
	force := a.frames >= a.refreshEvery
	if force {
		a.frames = 0
	}

	data := make([]byte, dmxDataSize)
	var errs []error
	for i, o := range a.outs {
		clear(data)
		base := i * UnitsPerUniverse
		for j := 0; j < UnitsPerUniverse && base+j < len(colors); j++ {
			c := colors[base+j]
			data[3*j], data[3*j+1], data[3*j+2] = c.R(), c.G(), c.B()
		}
		if o.sent && !force && bytes.Equal(o.last, data) {
			continue
		}

		o.seq++
		if o.seq == 0 {
			o.seq = 1
		}
		packet := make([]byte, artDmxHeaderLen+dmxDataSize)
		copy(packet, o.header)
		packet[12] = o.seq
		copy(packet[artDmxHeaderLen:], data)
		if _, err := o.w.Write(packet); err != nil {
			errs = append(errs, fmt.Errorf("artnet: universe %d: %w", o.universe, err))
			continue
		}
		copy(o.last, data)
		o.sent = true
		a.log.Debug("artnet: universe sent", "universe", o.universe, "seq", o.seq)
	}
	return errors.Join(errs...)
}

func (a *ArtNet) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
