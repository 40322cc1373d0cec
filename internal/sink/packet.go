// Package sink holds the frame.Publisher implementations that take a frame
// off the consumer and put it on hardware or in front of a viewer.
package sink

import "github.com/chase3718/lou-dome/internal/frame"

// Strip packet layout:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload; CKS is the XOR of LEN, CMD and every payload
// byte.
const (
	SOF0 = 0xAA
	SOF1 = 0x55

	// CmdSetPixels payload: [offset hi][offset lo][count][r g b]*count
	CmdSetPixels = 0x20
	// CmdShow latches the pixels written so far. No payload.
	CmdShow = 0x21

	// MaxChunk keeps LEN within one byte: 1 + 3 + 3*80 = 244.
	MaxChunk = 80
)

// EncodePacket frames cmd and payload. payload must be shorter than 255
// bytes.
func EncodePacket(cmd byte, payload []byte) []byte {
	length := byte(len(payload) + 1)
	cks := length ^ cmd
	for _, b := range payload {
		cks ^= b
	}
	out := make([]byte, 0, len(payload)+5)
	out = append(out, SOF0, SOF1, length, cmd)
	out = append(out, payload...)
	return append(out, cks)
}

// EncodeFrame splits colors into SetPixels packets of at most MaxChunk
// units and closes with a Show packet.
func EncodeFrame(colors []frame.RGB) []byte {
	var out []byte
	payload := make([]byte, 0, 3+3*MaxChunk)
	for off := 0; off < len(colors); off += MaxChunk {
		end := off + MaxChunk
		if end > len(colors) {
			end = len(colors)
		}
		payload = payload[:0]
		payload = append(payload, byte(off>>8), byte(off), byte(end-off))
		for _, c := range colors[off:end] {
			payload = append(payload, c.R(), c.G(), c.B())
		}
		out = append(out, EncodePacket(CmdSetPixels, payload)...)
	}
	return append(out, EncodePacket(CmdShow, nil)...)
}
