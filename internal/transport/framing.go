// Package transport implements the wire-level message framing: a fixed
// six-field header record and a bulk pixel payload, plus the tag namespace
// the master/worker protocol dispatches on. The codec here is independent
// of the in-process channel transport in internal/rank — it exists so the
// header/payload framing itself is testable byte-for-byte, the same way an
// MPI-style custom struct datatype needs both ends to agree on a layout.
package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/cwbudde/distconv/internal/model"
)

// Tag is the message-kind discriminant carried alongside every transfer,
// distinct from the six fields of the header record itself.
type Tag int32

const (
	TagWorkHeaderSend Tag = iota
	TagWorkDataSend
	TagWorkHeaderReply
	TagWorkDataReply
	TagTerminate
)

func (t Tag) String() string {
	switch t {
	case TagWorkHeaderSend:
		return "WORK_HEADER_SEND"
	case TagWorkDataSend:
		return "WORK_DATA_SEND"
	case TagWorkHeaderReply:
		return "WORK_HEADER_REPLY"
	case TagWorkDataReply:
		return "WORK_DATA_REPLY"
	case TagTerminate:
		return "TERMINATE"
	default:
		return fmt.Sprintf("Tag(%d)", int32(t))
	}
}

// 6 fields * 4 bytes: six signed 32-bit integers in field order
// {true_start, true_end, height, width, num_threads, operation_tag}.
const headerWireSize = 6 * 4

// EncodeHeader renders a ChunkHeader to its canonical 24-byte wire form.
func EncodeHeader(h model.ChunkHeader) []byte {
	buf := make([]byte, headerWireSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.TrueStart))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.TrueEnd))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Width))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.NumThreads))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(h.Op))
	return buf
}

// DecodeHeader parses the canonical wire form back into a ChunkHeader.
func DecodeHeader(buf []byte) (model.ChunkHeader, error) {
	if len(buf) < headerWireSize {
		return model.ChunkHeader{}, fmt.Errorf("transport: header record too short: %d bytes", len(buf))
	}
	return model.ChunkHeader{
		TrueStart:  int32(binary.LittleEndian.Uint32(buf[0:4])),
		TrueEnd:    int32(binary.LittleEndian.Uint32(buf[4:8])),
		Height:     int32(binary.LittleEndian.Uint32(buf[8:12])),
		Width:      int32(binary.LittleEndian.Uint32(buf[12:16])),
		NumThreads: int32(binary.LittleEndian.Uint32(buf[16:20])),
		Op:         model.Operation(int32(binary.LittleEndian.Uint32(buf[20:24]))),
	}, nil
}

// EncodePayload serializes height*width pixel triplets, each three
// unsigned bytes in R,G,B order, contiguous.
func EncodePayload(img *model.Image) []byte {
	buf := make([]byte, len(img.Pixels)*3)
	for i, p := range img.Pixels {
		buf[i*3] = p.R
		buf[i*3+1] = p.G
		buf[i*3+2] = p.B
	}
	return buf
}

// DecodePayload parses a raw pixel payload into an Image of the given
// dimensions.
func DecodePayload(buf []byte, width, height int) (*model.Image, error) {
	want := width * height * 3
	if len(buf) < want {
		return nil, fmt.Errorf("transport: payload too short: got %d want %d", len(buf), want)
	}
	img := model.NewImage(width, height)
	for i := range img.Pixels {
		img.Pixels[i] = model.Pixel{R: buf[i*3], G: buf[i*3+1], B: buf[i*3+2]}
	}
	return img, nil
}
