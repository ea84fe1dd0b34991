// File: protocol/frame_codec.go
// Package protocol implements the outbound frame serializer and its
// dual decoder.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server frames are always final, never masked, and carry one of the
// three payload length encodings of RFC 6455 §5.2.

package protocol

import (
	"encoding/binary"
	"errors"

	"github.com/momentics/embedws/api"
)

// EncodeFrameHeader serializes the header of a server frame carrying n
// payload bytes. Lengths above MaxServerPayload fail with
// api.ErrMessageTooLong.
func EncodeFrameHeader(op Opcode, n uint64) ([]byte, error) {
	b0 := byte(FinBit) | byte(op&0x0F)

	switch {
	case n <= MaxClientPayload:
		return []byte{b0, byte(n)}, nil
	case n <= 0xFFFF:
		hdr := make([]byte, 4)
		hdr[0] = b0
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(n))
		return hdr, nil
	case n <= MaxServerPayload:
		hdr := make([]byte, 10)
		hdr[0] = b0
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:], n)
		return hdr, nil
	default:
		return nil, api.ErrMessageTooLong
	}
}

// EncodeFrame serializes a complete server frame: header followed by
// the literal payload bytes.
func EncodeFrame(op Opcode, payload []byte) ([]byte, error) {
	hdr, err := EncodeFrameHeader(op, uint64(len(payload)))
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(hdr)+len(payload))
	frame = append(frame, hdr...)
	frame = append(frame, payload...)
	return frame, nil
}

// DecodeFrame parses one frame from raw, accepting both masked client
// frames and unmasked server frames. It is the serializer's dual:
// DecodeFrame(EncodeFrame(op, p)) yields (op, p) losslessly.
func DecodeFrame(raw []byte) (Opcode, []byte, error) {
	if len(raw) < 2 {
		return 0, nil, errors.New("frame too short")
	}
	if raw[0]&FinBit == 0 {
		return 0, nil, errors.New("fragmented frame")
	}
	op := Opcode(raw[0] & 0x0F)
	masked := raw[1]&MaskBit != 0
	length := uint64(raw[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(raw) < offset+2 {
			return 0, nil, errors.New("frame too short for extended payload length")
		}
		length = uint64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case 127:
		if len(raw) < offset+8 {
			return 0, nil, errors.New("frame too short for extended payload length")
		}
		length = binary.BigEndian.Uint64(raw[offset:])
		offset += 8
	}

	var key [4]byte
	if masked {
		if len(raw) < offset+4 {
			return 0, nil, errors.New("frame too short for mask key")
		}
		copy(key[:], raw[offset:offset+4])
		offset += 4
	}

	if uint64(len(raw)-offset) < length {
		return 0, nil, errors.New("payload truncated")
	}

	payload := make([]byte, length)
	copy(payload, raw[offset:offset+int(length)])
	if masked {
		for i := range payload {
			payload[i] ^= key[i%4]
		}
	}
	return op, payload, nil
}
