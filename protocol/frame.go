package protocol

import "errors"

var (
	ErrBadFrame     = errors.New("malformed frame")
	ErrFrameTooLong = errors.New("frame exceeds maximum length")
)

// CRC16 calculates the CRC16-CCITT checksum used by Klipper message blocks
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc & 0xFF)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// Frame is one validated message block
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// EncodeFrame wraps payload in a message block with the given sequence
// number (low four bits; the destination bits are added here).
func EncodeFrame(output OutputBuffer, seq uint8, payload []byte) error {
	msgLen := MessageHeaderSize + len(payload) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return ErrFrameTooLong
	}

	start := output.CurPosition()
	output.Output([]byte{uint8(msgLen), MessageDest | (seq & MessageSeqMask)})
	output.Output(payload)

	header := []byte{uint8(msgLen), MessageDest | (seq & MessageSeqMask)}
	crc := CRC16(append(header, payload...))
	output.Output([]byte{uint8(crc >> 8), uint8(crc & 0xFF), MessageValueSync})

	if output.CurPosition()-start != msgLen {
		// Scratch buffer ran out of space
		return ErrFrameTooLong
	}
	return nil
}

// FrameDecoder extracts frames from a byte stream.
// It resynchronises on the sync byte after any length, CRC or sync error.
type FrameDecoder struct {
	input        *FifoBuffer
	synchronized bool

	// Dropped counts bytes discarded while out of sync
	Dropped int
}

// NewFrameDecoder creates a decoder with room for several maximum-size frames
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{
		input:        NewFifoBuffer(4 * MessageLengthMax),
		synchronized: true,
	}
}

// Feed appends stream data and returns every complete frame it now holds
func (d *FrameDecoder) Feed(data []byte) []Frame {
	var frames []Frame
	for len(data) > 0 {
		n := d.input.Write(data)
		data = data[n:]
		frames = append(frames, d.parse()...)
		if n == 0 && len(data) > 0 {
			// Buffer full of unparseable data; drop it and resync
			d.Dropped += d.input.Available()
			d.input.Reset()
			d.synchronized = false
		}
	}
	return frames
}

func (d *FrameDecoder) parse() []Frame {
	var frames []Frame
	data := d.input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				d.Dropped += len(data)
				data = nil
				break
			}
			d.Dropped += syncPos
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.synchronized = false
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.synchronized = false
			continue
		}

		// Wait for the full frame
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.synchronized = false
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.synchronized = false
			continue
		}

		payload := make([]byte, msgLen-MessageHeaderSize-MessageTrailerSize)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		frames = append(frames, Frame{
			Sequence: seq & MessageSeqMask,
			Payload:  payload,
		})
		data = data[msgLen:]
	}

	consumed := d.input.Available() - len(data)
	if consumed > 0 {
		d.input.Pop(consumed)
	}
	return frames
}

// DecodeFrame validates a single complete message block
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < MessageLengthMin || len(data) > MessageLengthMax {
		return Frame{}, ErrBadFrame
	}
	if int(data[MessagePositionLen]) != len(data) {
		return Frame{}, ErrBadFrame
	}
	seq := data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest || data[len(data)-MessageTrailerSync] != MessageValueSync {
		return Frame{}, ErrBadFrame
	}
	crc := uint16(data[len(data)-MessageTrailerCRC])<<8 | uint16(data[len(data)-MessageTrailerCRC+1])
	if crc != CRC16(data[:len(data)-MessageTrailerSize]) {
		return Frame{}, ErrBadFrame
	}

	payload := make([]byte, len(data)-MessageLengthMin)
	copy(payload, data[MessageHeaderSize:len(data)-MessageTrailerSize])
	return Frame{Sequence: seq & MessageSeqMask, Payload: payload}, nil
}
