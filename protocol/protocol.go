// Package protocol implements the framed report protocol between the
// slow clock firmware and host tools.
//
// Frames use Klipper's block layout: length, sequence, payload, CRC16 and a
// trailing sync byte. Payload fields are VLQ encoded.
package protocol

// Version represents the report protocol version
const Version = "0.1.0"

// Frame layout constants
const (
	MessageMax = 512 // Scratch buffer size

	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Message identifiers (first VLQ of a payload)
const (
	MsgSlowClockReport = 1
)
