// Package transport frames messages exchanged between the halves of a split
// keyboard.
//
// Each frame is a 4-byte big-endian payload length followed by the payload:
//
//	+--------+--------+--------+--------+---------------------+
//	|          length (uint32 BE)       |  payload (length B) |
//	+--------+--------+--------+--------+---------------------+
//
// Empty frames are invalid. Frames larger than the configured maximum are
// rejected on both ends. Readers and writers can mirror every frame to a
// log.Logger as FRAME events.
package transport
