// Package wire defines the CBOR messages exchanged between split halves.
//
// Messages are CBOR (RFC 8949) maps with integer keys, encoded
// deterministically so identical settings always produce identical bytes.
// A message travels as the payload of one transport frame.
//
// # ConfigSync
//
// The primary half sends its debounce settings whenever they change:
//
//	{
//	  1: algorithm,   // uint8: debounce.Algorithm wire value (0-6)
//	  2: timeMs       // uint8: debounce time in milliseconds
//	}
//
// Unknown keys are ignored on decode for forward compatibility. An algorithm
// outside 0-6 fails validation and the message is dropped.
package wire
