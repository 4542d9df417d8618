package sppfcpg

import "strings"

// Offset is a 32-bit byte position into an Image, used in lieu of pointers.
// The sentinel value 0 means "absent" everywhere it appears in this package
// (it can never be a valid record offset because every image reserves the
// header's headerSize bytes at the start of the file).
type Offset uint32

// noOffset is the sentinel meaning "absent" (see Offset).
const noOffset Offset = 0

// IsAbsent reports whether o is the sentinel "absent" offset.
func (o Offset) IsAbsent() bool { return o == noOffset }

// String renders the offset as an uppercase hex byte count, e.g. "@000001A4".
// The format echoes the Key.String() hex-tuple rendering used elsewhere in
// this codebase's lineage for debug-friendly byte-level values.
func (o Offset) String() string {
	if o == noOffset {
		return "@absent"
	}
	var sb strings.Builder
	sb.WriteByte('@')
	const hex = "0123456789ABCDEF"
	buf := [8]byte{}
	v := uint32(o)
	for i := 7; i >= 0; i-- {
		buf[i] = hex[v&0xF]
		v >>= 4
	}
	sb.Write(buf[:])
	return sb.String()
}
