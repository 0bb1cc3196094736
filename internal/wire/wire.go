package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version byte = 1
	kindDoc byte = 1
)

var (
	ErrCorrupt = errors.New("jsoner: corrupt entry")
	magic4     = [...]byte{'J', 'S', 'N', 'R'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Doc: magic(4) | ver(1) | kind(1=doc) | clen(u8) | codec(clen) | vlen(u32 be) | payload(vlen)
//
// codec names the backend that wrote payload, so a reader configured with a
// different one can tell the entry apart from a decode failure.
func EncodeDoc(codec string, payload []byte) ([]byte, error) {
	if len(codec) > 0xFF {
		return nil, fmt.Errorf("jsoner: codec name too long (%d)", len(codec))
	}
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 1 + len(codec) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindDoc)

	buf.WriteByte(byte(len(codec)))
	buf.WriteString(codec)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes(), nil
}

// DecodeDoc validates a frame and returns the codec name and a payload slice
// aliasing b.
func DecodeDoc(b []byte) (codec string, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 1
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindDoc {
		return "", nil, ErrCorrupt
	}

	off := 6

	// codec
	clen := int(b[off])
	off++
	if clen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	codec = string(b[off : off+clen])
	off += clen

	// vlen
	if off+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact: no trailing bytes
		return "", nil, ErrCorrupt
	}

	return codec, b[off : off+vlen], nil
}
