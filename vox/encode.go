package vox

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Encode writes m as a .vox stream with exactly three children: SIZE, XYZI
// and RGBA, in that order.
func Encode(w io.Writer, m *Model) error {
	if uint64(len(m.Voxels)) > (math.MaxUint32-chunkHeaderLen*3-sizeContentLen-4-paletteLen)/voxelLen {
		return errors.Errorf("vox: too many voxels to encode (%d)", len(m.Voxels))
	}
	version := m.Version
	if version == 0 {
		version = DefaultVersion
	}
	xyziContent := uint32(4 + voxelLen*len(m.Voxels))
	children := uint32(chunkHeaderLen+sizeContentLen) +
		chunkHeaderLen + xyziContent +
		chunkHeaderLen + paletteLen

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	_, _ = bw.WriteString(magic)
	_ = binary.Write(bw, le, version)
	_ = binary.Write(bw, le, newChunkHeader(tagMain, 0, children))

	_ = binary.Write(bw, le, newChunkHeader(tagSize, sizeContentLen, 0))
	_ = binary.Write(bw, le, m.Size)

	_ = binary.Write(bw, le, newChunkHeader(tagXYZI, xyziContent, 0))
	_ = binary.Write(bw, le, uint32(len(m.Voxels)))
	for _, v := range m.Voxels {
		_, _ = bw.Write([]byte{v.X, v.Y, v.Z, v.Color})
	}

	_ = binary.Write(bw, le, newChunkHeader(tagRGBA, paletteLen, 0))
	for _, c := range m.Palette {
		_, _ = bw.Write([]byte{c.R, c.G, c.B, c.A})
	}
	// bufio keeps the first write error; Flush reports it.
	return bw.Flush()
}

// MarshalBinary returns the encoded model.
func (m *Model) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(8 + chunkHeaderLen*4 + sizeContentLen + 4 + voxelLen*len(m.Voxels) + paletteLen)
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes data into m. A truncated stream is not an error;
// check m.Truncated.
func (m *Model) UnmarshalBinary(data []byte) error {
	dec, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*m = *dec
	return nil
}
