package vox

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxPrealloc bounds the slice capacity taken from an untrusted XYZI count.
const maxPrealloc = 1 << 20

// DecodeBytes parses a .vox file held in memory.
func DecodeBytes(data []byte) (*Model, error) {
	return Decode(bytes.NewReader(data))
}

// Decode parses a .vox stream. A bad magic or missing MAIN chunk is an
// ErrFormat error. A stream that ends inside a chunk is not an error: the
// model read so far is returned with Truncated set.
func Decode(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, errors.Wrapf(ErrFormat, "reading magic: %v", err)
	}
	if string(head[:]) != magic {
		return nil, errors.Wrapf(ErrFormat, "bad magic %q", head[:])
	}
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrapf(ErrFormat, "reading version: %v", err)
	}
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, errors.Wrapf(ErrFormat, "reading root chunk: %v", err)
	}
	if string(head[:]) != tagMain {
		return nil, errors.Wrapf(ErrFormat, "%s chunk missing, found %q", tagMain, head[:])
	}

	m := &Model{Version: version}
	d := decoder{r: br, m: m}
	if err := d.run(); err != nil {
		if !isShort(err) {
			return nil, err
		}
		m.Truncated = true
	}
	if !m.HasPalette {
		m.Palette = DefaultPalette()
	}
	return m, nil
}

type decoder struct {
	r *bufio.Reader
	m *Model
}

func (d *decoder) run() error {
	// MAIN content and children sizes; neither is needed to walk the children.
	var rootSizes [2]uint32
	if err := binary.Read(d.r, binary.LittleEndian, &rootSizes); err != nil {
		return err
	}
	for {
		var tag [4]byte
		if n, err := io.ReadFull(d.r, tag[:]); n < len(tag) {
			if isShort(err) {
				return nil // end of stream
			}
			return err
		}
		var sizes [2]uint32
		if err := binary.Read(d.r, binary.LittleEndian, &sizes); err != nil {
			return err
		}
		if err := d.chunk(string(tag[:]), sizes[0]); err != nil {
			return err
		}
	}
}

func (d *decoder) chunk(tag string, content uint32) error {
	switch tag {
	case tagSize:
		var s Size
		if err := binary.Read(d.r, binary.LittleEndian, &s); err != nil {
			return err
		}
		d.m.Size = s
	case tagXYZI:
		var n uint32
		if err := binary.Read(d.r, binary.LittleEndian, &n); err != nil {
			return err
		}
		if d.m.Voxels == nil {
			d.m.Voxels = make([]Voxel, 0, min(int(n), maxPrealloc))
		}
		var rec [voxelLen]byte
		for i := uint32(0); i < n; i++ {
			if _, err := io.ReadFull(d.r, rec[:]); err != nil {
				return err
			}
			d.m.Voxels = append(d.m.Voxels, Voxel{X: rec[0], Y: rec[1], Z: rec[2], Color: rec[3]})
		}
	case tagRGBA:
		var raw [paletteLen]byte
		if _, err := io.ReadFull(d.r, raw[:]); err != nil {
			return err
		}
		for i := range d.m.Palette {
			d.m.Palette[i] = RGBA{raw[4*i], raw[4*i+1], raw[4*i+2], raw[4*i+3]}
		}
		d.m.HasPalette = true
	default:
		_, err := io.CopyN(io.Discard, d.r, int64(content))
		return err
	}
	return nil
}

func isShort(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
