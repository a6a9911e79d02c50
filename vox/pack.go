package vox

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// ErrPack is returned for malformed .voxpack archives.
var ErrPack = errors.New("vox: invalid pack")

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

var packCompNames = map[PackCompression]string{
	PackCompNone: "none",
	PackCompZlib: "zlib",
	PackCompZstd: "zstd",
}

func (c PackCompression) String() string {
	if s, ok := packCompNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParsePackCompression maps "none", "zlib" or "zstd" to a PackCompression.
func ParsePackCompression(s string) (PackCompression, error) {
	for c, name := range packCompNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, errors.Errorf("unknown pack compression %q", s)
}

const (
	packMagic    = "VOXTPACK"
	packVersion1 = 1
)

// PackEntry is one encoded .vox chunk inside a pack. Origin is the
// position of the chunk's first cell in the source model.
type PackEntry struct {
	Name   string
	Origin [3]uint32
	Data   []byte
}

// Pack bundles the chunks produced by one tiling run. Identical payloads are
// stored once.
type Pack struct {
	Entries []PackEntry
}

// Marshal encodes the pack with the given compression for the content section.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	blocks, refs := dedupPayloads(p.Entries)

	le := binary.LittleEndian
	var content bytes.Buffer
	_ = binary.Write(&content, le, uint32(len(blocks)))
	for _, b := range blocks {
		_ = binary.Write(&content, le, uint32(len(b)))
		_, _ = content.Write(b)
	}
	_ = binary.Write(&content, le, uint32(len(p.Entries)))
	for i, e := range p.Entries {
		if len(e.Name) > 0xFFFF {
			return nil, errors.Errorf("pack entry name too long: %.32s...", e.Name)
		}
		_ = binary.Write(&content, le, uint16(len(e.Name)))
		_, _ = content.WriteString(e.Name)
		_ = binary.Write(&content, le, e.Origin)
		_ = binary.Write(&content, le, uint32(refs[i]))
	}

	var final []byte
	switch comp {
	case PackCompNone:
		final = content.Bytes()
	case PackCompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		final = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		final = enc.EncodeAll(content.Bytes(), nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported pack compression: %d", comp)
	}

	var out bytes.Buffer
	out.Grow(len(packMagic) + 2 + len(final))
	out.WriteString(packMagic)
	out.WriteByte(packVersion1)
	out.WriteByte(byte(comp))
	out.Write(final)
	return out.Bytes(), nil
}

// UnmarshalPack parses a .voxpack and returns the pack and the compression it used.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, errors.Wrap(ErrPack, "bad magic")
	}
	if v := data[len(packMagic)]; v != packVersion1 {
		return nil, 0, errors.Wrapf(ErrPack, "unsupported version %d", v)
	}
	comp := PackCompression(data[len(packMagic)+1])
	content := data[len(packMagic)+2:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, 0, errors.Wrap(err, "zlib")
		}
		defer zr.Close()
		if content, err = io.ReadAll(zr); err != nil {
			return nil, 0, errors.Wrap(err, "zlib")
		}
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		if content, err = dec.DecodeAll(content, nil); err != nil {
			return nil, 0, errors.Wrap(err, "zstd")
		}
	default:
		return nil, 0, errors.Wrapf(ErrPack, "unsupported compression %d", comp)
	}

	r := packReader{r: bytes.NewReader(content)}
	var nBlocks uint32
	r.read(&nBlocks)
	blocks := make([][]byte, 0, min(int(nBlocks), r.r.Len()/4+1))
	for i := uint32(0); i < nBlocks && r.err == nil; i++ {
		blocks = append(blocks, r.bytes(r.u32()))
	}
	var n uint32
	r.read(&n)
	pack := &Pack{Entries: make([]PackEntry, 0, min(int(n), r.r.Len()/18+1))}
	for i := uint32(0); i < n && r.err == nil; i++ {
		name := string(r.bytes(uint32(r.u16())))
		var origin [3]uint32
		r.read(&origin)
		idx := r.u32()
		if r.err != nil {
			break
		}
		if int(idx) >= len(blocks) {
			return nil, 0, errors.Wrapf(ErrPack, "entry %q references block %d of %d", name, idx, len(blocks))
		}
		pack.Entries = append(pack.Entries, PackEntry{
			Name:   name,
			Origin: origin,
			Data:   blocks[idx],
		})
	}
	if r.err != nil {
		return nil, 0, errors.Wrapf(ErrPack, "content: %v", r.err)
	}
	return pack, comp, nil
}

// dedupPayloads returns the unique payloads and, per entry, the index of its payload.
func dedupPayloads(entries []PackEntry) ([][]byte, []int) {
	blocks := make([][]byte, 0, len(entries))
	index := make(map[uint64][]int, len(entries))
	refs := make([]int, len(entries))
	for i, e := range entries {
		h := xxhash.Sum64(e.Data)
		found := -1
		for _, idx := range index[h] {
			// verify to rule out hash collisions
			if bytes.Equal(blocks[idx], e.Data) {
				found = idx
				break
			}
		}
		if found < 0 {
			found = len(blocks)
			blocks = append(blocks, e.Data)
			index[h] = append(index[h], found)
		}
		refs[i] = found
	}
	return blocks, refs
}

type packReader struct {
	r   *bytes.Reader
	err error
}

func (p *packReader) read(v any) {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
}

func (p *packReader) u16() uint16 {
	var v uint16
	p.read(&v)
	return v
}

func (p *packReader) u32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

func (p *packReader) bytes(n uint32) []byte {
	if p.err != nil {
		return nil
	}
	if int64(n) > int64(p.r.Len()) {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	_, p.err = io.ReadFull(p.r, b)
	return b
}
