package vox

// Chunk tags and fixed sizes of the .vox container. All integers are little endian.
const (
	magic   = "VOX "
	tagMain = "MAIN"
	tagSize = "SIZE"
	tagXYZI = "XYZI"
	tagRGBA = "RGBA"

	// DefaultVersion is written when a Model carries no version of its own.
	DefaultVersion = 150

	chunkHeaderLen = 12 // tag + content size + children size
	sizeContentLen = 12
	voxelLen       = 4
	paletteLen     = 256 * 4
)

// chunkHeader is the 12 byte prefix of every chunk, MAIN included.
type chunkHeader struct {
	Tag      [4]byte
	Content  uint32
	Children uint32
}

func (h chunkHeader) tag() string { return string(h.Tag[:]) }

func newChunkHeader(tag string, content, children uint32) chunkHeader {
	var h chunkHeader
	copy(h.Tag[:], tag)
	h.Content = content
	h.Children = children
	return h
}
