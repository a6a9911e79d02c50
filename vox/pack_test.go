package vox

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func makeTestPack(t *testing.T) *Pack {
	t.Helper()
	g, _ := GridFromModel(makeTestModel(21, Size{32, 8, 8}, 300))
	s := Split{X: 8}
	chunks := Partition(g, s)
	p := &Pack{}
	for _, k := range chunks.Keys() {
		data, err := chunks[k].Model().MarshalBinary()
		test.That(t, err, test.ShouldBeNil)
		p.Entries = append(p.Entries, PackEntry{Name: "chunk.vox", Origin: k.Origin(s), Data: data})
	}
	return p
}

func TestPackRoundTrip(t *testing.T) {
	want := makeTestPack(t)
	for _, comp := range []PackCompression{PackCompNone, PackCompZlib, PackCompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := want.Marshal(comp)
			test.That(t, err, test.ShouldBeNil)

			got, gotComp, err := UnmarshalPack(data)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, gotComp, test.ShouldEqual, comp)
			test.That(t, got, test.ShouldResemble, want)

			m, err := DecodeBytes(got.Entries[0].Data)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, m.Size, test.ShouldResemble, Size{8, 8, 8})
		})
	}
}

func TestPackDedup(t *testing.T) {
	blob := bytes.Repeat([]byte{1, 2, 3, 4}, 512)
	p := &Pack{Entries: []PackEntry{
		{Name: "a", Origin: [3]uint32{0, 0, 0}, Data: blob},
		{Name: "b", Origin: [3]uint32{16, 0, 0}, Data: bytes.Clone(blob)},
		{Name: "c", Origin: [3]uint32{0, 32, 48}, Data: []byte{9}},
	}}
	blocks, refs := dedupPayloads(p.Entries)
	test.That(t, len(blocks), test.ShouldEqual, 2)
	test.That(t, refs, test.ShouldResemble, []int{0, 0, 1})

	single, err := (&Pack{Entries: p.Entries[:1]}).Marshal(PackCompNone)
	test.That(t, err, test.ShouldBeNil)
	both, err := (&Pack{Entries: p.Entries[:2]}).Marshal(PackCompNone)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(both)-len(single), test.ShouldBeLessThan, 16)

	data, err := p.Marshal(PackCompZstd)
	test.That(t, err, test.ShouldBeNil)
	got, _, err := UnmarshalPack(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, p)
}

func TestPackErrors(t *testing.T) {
	_, _, err := UnmarshalPack([]byte("VOXTPAC"))
	test.That(t, errors.Is(err, ErrPack), test.ShouldBeTrue)

	_, _, err = UnmarshalPack([]byte("VOXTPACK\x02\x00"))
	test.That(t, errors.Is(err, ErrPack), test.ShouldBeTrue)

	_, _, err = UnmarshalPack([]byte("VOXTPACK\x01\x07"))
	test.That(t, errors.Is(err, ErrPack), test.ShouldBeTrue)

	data, err := makeTestPack(t).Marshal(PackCompNone)
	test.That(t, err, test.ShouldBeNil)
	_, _, err = UnmarshalPack(data[:len(data)-3])
	test.That(t, errors.Is(err, ErrPack), test.ShouldBeTrue)

	// one block, one entry pointing at block 4
	bad := []byte("VOXTPACK\x01\x00" +
		"\x01\x00\x00\x00" + "\x01\x00\x00\x00" + "x" +
		"\x01\x00\x00\x00" + "\x01\x00" + "n" + "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00" + "\x04\x00\x00\x00")
	_, _, err = UnmarshalPack(bad)
	test.That(t, errors.Is(err, ErrPack), test.ShouldBeTrue)

	_, err = makeTestPack(t).Marshal(PackCompression(9))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsePackCompression(t *testing.T) {
	c, err := ParsePackCompression("ZSTD")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, PackCompZstd)
	_, err = ParsePackCompression("lz4")
	test.That(t, err, test.ShouldNotBeNil)
}
