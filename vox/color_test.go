package vox

import (
	"testing"

	"go.viam.com/test"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	test.That(t, p[0], test.ShouldResemble, RGBA{})
	test.That(t, p[0].Visible(), test.ShouldBeFalse)
	for _, c := range p[1:] {
		test.That(t, c, test.ShouldResemble, RGBA{255, 255, 255, 255})
	}
}

func TestHexColor(t *testing.T) {
	c, err := ParseHexColor("#0a141e")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldResemble, RGBA{10, 20, 30, 255})
	test.That(t, c.Hex(), test.ShouldEqual, "#0a141eff")

	c, err = ParseHexColor("#0A141E80")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldResemble, RGBA{10, 20, 30, 128})

	for _, bad := range []string{"", "0a141e", "#0a14", "#0a141g"} {
		_, err = ParseHexColor(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}

	f := RGBA{255, 0, 51, 255}.Float()
	test.That(t, f[0], test.ShouldEqual, 1.0)
	test.That(t, f[2], test.ShouldAlmostEqual, 0.2)
}
