package detections

import (
	"image"
	"image/color"
	"testing"
)

func solidNRGBA(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, InputWidth, InputHeight))
	for y := 0; y < InputHeight; y++ {
		for x := 0; x < InputWidth; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestPreprocessorChannelLayout(t *testing.T) {
	p := NewPreprocessor()
	dst := make([]float32, InputWidth*InputHeight*3)

	p.Process(solidNRGBA(color.NRGBA{R: 255, G: 128, B: 0, A: 255}), dst)

	channelSize := InputWidth * InputHeight
	if dst[0] != 1.0 {
		t.Errorf("R channel = %f, want 1.0", dst[0])
	}
	wantG := float32(128) / 255.0
	if dst[channelSize] != wantG {
		t.Errorf("G channel = %f, want %f", dst[channelSize], wantG)
	}
	if dst[2*channelSize] != 0.0 {
		t.Errorf("B channel = %f, want 0.0", dst[2*channelSize])
	}
}

func TestPreprocessorFastPathMatchesGeneric(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, InputWidth, InputHeight))
	for y := 0; y < InputHeight; y++ {
		for x := 0; x < InputWidth; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	p := NewPreprocessor()
	fast := make([]float32, InputWidth*InputHeight*3)
	p.Process(img, fast)

	generic := make([]float32, InputWidth*InputHeight*3)
	p.processGeneric(img, generic)

	for i := range fast {
		if fast[i] != generic[i] {
			t.Fatalf("fast path diverges from generic at index %d: %f vs %f", i, fast[i], generic[i])
		}
	}
}
