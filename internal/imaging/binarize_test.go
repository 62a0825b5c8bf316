package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{100, 100, 100, 255})
	img.Set(2, 0, color.RGBA{200, 200, 200, 255})
	img.Set(3, 0, color.RGBA{255, 255, 255, 255})

	bin := Binarize(img, 128)

	want := []uint8{Ink, Ink, Paper, Paper}
	for x, w := range want {
		if got := bin.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel %d: got %d, want %d", x, got, w)
		}
	}
}

func TestRegion_KeepsPageCoordinates(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 100, 100))

	tests := []struct {
		name string
		r    image.Rectangle
		want image.Rectangle
	}{
		{"inside", image.Rect(10, 20, 30, 40), image.Rect(10, 20, 30, 40)},
		{"clipped", image.Rect(90, 90, 150, 150), image.Rect(90, 90, 100, 100)},
		{"outside", image.Rect(200, 200, 300, 300), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Region(bin, tt.r).Bounds()
			if !got.Eq(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
