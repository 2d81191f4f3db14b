package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten"
)

// Nine draws a nine-slice image stretched to any rectangle; corners keep
// their size and the edges and centre stretch.
type Nine struct {
	image          *ebiten.Image
	alpha          float64
	R, G, B, Scale float64
	// source cut lines: 0, inner start, inner end, full size
	edges [4]int

	x, y, width, height int
	targets             [3][2]float64
	scales              [3][2]float64
}

func NewNine(img *ebiten.Image, border int, scale float64) *Nine {
	w, _ := img.Size()
	return &Nine{
		image: img,
		alpha: 1,
		R:     1, G: 1, B: 1,
		Scale: scale,
		edges: [4]int{0, border, w - border, w},
	}
}

func (n *Nine) SetColor(c GameColor, alpha float64) {
	n.R, n.G, n.B, n.alpha = c.r, c.g, c.b, alpha
}

func (n *Nine) SetRect(x, y, width, height int) {
	n.x, n.y, n.width, n.height = x, y, width, height
	size := [2]int{width, height}
	origin := [2]int{x, y}
	for axis := 0; axis < 2; axis++ {
		corner := n.Scale * float64(n.edges[1])
		far := n.Scale * float64(n.edges[3]-n.edges[2])
		inner := float64(size[axis]) - corner - far

		n.targets[0][axis] = float64(origin[axis])
		n.targets[1][axis] = float64(origin[axis]) + corner
		n.targets[2][axis] = float64(origin[axis]+size[axis]) - far

		n.scales[0][axis] = n.Scale
		n.scales[1][axis] = inner / float64(n.edges[2]-n.edges[1])
		n.scales[2][axis] = n.Scale
	}
}

func (n *Nine) Draw(screen *ebiten.Image) {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(n.scales[col][0], n.scales[row][1])
			op.GeoM.Translate(n.targets[col][0], n.targets[row][1])
			op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
			src := image.Rect(n.edges[col], n.edges[row], n.edges[col+1], n.edges[row+1])
			_ = screen.DrawImage(n.image.SubImage(src).(*ebiten.Image), op)
		}
	}
}

// roundedTile is a white square with transparent rounded corners.
func roundedTile(size, radius int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r2 := radius * radius
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cx, cy := clamp(x, radius, size-1-radius), clamp(y, radius, size-1-radius)
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func disc(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+.5-r, float64(y)+.5-r
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
