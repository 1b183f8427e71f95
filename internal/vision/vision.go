// Package vision provides the local pixel analysis used by the analysis
// pipeline: grayscale statistics for every frame, and the coarse edge and
// face heuristics that feed the fallback classifier when the model sidecar
// is unavailable.
package vision

import (
	"image"
)

// Fixed heuristic thresholds, matched to typical ESP32-CAM framing.
const (
	// edgeThreshold is the minimum Sobel gradient magnitude for a pixel
	// to count as an edge.
	edgeThreshold = 150

	// faceCellSize is the side of one grid cell, in pixels, used for
	// skin-region detection.
	faceCellSize = 16

	// minFaceCells is the minimum connected skin-cell count for a region
	// to count as a face.
	minFaceCells = 4
)

// Gray is an 8-bit luminance plane extracted from a frame.
type Gray struct {
	Pix  []uint8
	W, H int
}

// Grayscale converts an image to a luminance plane using the usual
// 0.299/0.587/0.114 weights.
func Grayscale(img image.Image) *Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := &Gray{Pix: make([]uint8, w*h), W: w, H: h}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			// 16-bit channels; same coefficients as image/color.GrayModel.
			lum := (19595*r + 38470*gr + 7471*b + 1<<15) >> 24
			g.Pix[i] = uint8(lum)
			i++
		}
	}
	return g
}

// Brightness returns the mean intensity of the plane in [0,255].
func (g *Gray) Brightness() float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, p := range g.Pix {
		sum += uint64(p)
	}
	return float64(sum) / float64(len(g.Pix))
}

// EdgeDensity returns the percentage of pixels whose Sobel gradient
// magnitude exceeds the fixed edge threshold. Border pixels are skipped.
func (g *Gray) EdgeDensity() float64 {
	if g.W < 3 || g.H < 3 {
		return 0
	}

	at := func(x, y int) int { return int(g.Pix[y*g.W+x]) }

	edges := 0
	for y := 1; y < g.H-1; y++ {
		for x := 1; x < g.W-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if abs(gx)+abs(gy) > edgeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(g.W*g.H) * 100
}

// CountFaceRegions estimates the number of face-sized regions in the frame
// by segmenting skin-tone pixels on a coarse grid and counting connected
// regions above a minimum size. It stands in for a real face detector on
// the fallback path and must stay purely local.
func CountFaceRegions(img image.Image) int {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cols, rows := w/faceCellSize, h/faceCellSize
	if cols == 0 || rows == 0 {
		return 0
	}

	// Mark grid cells where the majority of sampled pixels look like skin.
	skin := make([]bool, cols*rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			hits, samples := 0, 0
			for dy := 0; dy < faceCellSize; dy += 4 {
				for dx := 0; dx < faceCellSize; dx += 4 {
					px := bounds.Min.X + cx*faceCellSize + dx
					py := bounds.Min.Y + cy*faceCellSize + dy
					r, g, b, _ := img.At(px, py).RGBA()
					if isSkin(uint8(r>>8), uint8(g>>8), uint8(b>>8)) {
						hits++
					}
					samples++
				}
			}
			skin[cy*cols+cx] = hits*2 > samples
		}
	}

	// Count 4-connected skin regions of at least minFaceCells cells.
	visited := make([]bool, cols*rows)
	faces := 0
	for i := range skin {
		if !skin[i] || visited[i] {
			continue
		}
		if floodFill(skin, visited, cols, rows, i) >= minFaceCells {
			faces++
		}
	}
	return faces
}

// isSkin applies a classic RGB skin-tone rule with fixed bounds.
func isSkin(r, g, b uint8) bool {
	if r < 95 || g < 40 || b < 20 {
		return false
	}
	if r <= g || r <= b {
		return false
	}
	maxc := max(r, max(g, b))
	minc := min(r, min(g, b))
	return maxc-minc > 15
}

func floodFill(skin, visited []bool, cols, rows, start int) int {
	stack := []int{start}
	visited[start] = true
	size := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		x, y := i%cols, i/cols
		for _, n := range [][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			nx, ny := n[0], n[1]
			if nx < 0 || ny < 0 || nx >= cols || ny >= rows {
				continue
			}
			j := ny*cols + nx
			if skin[j] && !visited[j] {
				visited[j] = true
				stack = append(stack, j)
			}
		}
	}
	return size
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
