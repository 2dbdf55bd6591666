package cv

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Match is one position of a confidence surface at or above a threshold
type Match struct {
	Location   image.Point
	Confidence float64
}

// Surface holds TM_CCOEFF_NORMED scores for every placement of a template in
// a frame. It is (frameW-tmplW+1) x (frameH-tmplH+1), stored row-major.
type Surface struct {
	Width  int
	Height int
	Scores []float64
}

// At returns the score for the placement whose top-left corner is (x, y)
func (s *Surface) At(x, y int) float64 {
	return s.Scores[y*s.Width+x]
}

// Beyond this area the exact int64 numerators could overflow
const maxExactArea = 1 << 23

// integral holds summed-area tables of a grayscale frame and of its squares,
// padded with a zero row and column so window sums need no bounds checks.
type integral struct {
	sum   []int64
	sumSq []int64
	w     int // padded width
}

func buildIntegral(g *image.Gray) *integral {
	b := g.Bounds()
	W, H := b.Dx(), b.Dy()
	pw := W + 1
	in := &integral{
		sum:   make([]int64, pw*(H+1)),
		sumSq: make([]int64, pw*(H+1)),
		w:     pw,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSq int64
		row := g.Pix[y*g.Stride : y*g.Stride+W]
		for x, p := range row {
			v := int64(p)
			rowSum += v
			rowSq += v * v
			off := (y+1)*pw + x + 1
			in.sum[off] = in.sum[off-pw] + rowSum
			in.sumSq[off] = in.sumSq[off-pw] + rowSq
		}
	}
	return in
}

// window returns the pixel sum and squared sum over [x, x+w) x [y, y+h)
func (in *integral) window(x, y, w, h int) (int64, int64) {
	a := y*in.w + x
	b := y*in.w + x + w
	c := (y+h)*in.w + x
	d := (y+h)*in.w + x + w
	return in.sum[d] - in.sum[b] - in.sum[c] + in.sum[a],
		in.sumSq[d] - in.sumSq[b] - in.sumSq[c] + in.sumSq[a]
}

// Confidence computes the normalized correlation coefficient surface of tmpl
// over frame. Degenerate cases follow OpenCV: a flat template scores 1
// everywhere, a flat window scores 0. It returns nil when tmpl does not fit.
func Confidence(frame, tmpl *image.Gray) *Surface {
	if frame.Rect.Min != (image.Point{}) {
		frame = ToGray(frame)
	}
	if tmpl.Rect.Min != (image.Point{}) {
		tmpl = ToGray(tmpl)
	}
	fb, tb := frame.Bounds(), tmpl.Bounds()
	W, H := fb.Dx(), fb.Dy()
	w, h := tb.Dx(), tb.Dy()
	if w == 0 || h == 0 || w > W || h > H {
		return nil
	}

	sw, sh := W-w+1, H-h+1
	surface := &Surface{Width: sw, Height: sh, Scores: make([]float64, sw*sh)}

	n := int64(w * h)
	var sumT, sumT2 int64
	tpix := make([]int64, 0, w*h)
	for y := 0; y < h; y++ {
		for _, p := range tmpl.Pix[y*tmpl.Stride : y*tmpl.Stride+w] {
			v := int64(p)
			tpix = append(tpix, v)
			sumT += v
			sumT2 += v * v
		}
	}
	varT := n*sumT2 - sumT*sumT
	if varT == 0 {
		for i := range surface.Scores {
			surface.Scores[i] = 1
		}
		return surface
	}

	in := buildIntegral(frame)
	exact := n <= maxExactArea

	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			sumF, sumF2 := in.window(x, y, w, h)

			var sumFT int64
			i := 0
			for ty := 0; ty < h; ty++ {
				off := (y+ty)*frame.Stride + x
				for _, p := range frame.Pix[off : off+w] {
					sumFT += int64(p) * tpix[i]
					i++
				}
			}

			var num, varF float64
			if exact {
				num = float64(n*sumFT - sumT*sumF)
				varF = float64(n*sumF2 - sumF*sumF)
			} else {
				fn := float64(n)
				num = fn*float64(sumFT) - float64(sumT)*float64(sumF)
				varF = fn*float64(sumF2) - float64(sumF)*float64(sumF)
			}
			surface.Scores[y*sw+x] = normalize(num, varF, float64(varT))
		}
	}
	return surface
}

func normalize(num, varF, varT float64) float64 {
	var t float64
	if varF == varT {
		// sqrt(v*v) rounds for large v; keep identical windows at exactly 1
		t = varF
	} else {
		t = math.Sqrt(math.Max(varF, 0)) * math.Sqrt(varT)
	}
	switch {
	case math.Abs(num) < t:
		return num / t
	case math.Abs(num) < t*1.125:
		if num > 0 {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// MatchAll returns every placement of tmpl in frame whose confidence is at
// least threshold, in row-major scan order. A template larger than the frame
// yields no matches.
func MatchAll(frame, tmpl *image.Gray, threshold float64) []Match {
	surface := Confidence(frame, tmpl)
	if surface == nil {
		return nil
	}

	var results []Match
	for y := 0; y < surface.Height; y++ {
		for x := 0; x < surface.Width; x++ {
			score := surface.Scores[y*surface.Width+x]
			if score >= threshold {
				results = append(results, Match{
					Location:   image.Point{X: x, Y: y},
					Confidence: score,
				})
			}
		}
	}
	return results
}

// Best returns the highest-scoring placement, first in scan order on ties
func Best(frame, tmpl *image.Gray) (Match, error) {
	surface := Confidence(frame, tmpl)
	if surface == nil {
		return Match{}, ErrTemplateTooLarge
	}
	best := Match{Confidence: math.Inf(-1)}
	for i, score := range surface.Scores {
		if score > best.Confidence {
			best = Match{
				Location:   image.Point{X: i % surface.Width, Y: i / surface.Width},
				Confidence: score,
			}
		}
	}
	return best, nil
}

// ToGray converts an image to 8-bit luminance with its origin moved to (0, 0)
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	W, H := bounds.Dx(), bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, W, H))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < H; y++ {
			so := (y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride + (bounds.Min.X - src.Rect.Min.X)
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+W], src.Pix[so:so+W])
		}
	case *image.RGBA:
		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				idx := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				gray.Pix[y*gray.Stride+x] = luminance(src.Pix[idx], src.Pix[idx+1], src.Pix[idx+2])
			}
		}
	default:
		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				gray.Pix[y*gray.Stride+x] = luminance(c.R, c.G, c.B)
			}
		}
	}
	return gray
}

// luminance uses the ITU-R 601 integer weights
func luminance(r, g, b uint8) uint8 {
	return uint8((int(r)*299 + int(g)*587 + int(b)*114) / 1000)
}

// Error types
var (
	ErrTemplateTooLarge = fmt.Errorf("template larger than search image")
	ErrInvalidImage     = fmt.Errorf("invalid image provided")
)
