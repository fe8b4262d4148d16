package guidemovie

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/nfnt/resize"
	"golang.org/x/image/font/gofont/goregular"
)

// Canvas margins around the pixel plane, leaving room for the two title
// lines above and the coordinate tick labels below.
const (
	marginTop    = 64
	marginBottom = 28
	marginSide   = 12
)

var overlayFont = draw2d.FontData{
	Name:   "goregular",
	Family: draw2d.FontFamilySans,
	Style:  draw2d.FontStyleNormal,
}

func init() {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err) // embedded font
	}
	draw2d.RegisterFont(overlayFont, font)
}

var (
	gridColor = color.RGBA{A: 128} // black, half alpha
	limegreen = color.RGBA{R: 50, G: 205, B: 50, A: 255}
	lime      = color.RGBA{G: 255, A: 255}
)

// renderFrame draws the frame at index n of the padded sequence: grayscale
// plane scaled to the zscale interval, celestial grid when the header allows
// it, titles, and the intro reticle. The result is already downscaled to the
// animator's maximum output size.
func (a *Animator) renderFrame(paths []string, n, copies int, title string, total int) (image.Image, error) {
	frame, err := OpenFrame(paths[n])
	if err != nil {
		return nil, err
	}
	if a.centerCrop {
		frame.CropCenter()
	}

	obsTime, err := frame.ObsTime()
	if err != nil {
		return nil, err
	}

	lo, hi := ZScale(frame.Pix)
	var plane image.Image = grayPlane(frame, lo, hi, a.gamma)
	if a.invert {
		plane = imaging.Invert(plane)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, frame.Width+2*marginSide, frame.Height+marginTop+marginBottom))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.ZP, draw.Src)
	planeRect := image.Rect(marginSide, marginTop, marginSide+frame.Width, marginTop+frame.Height)
	draw.Draw(canvas, planeRect, plane, plane.Bounds().Min, draw.Src)

	gc := draw2dimg.NewGraphicContext(canvas)
	gc.SetFontData(overlayFont)

	// The missing-transform case is the norm for guide frames, not an error.
	if wcs, err := ParseWCS(frame.Header); err == nil {
		drawGrid(gc, wcs, frame.Width, frame.Height)
	}

	count := distinctCount(n, copies)
	gc.SetFillColor(color.Black)
	if title != "" {
		gc.SetFontSize(14)
		centeredString(gc, title, float64(canvas.Rect.Dx())/2, 24)
	}
	gc.SetFontSize(11)
	frameTitle := fmt.Sprintf("UT Date: %s (%d of %d)", obsTime.Format("01/02/06 15:04:05"), count, total)
	centeredString(gc, frameTitle, float64(canvas.Rect.Dx())/2, 48)

	if a.reticle && a.frameMS != a.introMS && count < 6 {
		drawReticle(gc, frame)
	}

	return resize.Thumbnail(uint(a.size), uint(a.size), canvas, resize.Lanczos3), nil
}

// grayPlane maps the pixel plane onto 8-bit grayscale with a power-law
// normalization bounded by the display interval.
func grayPlane(f *Frame, lo, hi, gamma float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	for i, v := range f.Pix {
		v = (v - lo) / span
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		if gamma != 1 {
			v = math.Pow(v, gamma)
		}
		img.Pix[i] = uint8(v*255 + 0.5)
	}
	return img
}

// drawReticle marks the expected target position with 5 and 15 arcsecond
// circles around the reference pixel. Frames without a reference pixel or
// pixel scale are left unmarked.
func drawReticle(gc *draw2dimg.GraphicContext, f *Frame) {
	cx, cy, ok := f.RefPixel()
	if !ok {
		return
	}
	scale, ok := f.PixelScale()
	if !ok {
		return
	}
	gc.SetLineWidth(1.5)
	for _, r := range []struct {
		arcsec float64
		color  color.Color
	}{
		{5, limegreen},
		{15, lime},
	} {
		gc.SetStrokeColor(r.color)
		gc.BeginPath()
		draw2dkit.Circle(gc, marginSide+cx, marginTop+cy, r.arcsec/scale)
		gc.Stroke()
	}
}

func centeredString(gc *draw2dimg.GraphicContext, s string, cx, y float64) {
	left, _, right, _ := gc.GetStringBounds(s)
	gc.FillStringAt(s, cx-(right-left)/2, y)
}

// Grid steps to choose from: right ascension in seconds of time, declination
// in arcminutes, both converted to degrees.
var (
	raSteps  = []float64{1. / 240, 2. / 240, 5. / 240, 10. / 240, 15. / 240, 30. / 240, 0.25, 0.5, 1.25, 2.5, 7.5, 15}
	decSteps = []float64{1. / 60, 2. / 60, 5. / 60, 10. / 60, 15. / 60, 0.5, 1, 2, 5, 10}
)

// drawGrid overlays lines of constant right ascension and declination, with
// hh:mm:ss RA labels exiting the bottom/left edges and dd:mm Dec labels
// exiting the bottom/right edges.
func drawGrid(gc *draw2dimg.GraphicContext, w *WCS, width, height int) {
	fw, fh := float64(width), float64(height)
	raC, decC := w.PixelToSky(fw/2, fh/2)

	raMin, raMax := raC, raC
	decMin, decMax := decC, decC
	for _, c := range [][2]float64{{0, 0}, {fw, 0}, {0, fh}, {fw, fh}} {
		ra, dec := w.PixelToSky(c[0], c[1])
		ra = raC + wrapDelta(ra-raC)
		if ra < raMin {
			raMin = ra
		}
		if ra > raMax {
			raMax = ra
		}
		if dec < decMin {
			decMin = dec
		}
		if dec > decMax {
			decMax = dec
		}
	}

	raStep := pickStep(raMax-raMin, raSteps)
	decStep := pickStep(decMax-decMin, decSteps)

	gc.SetFontSize(8)
	gc.SetLineWidth(1)

	for ra := math.Ceil(raMin/raStep) * raStep; ra <= raMax; ra += raStep {
		pts := sampleLine(w, func(t float64) (float64, float64) {
			return ra, decMin + (decMax-decMin)*t
		})
		strokePolyline(gc, pts, fw, fh)
		if x, y, ok := edgeCrossing(pts, fw, fh, edgeBottom); ok {
			labelAt(gc, formatRA(ra), marginSide+x-14, marginTop+y+14)
		} else if x, y, ok := edgeCrossing(pts, fw, fh, edgeLeft); ok {
			labelAt(gc, formatRA(ra), marginSide+x+2, marginTop+y-2)
		}
	}

	for dec := math.Ceil(decMin/decStep) * decStep; dec <= decMax; dec += decStep {
		pts := sampleLine(w, func(t float64) (float64, float64) {
			return raC + wrapDelta(raMin-raC) + (raMax-raMin)*t, dec
		})
		strokePolyline(gc, pts, fw, fh)
		if x, y, ok := edgeCrossing(pts, fw, fh, edgeRight); ok {
			labelAt(gc, formatDec(dec), marginSide+x-34, marginTop+y-2)
		} else if x, y, ok := edgeCrossing(pts, fw, fh, edgeBottom); ok {
			labelAt(gc, formatDec(dec), marginSide+x+2, marginTop+y+14)
		}
	}
}

func labelAt(gc *draw2dimg.GraphicContext, s string, x, y float64) {
	gc.SetFillColor(color.Black)
	gc.FillStringAt(s, x, y)
}

// sampleLine traces an iso-coordinate sky line into pixel space.
func sampleLine(w *WCS, at func(t float64) (ra, dec float64)) [][2]float64 {
	const samples = 32
	pts := make([][2]float64, 0, samples+1)
	for i := 0; i <= samples; i++ {
		ra, dec := at(float64(i) / samples)
		x, y := w.SkyToPixel(ra, dec)
		pts = append(pts, [2]float64{x, y})
	}
	return pts
}

// strokePolyline draws the runs of a polyline that stay inside the pixel
// plane, so grid lines never spill into the title and label margins.
func strokePolyline(gc *draw2dimg.GraphicContext, pts [][2]float64, w, h float64) {
	gc.SetStrokeColor(gridColor)
	inRun := false
	for _, p := range pts {
		if p[0] < 0 || p[0] > w || p[1] < 0 || p[1] > h {
			if inRun {
				gc.Stroke()
				inRun = false
			}
			continue
		}
		if !inRun {
			gc.BeginPath()
			gc.MoveTo(marginSide+p[0], marginTop+p[1])
			inRun = true
			continue
		}
		gc.LineTo(marginSide+p[0], marginTop+p[1])
	}
	if inRun {
		gc.Stroke()
	}
}

type edge int

const (
	edgeBottom edge = iota
	edgeLeft
	edgeRight
)

// edgeCrossing finds where a polyline crosses an image edge, interpolating
// between the straddling samples.
func edgeCrossing(pts [][2]float64, w, h float64, e edge) (x, y float64, ok bool) {
	for i := 1; i < len(pts); i++ {
		p, q := pts[i-1], pts[i]
		switch e {
		case edgeBottom:
			if (p[1] <= h) != (q[1] <= h) && q[1] != p[1] {
				t := (h - p[1]) / (q[1] - p[1])
				x = p[0] + t*(q[0]-p[0])
				if x >= 0 && x <= w {
					return x, h, true
				}
			}
		case edgeLeft:
			if (p[0] >= 0) != (q[0] >= 0) && q[0] != p[0] {
				t := (0 - p[0]) / (q[0] - p[0])
				y = p[1] + t*(q[1]-p[1])
				if y >= 0 && y <= h {
					return 0, y, true
				}
			}
		case edgeRight:
			if (p[0] <= w) != (q[0] <= w) && q[0] != p[0] {
				t := (w - p[0]) / (q[0] - p[0])
				y = p[1] + t*(q[1]-p[1])
				if y >= 0 && y <= h {
					return w, y, true
				}
			}
		}
	}
	return 0, 0, false
}

// pickStep returns the smallest step that covers the span with at most four
// grid lines.
func pickStep(span float64, steps []float64) float64 {
	for _, s := range steps {
		if span/s <= 4 {
			return s
		}
	}
	return steps[len(steps)-1]
}

func formatRA(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	sec := int(deg/15*3600 + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600%24, sec/60%60, sec%60)
}

func formatDec(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	min := int(deg*60 + 0.5)
	return fmt.Sprintf("%s%02d:%02d", sign, min/60, min%60)
}

// wrapDelta maps an RA difference into [-180, 180) degrees.
func wrapDelta(d float64) float64 {
	for d < -180 {
		d += 360
	}
	for d >= 180 {
		d -= 360
	}
	return d
}
