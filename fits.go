package guidemovie

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/astrogo/fitsio"
)

// Header holds the cards of the FITS extension a frame was read from, keyed
// by card name.
type Header map[string]interface{}

// Frame is one guide exposure: a 2-D pixel plane plus the header cards
// needed for titles, overlays and output naming. Frames are read transiently
// per render and never persisted.
type Frame struct {
	Path   string
	Width  int
	Height int
	Pix    []float64 // row-major, x fastest
	Header Header
}

// Extensions searched for pixel data, in order of preference. The primary
// HDU is the fallback when neither is present.
var imageExtensions = []string{"SCI", "COMPRESSED_IMAGE"}

// OpenFrame reads a guide frame from path. The pixel plane and header come
// from the SCI extension, else the COMPRESSED_IMAGE extension, else the
// primary HDU. BSCALE/BZERO are applied to the pixel values when present.
func OpenFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, fmt.Errorf("guidemovie: open %s: %v", path, err)
	}
	defer fits.Close()

	hdu := selectHDU(fits)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("guidemovie: %s: extension %q holds no image", path, hdu.Name())
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) < 2 || axes[0] <= 0 || axes[1] <= 0 {
		return nil, fmt.Errorf("guidemovie: %s: no 2-D image plane", path)
	}
	pix, err := readPlane(img, hdr.Bitpix(), axes[0]*axes[1])
	if err != nil {
		return nil, fmt.Errorf("guidemovie: %s: %v", path, err)
	}

	header := make(Header, len(hdr.Keys()))
	for _, key := range hdr.Keys() {
		if card := hdr.Get(key); card != nil {
			header[key] = card.Value
		}
	}

	if scale, zero, ok := header.scaling(); ok {
		for i := range pix {
			pix[i] = pix[i]*scale + zero
		}
	}

	return &Frame{
		Path:   path,
		Width:  axes[0],
		Height: axes[1],
		Pix:    pix,
		Header: header,
	}, nil
}

// selectHDU picks the HDU a frame is rendered from: the first extension
// named SCI, else COMPRESSED_IMAGE, else the primary HDU.
func selectHDU(f *fitsio.File) fitsio.HDU {
	for _, name := range imageExtensions {
		for _, hdu := range f.HDUs() {
			if hdu.Name() == name {
				return hdu
			}
		}
	}
	return f.HDU(0)
}

func readPlane(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 8:
		raw := make([]int8, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(raw[i])
		}
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(raw[i])
		}
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(raw[i])
		}
	case 64:
		raw := make([]int64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(raw[i])
		}
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(raw[i])
		}
	case -64:
		raw := make([]float64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		copy(out, raw)
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

// CropCenter keeps the central region of the plane, cutting 1/2.5 of each
// dimension from both edges, and shifts CRPIX1/2 by the crop offsets so
// astrometric overlays stay aligned.
func (f *Frame) CropCenter() {
	cx := int(float64(f.Width) / 2.5)
	cy := int(float64(f.Height) / 2.5)
	w := f.Width - 2*cx
	h := f.Height - 2*cy
	if w <= 0 || h <= 0 {
		return
	}
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := (y+cy)*f.Width + cx
		copy(pix[y*w:(y+1)*w], f.Pix[row:row+w])
	}
	f.Pix, f.Width, f.Height = pix, w, h
	if v, ok := f.Header.num("CRPIX1"); ok {
		f.Header["CRPIX1"] = v - float64(cx)
	}
	if v, ok := f.Header.num("CRPIX2"); ok {
		f.Header["CRPIX2"] = v - float64(cy)
	}
}

// Formats accepted for the observation timestamp, with and without
// fractional seconds.
var obsTimeFormats = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ObsTime parses the observation timestamp from the DATE-OBS card, or
// DATE_OBS on older frames. A frame without a parseable timestamp is
// malformed and fails the whole run.
func (f *Frame) ObsTime() (time.Time, error) {
	for _, key := range []string{"DATE-OBS", "DATE_OBS"} {
		s, ok := f.Header.str(key)
		if !ok {
			continue
		}
		for _, layout := range obsTimeFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("guidemovie: %s: unparseable %s %q", f.Path, key, s)
	}
	return time.Time{}, fmt.Errorf("guidemovie: %s: no DATE-OBS or DATE_OBS card", f.Path)
}

// Object returns the OBJECT card, or "" when absent.
func (f *Frame) Object() string {
	s, _ := f.Header.str("OBJECT")
	return strings.TrimSpace(s)
}

// RequestNumber returns the REQNUM card with leading zeros stripped, or
// "UNKNOWN" when the card is absent.
func (f *Frame) RequestNumber() string {
	if s, ok := f.Header.str("REQNUM"); ok {
		return strings.TrimLeft(strings.TrimSpace(s), "0")
	}
	if v, ok := f.Header.num("REQNUM"); ok {
		return strconv.FormatInt(int64(v), 10)
	}
	return "UNKNOWN"
}

// Site returns the SITEID card upper-cased, or " " when absent.
func (f *Frame) Site() string {
	if s, ok := f.Header.str("SITEID"); ok {
		return strings.ToUpper(s)
	}
	return " "
}

// Instrument returns the INSTRUME card upper-cased, or " " when absent.
func (f *Frame) Instrument() string {
	if s, ok := f.Header.str("INSTRUME"); ok {
		return strings.ToUpper(s)
	}
	return " "
}

// RefPixel returns the reference pixel coordinates from CRPIX1/2.
func (f *Frame) RefPixel() (x, y float64, ok bool) {
	x, ok1 := f.Header.num("CRPIX1")
	y, ok2 := f.Header.num("CRPIX2")
	return x, y, ok1 && ok2
}

// PixelScale returns the PIXSCALE card in arcsec/pixel.
func (f *Frame) PixelScale() (float64, bool) {
	v, ok := f.Header.num("PIXSCALE")
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func (h Header) str(key string) (string, bool) {
	v, ok := h[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (h Header) num(key string) (float64, bool) {
	switch v := h[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func (h Header) scaling() (scale, zero float64, ok bool) {
	scale, hasScale := h.num("BSCALE")
	zero, hasZero := h.num("BZERO")
	if !hasScale {
		scale = 1
	}
	if !hasZero {
		zero = 0
	}
	return scale, zero, hasScale || hasZero
}
