package guidemovie

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// framePalette is shared by every frame: a fine grayscale ramp plus the two
// reticle greens. Overlay strokes are antialiased into the RGBA canvas
// before quantization, so blended shades land on nearby gray entries.
var framePalette = buildPalette()

func buildPalette() color.Palette {
	p := make(color.Palette, 0, 256)
	for i := 0; i < 254; i++ {
		g := uint8(i * 255 / 253)
		p = append(p, color.RGBA{R: g, G: g, B: g, A: 255})
	}
	return append(p, limegreen, lime)
}

/*
Animate renders every frame of the sequence and strings the renders into a
looping GIF written next to the input frames. The returned path is
<dir>/<object>_<reqnum>_guidemovie.gif, with spaces and slashes in the
object name replaced by underscores.

Frames are sorted lexically, then the first few are duplicated so they play
at the intro interval (see Pad). A single malformed frame aborts the whole
run before any output is written.
*/
func (a *Animator) Animate(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New("guidemovie: no frames")
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	padded, copies := Pad(sorted, a.introMS, a.frameMS)

	first, err := OpenFrame(padded[0])
	if err != nil {
		return "", err
	}
	object := first.Object()
	if object == "" {
		return "", fmt.Errorf("guidemovie: %s: no OBJECT card", first.Path)
	}
	reqnum := first.RequestNumber()

	title := fmt.Sprintf("Request Number %s -- %s at %s (%s)", reqnum, object, first.Site(), first.Instrument())
	if a.title != nil {
		title = *a.title
	}

	total := distinctTotal(len(padded), copies)
	delay := int(a.frameMS / 10) // GIF delays are in 100ths of a second

	bar := Bar{Writer: a.progress, Start: time.Now()}
	anim := gif.GIF{LoopCount: 0}
	for n := range padded {
		img, err := a.renderFrame(padded, n, copies, title, total)
		if err != nil {
			return "", err
		}
		anim.Image = append(anim.Image, paletted(img))
		anim.Delay = append(anim.Delay, delay)
		if a.progress != nil {
			prefix := fmt.Sprintf("Creating Gif: Frame %d", distinctCount(n, copies))
			bar.Print(n+1, len(padded), prefix)
		}
	}

	savefile := outputPath(filepath.Dir(padded[0]), object, reqnum)
	out, err := os.Create(savefile)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := gif.EncodeAll(out, &anim); err != nil {
		return "", err
	}
	return savefile, nil
}

func paletted(img image.Image) *image.Paletted {
	p := image.NewPaletted(img.Bounds(), framePalette)
	draw.FloydSteinberg.Draw(p, img.Bounds(), img, img.Bounds().Min)
	return p
}

func outputPath(dir, object, reqnum string) string {
	name := strings.NewReplacer(" ", "_", "/", "_").Replace(object)
	return filepath.Join(dir, name+"_"+reqnum+"_guidemovie.gif")
}
