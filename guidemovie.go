/*
Package guidemovie renders a sequence of FITS guide-camera exposures into an
animated GIF for visual review of a telescope guiding run.

Each frame is displayed in grayscale with robust zscale intensity limits,
titled with its observation time and position in the sequence, and overlaid
with a celestial coordinate grid when the frame header carries a valid
astrometric transform. The first few frames of the animation play at a
slower intro interval so a viewer can orient, optionally with a reticle
marking the expected target position.
*/
package guidemovie

import "io"

// Option configures an Animator.
type Option func(*Animator)

// WithTitle sets the sequence title drawn above every frame. An empty
// string suppresses the title. Without this option the title is derived
// from the first frame's request number, object, site and instrument.
func WithTitle(title string) Option {
	return func(a *Animator) {
		a.title = &title
	}
}

// WithFrameInterval sets the base frame interval in ms/frame.
func WithFrameInterval(ms float64) Option {
	return func(a *Animator) {
		a.frameMS = ms
	}
}

// WithIntroInterval sets the frame interval in ms/frame for the first few
// frames. Intro frames are emulated by duplication, so the intro interval
// is effective in whole multiples of the base interval.
func WithIntroInterval(ms float64) Option {
	return func(a *Animator) {
		a.introMS = ms
	}
}

// WithReticle draws 5 and 15 arcsecond target circles at the reference
// pixel during the intro frames.
func WithReticle() Option {
	return func(a *Animator) {
		a.reticle = true
	}
}

// WithCenterCrop crops each frame to its central region before rendering.
func WithCenterCrop() Option {
	return func(a *Animator) {
		a.centerCrop = true
	}
}

// WithProgress enables a terminal progress bar on w during the build.
func WithProgress(w io.Writer) Option {
	return func(a *Animator) {
		a.progress = w
	}
}

// WithGamma sets the power-law exponent of the intensity normalization.
// 1 is linear.
func WithGamma(gamma float64) Option {
	return func(a *Animator) {
		a.gamma = gamma
	}
}

// WithInvertedColors inverts the rendered frames.
func WithInvertedColors() Option {
	return func(a *Animator) {
		a.invert = true
	}
}

// WithMaxSize caps the longer output dimension at px pixels.
func WithMaxSize(px int) Option {
	return func(a *Animator) {
		if px > 0 {
			a.size = px
		}
	}
}

// Animator builds guide movies. The zero configuration plays at 100 ms per
// frame with a 1000 ms intro, no reticle, no crop, and no progress output.
type Animator struct {
	title      *string // nil: derive from the first frame
	frameMS    float64
	introMS    float64
	reticle    bool
	centerCrop bool
	invert     bool
	gamma      float64
	size       int
	progress   io.Writer
}

func NewAnimator(opts ...Option) *Animator {
	a := Animator{
		frameMS: 100,
		introMS: 1000,
		gamma:   1,
		size:    900,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return &a
}
