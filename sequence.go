package guidemovie

import (
	"path/filepath"
	"sort"
)

// introFrames is how many leading source frames play at the intro interval
// and carry the reticle overlay.
const introFrames = 5

// FindFrames lists the guide frames in dir, sorted lexically (the naming
// convention sorts chronologically). Fpacked frames are preferred; plain
// .fits files are only considered when no .fits.fz files are present.
func FindFrames(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.fits.fz"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths, err = filepath.Glob(filepath.Join(dir, "*.fits"))
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Pad duplicates each of the first introFrames paths so that they linger on
// screen at the intro interval while every frame advances at the base
// interval. The returned multiplier is how many times each intro frame
// appears; 1 means no padding happened.
//
// Padding is skipped when the intro interval is unset or not slower than the
// base interval, or when the sequence is shorter than introFrames.
func Pad(paths []string, introMS, baseMS float64) ([]string, int) {
	if introMS <= 0 || baseMS <= 0 || introMS <= baseMS || len(paths) < introFrames {
		return paths, 1
	}
	copies := int(introMS / baseMS)
	if copies < 2 {
		return paths, 1
	}
	padded := make([]string, 0, len(paths)+(copies-1)*introFrames)
	for i, p := range paths {
		n := 1
		if i < introFrames {
			n = copies
		}
		for ; n > 0; n-- {
			padded = append(padded, p)
		}
	}
	return padded, copies
}

// distinctCount returns how many unique source frames appear among the first
// n+1 entries of a sequence padded with the given multiplier.
func distinctCount(n, copies int) int {
	if copies <= 1 {
		return n + 1
	}
	if n < introFrames*copies {
		return n/copies + 1
	}
	return introFrames + n - introFrames*copies + 1
}

// distinctTotal returns the number of unique source frames in a padded
// sequence of the given length.
func distinctTotal(padded, copies int) int {
	return padded - (copies-1)*introFrames
}
