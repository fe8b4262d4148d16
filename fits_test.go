package guidemovie

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/astrogo/fitsio"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// writeFITS writes a FITS file whose HDUs each hold a small 2-D int16 plane
// and the given cards. The first HDU becomes the primary.
func writeFITS(path string, hdus ...testHDU) {
	w, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer w.Close()

	f, err := fitsio.Create(w)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	for _, hdu := range hdus {
		img := fitsio.NewImage(16, []int{hdu.nx, hdu.ny})
		Expect(img.Header().Append(hdu.cards...)).To(Succeed())
		pix := hdu.pix
		if pix == nil {
			pix = make([]int16, hdu.nx*hdu.ny)
			for i := range pix {
				pix[i] = int16(i)
			}
		}
		Expect(img.Write(&pix)).To(Succeed())
		Expect(f.Write(img)).To(Succeed())
		img.Close()
	}
}

type testHDU struct {
	nx, ny int
	cards  []fitsio.Card
	pix    []int16
}

func guideCards(extra ...fitsio.Card) []fitsio.Card {
	cards := []fitsio.Card{
		{Name: "OBJECT", Value: "M42"},
		{Name: "REQNUM", Value: "0042"},
		{Name: "SITEID", Value: "cpt"},
		{Name: "INSTRUME", Value: "kb84"},
		{Name: "DATE-OBS", Value: "2018-09-10T05:34:12.438"},
		{Name: "CRPIX1", Value: 16.0},
		{Name: "CRPIX2", Value: 16.0},
		{Name: "PIXSCALE", Value: 0.58},
	}
	return append(cards, extra...)
}

var _ = Describe("OpenFrame", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "guidemovie")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("reads the primary HDU when no named extension exists", func() {
		path := filepath.Join(dir, "frame.fits")
		writeFITS(path, testHDU{nx: 32, ny: 24, cards: guideCards()})

		frame, err := OpenFrame(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Width).To(Equal(32))
		Expect(frame.Height).To(Equal(24))
		Expect(frame.Pix).To(HaveLen(32 * 24))
		Expect(frame.Object()).To(Equal("M42"))
	})

	It("prefers the SCI extension over the primary", func() {
		path := filepath.Join(dir, "frame.fits")
		writeFITS(path,
			testHDU{nx: 8, ny: 8, cards: []fitsio.Card{{Name: "OBJECT", Value: "primary"}}},
			testHDU{nx: 16, ny: 16, cards: guideCards(fitsio.Card{Name: "EXTNAME", Value: "SCI"})},
		)

		frame, err := OpenFrame(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Width).To(Equal(16))
		Expect(frame.Object()).To(Equal("M42"))
	})

	It("fails on a file that is not FITS", func() {
		path := filepath.Join(dir, "frame.fits")
		Expect(ioutil.WriteFile(path, []byte("not fits"), 0644)).To(Succeed())
		_, err := OpenFrame(path)
		Expect(err).To(HaveOccurred())
	})

	It("fails on a missing file", func() {
		_, err := OpenFrame(filepath.Join(dir, "nope.fits"))
		Expect(err).To(HaveOccurred())
	})

	Describe("metadata", func() {
		var frame *Frame

		BeforeEach(func() {
			path := filepath.Join(dir, "frame.fits")
			writeFITS(path, testHDU{nx: 32, ny: 24, cards: guideCards()})
			var err error
			frame, err = OpenFrame(path)
			Expect(err).NotTo(HaveOccurred())
		})

		It("strips leading zeros from the request number", func() {
			Expect(frame.RequestNumber()).To(Equal("42"))
		})

		It("upper-cases site and instrument", func() {
			Expect(frame.Site()).To(Equal("CPT"))
			Expect(frame.Instrument()).To(Equal("KB84"))
		})

		It("parses a fractional observation timestamp", func() {
			t, err := frame.ObsTime()
			Expect(err).NotTo(HaveOccurred())
			Expect(t.UTC()).To(Equal(time.Date(2018, 9, 10, 5, 34, 12, 438000000, time.UTC)))
		})

		It("exposes the reference pixel and pixel scale", func() {
			x, y, ok := frame.RefPixel()
			Expect(ok).To(BeTrue())
			Expect(x).To(Equal(16.0))
			Expect(y).To(Equal(16.0))

			scale, ok := frame.PixelScale()
			Expect(ok).To(BeTrue())
			Expect(scale).To(Equal(0.58))
		})
	})

	It("defaults missing optional metadata", func() {
		path := filepath.Join(dir, "frame.fits")
		writeFITS(path, testHDU{nx: 8, ny: 8, cards: []fitsio.Card{
			{Name: "OBJECT", Value: "M42"},
			{Name: "DATE-OBS", Value: "2018-09-10T05:34:12"},
		}})

		frame, err := OpenFrame(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.RequestNumber()).To(Equal("UNKNOWN"))
		Expect(frame.Site()).To(Equal(" "))
		Expect(frame.Instrument()).To(Equal(" "))
	})

	It("accepts the older DATE_OBS card and whole-second timestamps", func() {
		path := filepath.Join(dir, "frame.fits")
		writeFITS(path, testHDU{nx: 8, ny: 8, cards: []fitsio.Card{
			{Name: "OBJECT", Value: "M42"},
			{Name: "DATE_OBS", Value: "2018-05-01T01:02:03"},
		}})

		frame, err := OpenFrame(path)
		Expect(err).NotTo(HaveOccurred())
		t, err := frame.ObsTime()
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Second()).To(Equal(3))
	})

	It("rejects an unparseable observation timestamp", func() {
		path := filepath.Join(dir, "frame.fits")
		writeFITS(path, testHDU{nx: 8, ny: 8, cards: []fitsio.Card{
			{Name: "OBJECT", Value: "M42"},
			{Name: "DATE-OBS", Value: "Sept 10 2018"},
		}})

		frame, err := OpenFrame(path)
		Expect(err).NotTo(HaveOccurred())
		_, err = frame.ObsTime()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CropCenter", func() {
	It("keeps the central region and shifts the reference pixel", func() {
		f := &Frame{
			Width:  100,
			Height: 80,
			Pix:    make([]float64, 100*80),
			Header: Header{"CRPIX1": 50.0, "CRPIX2": 40.0},
		}
		for i := range f.Pix {
			f.Pix[i] = float64(i)
		}

		f.CropCenter()

		// 100/2.5 = 40 and 80/2.5 = 32 cut from each edge
		Expect(f.Width).To(Equal(20))
		Expect(f.Height).To(Equal(16))
		Expect(f.Pix).To(HaveLen(20 * 16))
		Expect(f.Pix[0]).To(Equal(float64(32*100 + 40)))

		x, y, ok := f.RefPixel()
		Expect(ok).To(BeTrue())
		Expect(x).To(Equal(10.0))
		Expect(y).To(Equal(8.0))
	})
})
