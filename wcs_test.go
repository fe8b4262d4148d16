package guidemovie

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func tanHeader() Header {
	return Header{
		"CTYPE1": "RA---TAN",
		"CTYPE2": "DEC--TAN",
		"CRVAL1": 150.25,
		"CRVAL2": -30.5,
		"CRPIX1": 256.0,
		"CRPIX2": 256.0,
		"CD1_1":  -1.2e-4,
		"CD1_2":  0.0,
		"CD2_1":  0.0,
		"CD2_2":  1.2e-4,
	}
}

var _ = Describe("ParseWCS", func() {
	It("maps the reference pixel to the reference sky coordinate", func() {
		w, err := ParseWCS(tanHeader())
		Expect(err).NotTo(HaveOccurred())
		ra, dec := w.PixelToSky(256, 256)
		Expect(ra).To(BeNumerically("~", 150.25, 1e-9))
		Expect(dec).To(BeNumerically("~", -30.5, 1e-9))
	})

	It("round-trips pixel coordinates through the sky", func() {
		w, err := ParseWCS(tanHeader())
		Expect(err).NotTo(HaveOccurred())
		for _, p := range [][2]float64{{0, 0}, {300, 200}, {511, 511}, {256, 0}} {
			ra, dec := w.PixelToSky(p[0], p[1])
			x, y := w.SkyToPixel(ra, dec)
			Expect(x).To(BeNumerically("~", p[0], 1e-6))
			Expect(y).To(BeNumerically("~", p[1], 1e-6))
		}
	})

	It("accepts the CDELT/CROTA2 form", func() {
		h := tanHeader()
		delete(h, "CD1_1")
		delete(h, "CD1_2")
		delete(h, "CD2_1")
		delete(h, "CD2_2")
		h["CDELT1"] = -1.2e-4
		h["CDELT2"] = 1.2e-4
		h["CROTA2"] = 15.0

		w, err := ParseWCS(h)
		Expect(err).NotTo(HaveOccurred())
		ra, dec := w.PixelToSky(100, 400)
		x, y := w.SkyToPixel(ra, dec)
		Expect(x).To(BeNumerically("~", 100, 1e-6))
		Expect(y).To(BeNumerically("~", 400, 1e-6))
	})

	It("reports a missing transform", func() {
		h := tanHeader()
		delete(h, "CTYPE1")
		_, err := ParseWCS(h)
		Expect(err).To(Equal(ErrNoTransform))

		h = tanHeader()
		delete(h, "CRVAL1")
		_, err = ParseWCS(h)
		Expect(err).To(Equal(ErrNoTransform))
	})

	It("reports a singular transform", func() {
		h := tanHeader()
		h["CD1_1"] = 0.0
		h["CD2_2"] = 0.0
		_, err := ParseWCS(h)
		Expect(err).To(Equal(ErrNoTransform))
	})

	It("keeps a cropped reference pixel on the same sky coordinate", func() {
		f := &Frame{
			Width:  100,
			Height: 100,
			Pix:    make([]float64, 100*100),
			Header: tanHeader(),
		}
		before, err := ParseWCS(f.Header)
		Expect(err).NotTo(HaveOccurred())
		ra0, dec0 := before.PixelToSky(50, 50)

		f.CropCenter()
		after, err := ParseWCS(f.Header)
		Expect(err).NotTo(HaveOccurred())
		ra1, dec1 := after.PixelToSky(10, 10)

		Expect(ra1).To(BeNumerically("~", ra0, 1e-9))
		Expect(dec1).To(BeNumerically("~", dec0, 1e-9))
	})
})
