package pipeline

import (
	"context"
	"math"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/avendal/sedlab/internal/isochrone"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/sed"
)

// The chain suite runs the full isochrone -> spectra -> dust ->
// photometry path on the bundled demo table, the same route the CLI
// takes, and checks the physics that should hold end to end.
var _ = ginkgo.Describe("Isochrone to magnitudes chain", func() {
	var (
		stars []sed.Star
		res   *Result
		cfg   Config
	)

	ginkgo.BeforeEach(func() {
		ginkgo.By("Loading the bundled demo isochrone")
		table, err := isochrone.Demo()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		block, _ := table.Nearest(8.0, 0)
		stars, err = block.Stars()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(stars).NotTo(gomega.BeEmpty())

		ginkgo.By("Assembling the pipeline from registry names")
		cfg = DefaultConfig()
		cfg.Bands = []string{"B", "V", "Ks"}
		cfg.Law = "f99"
		cfg.Av = 0.5
		cfg.GridN = 600

		reg := NewRegistry()
		lib, err := reg.GetLibrary(cfg.Library)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		law, err := reg.GetLaw(cfg.Law)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		bands := make([]*passband.Passband, len(cfg.Bands))
		for i, name := range cfg.Bands {
			bands[i], err = passband.Builtin(name)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		}

		p, err := New(lib, law, bands, cfg)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		for _, m := range reg.DefaultMetrics() {
			p.AddMetric(m)
		}

		ginkgo.By("Running the chain")
		res, err = p.Run(context.Background(), stars)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("should produce one row per star in input order", func() {
		gomega.Expect(res.Rows).To(gomega.HaveLen(len(stars)))
		gomega.Expect(res.StarsSkipped).To(gomega.BeZero())
		gomega.Expect(res.Errors).To(gomega.BeEmpty())
		for i, row := range res.Rows {
			gomega.Expect(row.Star.Teff).To(gomega.Equal(stars[i].Teff))
			gomega.Expect(row.Bands).To(gomega.HaveLen(len(cfg.Bands)))
		}
	})

	ginkgo.It("should dim every band and the bolometric flux", func() {
		for _, row := range res.Rows {
			for _, b := range row.Bands {
				gomega.Expect(b.Attenuated).To(gomega.BeNumerically("<", b.Intrinsic))
				gomega.Expect(math.IsNaN(b.MagAB)).To(gomega.BeFalse())
				gomega.Expect(math.IsNaN(b.MagVega)).To(gomega.BeFalse())
			}
			gomega.Expect(row.BoloAttenuated).To(gomega.BeNumerically("<", row.BoloIntrinsic))
		}
	})

	ginkgo.It("should redden colors and report sane run statistics", func() {
		gomega.Expect(res.Stats["color_excess"]).To(gomega.BeNumerically(">", 0))
		gomega.Expect(res.Stats["dimming"]).To(gomega.BeNumerically(">", 0))
		gomega.Expect(res.Stats["dimming"]).To(gomega.BeNumerically("<", 1))
		gomega.Expect(res.Stats["coverage"]).To(gomega.Equal(1.0))
	})

	ginkgo.It("should keep the zeropoint table aligned with the band list", func() {
		gomega.Expect(res.Zeropoints).To(gomega.HaveLen(len(cfg.Bands)))
		for i, zp := range res.Zeropoints {
			gomega.Expect(zp.Band).To(gomega.Equal(cfg.Bands[i]))
			gomega.Expect(zp.Pivot).To(gomega.BeNumerically(">", 0))
			gomega.Expect(zp.AB).To(gomega.BeNumerically("~", 21, 8))
		}
	})

	ginkgo.It("should accumulate composite spectra on the run grid", func() {
		gomega.Expect(res.Intrinsic).NotTo(gomega.BeNil())
		gomega.Expect(res.Attenuated).NotTo(gomega.BeNil())
		gomega.Expect(res.Intrinsic.Wave).To(gomega.HaveLen(cfg.GridN))
		for i := range res.Intrinsic.Flux {
			gomega.Expect(res.Attenuated.Flux[i]).To(gomega.BeNumerically("<=", res.Intrinsic.Flux[i]))
		}
	})

	ginkgo.It("should rank the most luminous star brightest", func() {
		bright, faint := 0, 0
		for i, s := range stars {
			if s.LogL > stars[bright].LogL {
				bright = i
			}
			if s.LogL < stars[faint].LogL {
				faint = i
			}
		}
		magOf := func(idx int) float64 {
			for _, row := range res.Rows {
				if row.Star.Teff == stars[idx].Teff && row.Star.LogL == stars[idx].LogL {
					return row.Mag("V")
				}
			}
			return math.NaN()
		}
		gomega.Expect(magOf(bright)).To(gomega.BeNumerically("<", magOf(faint)))
	})
})
