package chem_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtovar/labsim/internal/chem"
	"github.com/mtovar/labsim/internal/rng"
)

func TestChem(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chem Suite")
}

var _ = Describe("litmus", func() {
	It("blends 50/50 at neutral pH", func() {
		c, err := chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: 7.0, PathLengthCm: 1}, nil)
		Expect(err).NotTo(HaveOccurred())

		mid, err := chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: 7.0}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(mid))

		// midpoint of (228,54,56) and (64,72,204), within rounding
		Expect(c.R).To(BeNumerically("~", 146, 1))
		Expect(c.G).To(BeNumerically("~", 63, 1))
		Expect(c.B).To(BeNumerically("~", 130, 1))
	})

	It("approaches the pure acid color at low pH", func() {
		c, err := chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: 0}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(chem.RGB{R: 228, G: 54, B: 56}))
	})

	It("approaches the pure base color at high pH", func() {
		c, err := chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: 14}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(chem.RGB{R: 64, G: 72, B: 204}))
	})
})

var _ = Describe("universal indicator", func() {
	It("returns anchor colors exactly on anchor pH values", func() {
		for _, tc := range []struct {
			ph   float64
			want chem.RGB
		}{
			{0, chem.RGB{R: 196, G: 2, B: 51}},
			{7, chem.RGB{R: 76, G: 187, B: 23}},
			{14, chem.RGB{R: 46, G: 8, B: 84}},
		} {
			c, err := chem.Simulate(chem.Params{Indicator: chem.Universal, PH: tc.ph}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal(tc.want), "pH %.1f", tc.ph)
		}
	})

	It("interpolates between anchors", func() {
		lo, _ := chem.Simulate(chem.Params{Indicator: chem.Universal, PH: 4}, nil)
		hi, _ := chem.Simulate(chem.Params{Indicator: chem.Universal, PH: 6}, nil)
		mid, err := chem.Simulate(chem.Params{Indicator: chem.Universal, PH: 5}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(mid.R).To(BeNumerically("~", (lo.R+hi.R)/2, 1))
		Expect(mid.G).To(BeNumerically("~", (lo.G+hi.G)/2, 1))
		Expect(mid.B).To(BeNumerically("~", (lo.B+hi.B)/2, 1))
	})
})

var _ = Describe("noise", func() {
	It("is reproducible for a fixed seed and stays in range", func() {
		p := chem.Params{Indicator: chem.Universal, PH: 6.3, NoiseSigma: 20}

		a, err := chem.Simulate(p, rng.New(42))
		Expect(err).NotTo(HaveOccurred())
		b, err := chem.Simulate(p, rng.New(42))
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))

		for i := 0; i < 200; i++ {
			c, err := chem.Simulate(p, rng.New(uint32(i)))
			Expect(err).NotTo(HaveOccurred())
			for _, ch := range []int{c.R, c.G, c.B} {
				Expect(ch).To(And(BeNumerically(">=", 0), BeNumerically("<=", 255)))
			}
		}
	})
})

var _ = Describe("validation", func() {
	It("rejects pH outside [0, 14]", func() {
		_, err := chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: -0.5}, nil)
		Expect(err).To(HaveOccurred())
		_, err = chem.Simulate(chem.Params{Indicator: chem.Litmus, PH: 14.5}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown indicator", func() {
		_, err := chem.Simulate(chem.Params{Indicator: chem.Indicator(99), PH: 7}, nil)
		Expect(err).To(MatchError(chem.ErrUnknownIndicator))
	})
})
