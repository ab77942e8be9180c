package integrator

import (
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
)

// StableDt returns the explicit-integration stability bound
// 2*sqrt(m_min/k_max) over the free-node masses and member stiffnesses.
// Steps beyond it diverge; in practice a tenth of the bound gives
// accurate energy behavior. Structures with no members (or no free
// nodes) impose no elastic bound and return +Inf.
func StableDt(s *structure.Structure) float64 {
	kMax := 0.0
	for _, m := range s.Members {
		if m.Stiffness > kMax {
			kMax = m.Stiffness
		}
	}

	mMin := math.Inf(1)
	for _, n := range s.Nodes {
		if !n.Fixed && n.Mass < mMin {
			mMin = n.Mass
		}
	}

	if kMax == 0 || math.IsInf(mMin, 1) {
		return math.Inf(1)
	}
	return 2 * math.Sqrt(mMin/kMax)
}
