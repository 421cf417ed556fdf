package sim

import (
	"math/rand"
	"sort"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// Shot outcome kinds the generator can produce.
type Kind int

const (
	KindBank Kind = iota
	KindSwish
	KindMiss
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBank:
		return "bank"
	case KindSwish:
		return "swish"
	case KindMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// Scenario timing constants, chosen against the default classifier
// thresholds: crossings land inside the 0.5 s window, shots are spaced
// past the 1 s blackout.
const (
	shotSpacingMS     = 3000
	crossingOffsetMS  = 150
	tailMS            = 1500
	idleInertialStep  = 50
	backgroundRangeMS = 20

	impactPeakG    = 6.0
	idleG          = 1.0
	crossingMM     = 200
	crossingSignal = 1500
	noTargetSignal = 40
)

// Scenario is a generated sample timeline with its expected outcome.
type Scenario struct {
	Samples []model.Sample
	Kinds   []Kind

	WantMakes  int
	WantMisses int
}

// Generate builds a deterministic scenario for the given shot count,
// make ratio, and seed. Samples come back sorted by timestamp, each
// stream internally in capture order.
func Generate(shots int, makeRatio float64, seed int64) *Scenario {
	r := rand.New(rand.NewSource(seed))
	s := &Scenario{}

	for i := 0; i < shots; i++ {
		var kind Kind
		if r.Float64() < makeRatio {
			if r.Float64() < 0.5 {
				kind = KindBank
			} else {
				kind = KindSwish
			}
		} else {
			kind = KindMiss
		}
		s.Kinds = append(s.Kinds, kind)

		base := uint32(1000 + i*shotSpacingMS)
		switch kind {
		case KindBank:
			s.addImpact(base)
			s.addCrossing(base + crossingOffsetMS)
			s.WantMakes++
		case KindSwish:
			s.addCrossing(base)
			s.WantMakes++
		case KindMiss:
			s.addImpact(base)
			s.WantMisses++
		}
	}

	s.addBackground(uint32(1000 + shots*shotSpacingMS + tailMS))
	s.sort()
	return s
}

// Duration returns the scenario length in milliseconds.
func (s *Scenario) Duration() uint32 {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].TimestampMS()
}

func (s *Scenario) addImpact(ts uint32) {
	raw := int16(impactPeakG * model.AccelSensitivity)
	s.Samples = append(s.Samples, model.NewInertial(model.InertialSample{
		TimestampMS: ts,
		Az:          raw,
	}))
}

func (s *Scenario) addCrossing(ts uint32) {
	s.Samples = append(s.Samples, model.NewRange(model.RangeSample{
		TimestampMS: ts,
		DistanceMM:  crossingMM,
		SignalRate:  crossingSignal,
	}))
}

// addBackground fills the timeline with quiet inertial samples and
// no-target ranging measurements up to endMS.
func (s *Scenario) addBackground(endMS uint32) {
	idleRaw := int16(idleG * model.AccelSensitivity)
	for ts := uint32(0); ts < endMS; ts += idleInertialStep {
		s.Samples = append(s.Samples, model.NewInertial(model.InertialSample{
			TimestampMS: ts,
			Az:          idleRaw,
		}))
	}
	for ts := uint32(0); ts < endMS; ts += backgroundRangeMS {
		s.Samples = append(s.Samples, model.NewRange(model.RangeSample{
			TimestampMS: ts,
			DistanceMM:  model.NoTarget,
			SignalRate:  noTargetSignal,
		}))
	}
}

func (s *Scenario) sort() {
	sort.SliceStable(s.Samples, func(i, j int) bool {
		return s.Samples[i].TimestampMS() < s.Samples[j].TimestampMS()
	})
}
