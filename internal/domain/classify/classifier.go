package classify

import (
	"github.com/google/uuid"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// State is the classifier's position in the shot state machine.
type State int

const (
	// StateIdle: waiting for an impact or a direct basket crossing.
	StateIdle State = iota
	// StateImpactDetected: an impact was seen; watching for a basket
	// crossing within the impact window.
	StateImpactDetected
	// StateBlackout: a shot just resolved; all samples are ignored
	// until the blackout window elapses.
	StateBlackout
)

// String returns the state label used in logs.
func (s State) String() string {
	switch s {
	case StateImpactDetected:
		return "impact_detected"
	case StateBlackout:
		return "blackout"
	default:
		return "idle"
	}
}

// Confidence levels per detection path.
const (
	swishConfidence = 0.85
	bankConfidence  = 0.95
	missConfidence  = 0.85
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithIDFunc overrides shot event id generation (deterministic tests).
func WithIDFunc(fn func() string) Option {
	return func(c *Classifier) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Classifier consumes the merged sample sequence and emits shot
// events. All timing decisions use sample timestamps, never the wall
// clock, so a fixed input sequence always yields the same events.
// State is session-scoped and reset only by an explicit Reset call.
type Classifier struct {
	params Params

	state      State
	stateEntry float64 // when the current state was entered, seconds
	impactTime float64 // pending impact for MAKE/MISS correlation

	newID func() string
}

// New constructs a Classifier, rejecting invalid params.
func New(params Params, opts ...Option) (*Classifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		params: params,
		state:  StateIdle,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current machine state.
func (c *Classifier) State() State {
	return c.state
}

// Reset returns the classifier to idle for a new session.
func (c *Classifier) Reset() {
	c.state = StateIdle
	c.stateEntry = 0
	c.impactTime = 0
}

// Process runs one merged sample through the state machine and returns
// the completed shot event, if this sample resolved one. Samples never
// produce errors: no-target readings and quiet periods are ordinary
// inputs.
func (c *Classifier) Process(s model.Sample) *model.ShotEvent {
	ts := s.Time()

	// Blackout expires on sample time, then the same sample is
	// processed from idle.
	if c.state == StateBlackout && ts >= c.stateEntry+c.params.BlackoutWindow {
		c.state = StateIdle
		c.stateEntry = 0
	}

	switch c.state {
	case StateIdle:
		if s.Class == model.SensorInertial && s.Inertial.MagnitudeG() > c.params.ImpactThresholdG {
			c.state = StateImpactDetected
			c.stateEntry = ts
			c.impactTime = ts
			return nil
		}
		if s.Class == model.SensorRanging && c.isBasket(s.Range) {
			// Basket with no prior impact: clean swish.
			basket := ts
			c.enterBlackout(ts)
			return &model.ShotEvent{
				ID:             c.newID(),
				BasketTime:     &basket,
				Classification: model.Make,
				BasketType:     model.Swish,
				Confidence:     swishConfidence,
			}
		}

	case StateImpactDetected:
		// Window expiry is checked before the basket condition: a
		// qualifying sample past the window resolves the pending
		// impact as a miss rather than counting a late crossing.
		if ts-c.impactTime > c.params.MaxTimeAfterImpact {
			impact := c.impactTime
			c.enterBlackout(ts)
			return &model.ShotEvent{
				ID:             c.newID(),
				ImpactTime:     &impact,
				Classification: model.Miss,
				Confidence:     missConfidence,
			}
		}
		if s.Class == model.SensorRanging && c.isBasket(s.Range) {
			impact := c.impactTime
			basket := ts
			c.enterBlackout(ts)
			return &model.ShotEvent{
				ID:             c.newID(),
				ImpactTime:     &impact,
				BasketTime:     &basket,
				Classification: model.Make,
				BasketType:     model.Bank,
				Confidence:     bankConfidence,
			}
		}

	case StateBlackout:
		// Ignore everything until the window elapses.
	}

	return nil
}

func (c *Classifier) enterBlackout(ts float64) {
	c.state = StateBlackout
	c.stateEntry = ts
	c.impactTime = 0
}

// isBasket reports whether a ranging reading indicates the ball
// crossing the target plane.
func (c *Classifier) isBasket(r model.RangeSample) bool {
	if !r.HasTarget() {
		return false
	}
	return float64(r.DistanceMM) < c.params.DistanceThresholdMM &&
		float64(r.SignalRate) > c.params.SignalRateThreshold
}
