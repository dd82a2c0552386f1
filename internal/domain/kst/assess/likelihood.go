package assess

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/isturunt/kst-api/internal/domain/kst"
)

// distributionEpsilon is the tolerance when checking that probabilities
// sum to one.
const distributionEpsilon = 1e-9

// Likelihood validation errors
var (
	// ErrNilStructure is returned when a likelihood is built without a structure.
	ErrNilStructure = errors.New("knowledge structure cannot be nil")

	// ErrNegativeMass is returned when a state carries negative probability.
	ErrNegativeMass = errors.New("state probability cannot be negative")

	// ErrMassNotNormalized is returned when the probabilities do not sum to 1.
	ErrMassNotNormalized = errors.New("state probabilities must sum to 1")

	// ErrUnknownState is returned when a serialized likelihood references a
	// state that does not belong to the structure.
	ErrUnknownState = errors.New("state does not belong to the structure")
)

// Likelihood is a probability distribution over the states of a knowledge
// structure, the L in a probabilistic knowledge structure (Q, K, L). The
// mass vector is parallel to the structure's canonical state order.
type Likelihood struct {
	structure *kst.Structure
	states    []kst.State
	mass      []float64
}

// Uniform builds the uniform distribution over the structure's states,
// the usual prior for a fresh assessment.
func Uniform(s *kst.Structure) (*Likelihood, error) {
	if s == nil {
		return nil, ErrNilStructure
	}

	states := s.States()
	mass := make([]float64, len(states))
	for i := range mass {
		mass[i] = 1.0 / float64(len(states))
	}

	return &Likelihood{structure: s, states: states, mass: mass}, nil
}

// New builds a likelihood from explicit per-state probabilities keyed by the
// structure's canonical state text (see Structure.FormatState). States absent
// from the map get zero mass; probabilities must be non-negative and sum to 1.
func New(s *kst.Structure, probabilities map[string]float64) (*Likelihood, error) {
	if s == nil {
		return nil, ErrNilStructure
	}

	states := s.States()
	known := make(map[string]int, len(states))
	for i, k := range states {
		known[s.FormatState(k)] = i
	}

	for key := range probabilities {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, key)
		}
	}

	mass := make([]float64, len(states))
	total := 0.0
	for i, k := range states {
		p := probabilities[s.FormatState(k)]
		if p < 0 {
			return nil, fmt.Errorf("%w: state %q", ErrNegativeMass, s.FormatState(k))
		}
		mass[i] = p
		total += p
	}

	if math.Abs(total-1.0) > distributionEpsilon {
		return nil, fmt.Errorf("%w: sum is %g", ErrMassNotNormalized, total)
	}

	return &Likelihood{structure: s, states: states, mass: mass}, nil
}

// Structure returns the knowledge structure the distribution is defined over.
func (l *Likelihood) Structure() *kst.Structure {
	return l.structure
}

// Mass returns the probability of the state at canonical position i.
func (l *Likelihood) Mass(i int) float64 {
	return l.mass[i]
}

// States returns the states in canonical order, parallel to the mass vector.
func (l *Likelihood) States() []kst.State {
	return l.states
}

// Marginal returns the probability that the latent state contains the given
// item: the summed mass of all states containing it.
func (l *Likelihood) Marginal(item string) (float64, error) {
	idx, ok := l.structure.Domain().Index(item)
	if !ok {
		return 0, kst.ErrUnknownItem
	}

	p := 0.0
	for i, k := range l.states {
		if k.Test(idx) {
			p += l.mass[i]
		}
	}
	return p, nil
}

// Mode returns the most likely state and its mass. Ties resolve to the
// earliest state in canonical order.
func (l *Likelihood) Mode() (kst.State, float64) {
	best := 0
	for i := 1; i < len(l.mass); i++ {
		if l.mass[i] > l.mass[best] {
			best = i
		}
	}
	return l.states[best], l.mass[best]
}

// MarshalJSON encodes the distribution as a map from canonical state text to
// probability. Zero-mass states are omitted.
func (l *Likelihood) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(l.states))
	for i, k := range l.states {
		if l.mass[i] > 0 {
			out[l.structure.FormatState(k)] = l.mass[i]
		}
	}
	return json.Marshal(out)
}

// Decode rebuilds a likelihood previously produced by MarshalJSON against
// the given structure.
func Decode(s *kst.Structure, data []byte) (*Likelihood, error) {
	if s == nil {
		return nil, ErrNilStructure
	}

	var probabilities map[string]float64
	if err := json.Unmarshal(data, &probabilities); err != nil {
		return nil, fmt.Errorf("failed to decode likelihood: %w", err)
	}

	return New(s, probabilities)
}
