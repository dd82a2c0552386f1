package assess

import (
	"errors"

	"github.com/isturunt/kst-api/internal/domain/kst"
)

// Common errors
var (
	// ErrNilLikelihood is returned when a nil distribution is passed in.
	ErrNilLikelihood = errors.New("likelihood cannot be nil")

	// ErrNoInformativeQuestion is returned when every item's marginal has
	// collapsed to 0 or 1 and no question would change the distribution.
	ErrNoInformativeQuestion = errors.New("no informative question remains")

	// ErrDegenerateUpdate is returned when a response zeroes out the entire
	// distribution, which indicates inconsistent parameters (beta or eta 0
	// combined with contradictory responses).
	ErrDegenerateUpdate = errors.New("update produced a degenerate distribution")
)

// Service defines the operations of the Markov assessment procedure over a
// probabilistic knowledge structure.
type Service interface {
	// NextQuestion selects the item to ask next under the half-split rule.
	// Returns ErrNoInformativeQuestion when the distribution has settled.
	NextQuestion(l *Likelihood) (string, error)

	// Update applies the learner's response to the distribution and returns
	// the posterior. The input distribution is not modified.
	Update(l *Likelihood, item string, correct bool) (*Likelihood, error)

	// Converged reports whether a single state carries enough mass to be
	// declared the learner's latent state, and returns that state.
	Converged(l *Likelihood) (kst.State, bool)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates an assessment service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: DefaultParams()}
}

// NewServiceWithParams creates an assessment service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Params returns the parameters the service runs with.
func (s *defaultService) Params() *Params {
	return s.params
}

// NextQuestion implements the Service interface.
func (s *defaultService) NextQuestion(l *Likelihood) (string, error) {
	if l == nil {
		return "", ErrNilLikelihood
	}

	item, ok := selectQuestion(l)
	if !ok {
		return "", ErrNoInformativeQuestion
	}
	return item, nil
}

// Update implements the Service interface.
func (s *defaultService) Update(l *Likelihood, item string, correct bool) (*Likelihood, error) {
	if l == nil {
		return nil, ErrNilLikelihood
	}

	idx, ok := l.structure.Domain().Index(item)
	if !ok {
		return nil, kst.ErrUnknownItem
	}

	mass, total := updateMass(l, idx, correct, s.params)
	if total <= 0 {
		return nil, ErrDegenerateUpdate
	}

	return &Likelihood{
		structure: l.structure,
		states:    l.states,
		mass:      mass,
	}, nil
}

// Converged implements the Service interface.
func (s *defaultService) Converged(l *Likelihood) (kst.State, bool) {
	if l == nil {
		return kst.State{}, false
	}

	mode, mass := l.Mode()
	if mass >= s.params.ConvergenceThreshold {
		return mode, true
	}
	return kst.State{}, false
}
