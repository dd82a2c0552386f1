package assess

// Params defines all configurable parameters for the Markov assessment
// procedure.
type Params struct {
	// CarelessError is the probability beta that a learner who masters an
	// item nevertheless answers it incorrectly.
	CarelessError float64

	// LuckyGuess is the probability eta that a learner who does not master
	// an item answers it correctly anyway.
	LuckyGuess float64

	// ConvergenceThreshold is the likelihood mass a single state must reach
	// for the assessment to consider the latent state uncovered.
	ConvergenceThreshold float64

	// MaxQuestions caps the number of questions asked in one assessment.
	MaxQuestions int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero fields keep their defaults.
type ParamsConfig struct {
	CarelessError        float64
	LuckyGuess           float64
	ConvergenceThreshold float64
	MaxQuestions         int
}

// DefaultParams creates a new Params instance with default values.
func DefaultParams() *Params {
	return &Params{
		CarelessError:        0.10,
		LuckyGuess:           0.10,
		ConvergenceThreshold: 0.85,
		MaxQuestions:         50,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := DefaultParams()

	if config.CarelessError > 0 {
		params.CarelessError = config.CarelessError
	}
	if config.LuckyGuess > 0 {
		params.LuckyGuess = config.LuckyGuess
	}
	if config.ConvergenceThreshold > 0 {
		params.ConvergenceThreshold = config.ConvergenceThreshold
	}
	if config.MaxQuestions > 0 {
		params.MaxQuestions = config.MaxQuestions
	}

	return params
}
