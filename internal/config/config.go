package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Assessment AssessmentConfig `mapstructure:"assessment" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. Token lifetimes are in
// minutes.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// AssessmentConfig tunes the Markov assessment procedure. Zero values fall
// back to the assess package defaults.
type AssessmentConfig struct {
	// CarelessError is the probability of answering an item in the latent
	// state incorrectly.
	CarelessError float64 `mapstructure:"careless_error" validate:"gte=0,lt=1"`

	// LuckyGuess is the probability of answering an item outside the latent
	// state correctly.
	LuckyGuess float64 `mapstructure:"lucky_guess" validate:"gte=0,lt=1"`

	// ConvergenceThreshold is the likelihood mass a single state must reach
	// for the assessment to finish.
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold" validate:"gte=0,lte=1"`

	// MaxQuestions bounds the number of questions before the assessment is
	// declared exhausted.
	MaxQuestions int `mapstructure:"max_questions" validate:"gte=0"`
}

// TaskConfig tunes the background task runner.
type TaskConfig struct {
	WorkerCount  int `mapstructure:"worker_count" validate:"omitempty,gt=0"`
	QueueSize    int `mapstructure:"queue_size" validate:"omitempty,gt=0"`
	StuckTaskAge int `mapstructure:"stuck_task_age_minutes" validate:"omitempty,gt=0"`
}
