package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Stream struct {
		// SourceURL is the websocket endpoint of the comment relay.
		SourceURL string `yaml:"source_url"`
		Username  string `yaml:"username"`
	} `yaml:"stream"`
	Quiz struct {
		DefaultPoints    int    `yaml:"default_points"`
		DefaultTimeLimit int    `yaml:"default_time_limit"` // seconds
		MaxAnswerLength  int    `yaml:"max_answer_length"`
		LeaderboardSize  int    `yaml:"leaderboard_size"`
		StartDelay       string `yaml:"start_delay"`
		SolvedDelay      string `yaml:"solved_delay"`
		QuestionDelay    string `yaml:"question_delay"`
	} `yaml:"quiz"`
	Scores struct {
		File       string `yaml:"file"`
		Expiration string `yaml:"expiration"`
	} `yaml:"scores"`
	Questionnaires struct {
		Dir           string `yaml:"dir"`
		Default       string `yaml:"default"`
		MaxFileSizeMB int    `yaml:"max_file_size_mb"`
		CacheTTL      string `yaml:"cache_ttl"`
	} `yaml:"questionnaires"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path and fills in defaults for anything unset.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the built-in configuration used when no file is supplied.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Quiz.DefaultPoints == 0 {
		c.Quiz.DefaultPoints = 10
	}
	if c.Quiz.DefaultTimeLimit == 0 {
		c.Quiz.DefaultTimeLimit = 40
	}
	if c.Quiz.MaxAnswerLength == 0 {
		c.Quiz.MaxAnswerLength = 100
	}
	if c.Quiz.LeaderboardSize == 0 {
		c.Quiz.LeaderboardSize = 10
	}
	if c.Scores.File == "" {
		c.Scores.File = "quiz_scores.json"
	}
	if c.Questionnaires.Dir == "" {
		c.Questionnaires.Dir = "questionnaires"
	}
	if c.Questionnaires.Default == "" {
		c.Questionnaires.Default = "questionnaire1.json"
	}
	if c.Questionnaires.MaxFileSizeMB == 0 {
		c.Questionnaires.MaxFileSizeMB = 5
	}
}

// ScoreExpiration returns the persisted-score validity window.
func (c Config) ScoreExpiration() time.Duration {
	return TTLDuration(c.Scores.Expiration, 24*time.Hour)
}

// StartDelay is the wait between stream connect and the first question.
func (c Config) StartDelay() time.Duration {
	return TTLDuration(c.Quiz.StartDelay, 10*time.Second)
}

// SolvedDelay is the pause after a correct answer before advancing.
func (c Config) SolvedDelay() time.Duration {
	return TTLDuration(c.Quiz.SolvedDelay, 3*time.Second)
}

// QuestionDelay is the pause between questions.
func (c Config) QuestionDelay() time.Duration {
	return TTLDuration(c.Quiz.QuestionDelay, 5*time.Second)
}

// CacheTTL is how long loaded question sets stay cached.
func (c Config) CacheTTL() time.Duration {
	return TTLDuration(c.Questionnaires.CacheTTL, 10*time.Minute)
}

// MaxFileSizeBytes converts the configured megabyte cap to bytes.
func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.Questionnaires.MaxFileSizeMB) * 1024 * 1024
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
