package engine

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the tunables of a match and its host.
type Config struct {
	StartingMoney int
	StartingLives int
	Seed          int64
	RoundBonus    int
	// Step is the game time one balloon movement step stands for.
	Step          time.Duration
	RoundsFile    string
	WaypointsFile string
	LogLevel      logrus.Level
	// Strict panics on broken invariants instead of dropping the balloon.
	Strict bool
	Sound  bool
}

// DefaultConfig mirrors the stock game: 200 money, 100 lives, 60 steps a second.
func DefaultConfig() Config {
	return Config{
		StartingMoney: 200,
		StartingLives: 100,
		RoundBonus:    20,
		Step:          time.Second / 60,
		LogLevel:      logrus.InfoLevel,
		Sound:         true,
	}
}

// ConfigFromEnv overlays BTD_* environment variables on DefaultConfig.
// Front-ends load .env with godotenv before calling it.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	var err error

	if cfg.StartingMoney, err = envInt("BTD_MONEY", cfg.StartingMoney); err != nil {
		return cfg, err
	}
	if cfg.StartingLives, err = envInt("BTD_LIVES", cfg.StartingLives); err != nil {
		return cfg, err
	}
	if cfg.RoundBonus, err = envInt("BTD_ROUND_BONUS", cfg.RoundBonus); err != nil {
		return cfg, err
	}
	seed, err := envInt("BTD_SEED", 0)
	if err != nil {
		return cfg, err
	}
	cfg.Seed = int64(seed)

	stepMS, err := envInt("BTD_STEP_MS", 0)
	if err != nil {
		return cfg, err
	}
	if stepMS > 0 {
		cfg.Step = time.Duration(stepMS) * time.Millisecond
	}

	cfg.RoundsFile = os.Getenv("BTD_ROUNDS")
	cfg.WaypointsFile = os.Getenv("BTD_WAYPOINTS")

	if v := os.Getenv("BTD_LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: BTD_LOG_LEVEL: %v", ErrBadConfig, err)
		}
		cfg.LogLevel = lvl
	}
	if cfg.Strict, err = envBool("BTD_STRICT", cfg.Strict); err != nil {
		return cfg, err
	}
	if cfg.Sound, err = envBool("BTD_SOUND", cfg.Sound); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no match can start with.
func (c Config) Validate() error {
	if c.StartingMoney < 0 {
		return fmt.Errorf("%w: starting money %d", ErrBadConfig, c.StartingMoney)
	}
	if c.StartingLives <= 0 {
		return fmt.Errorf("%w: starting lives %d", ErrBadConfig, c.StartingLives)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %v", ErrBadConfig, c.Step)
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrBadConfig, key, v)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrBadConfig, key, v)
	}
	return b, nil
}
