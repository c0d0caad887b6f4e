package main

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Config defines the server environment variables.
type Config struct {
	Port              int           `env:"PORT,default=3001"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	CommandBuffer     int           `env:"COMMAND_BUFFER,default=1024"`
	SessionBuffer     int           `env:"SESSION_BUFFER,default=64"`
	CharReplacement   string        `env:"CHAR_REPLACEMENT,default=*"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,default=5s"`
	SeedDemoData      bool          `env:"SEED_DEMO_DATA,default=true"`
}

// characterRune enforces a single-rune censoring replacement.
func characterRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("CHAR_REPLACEMENT must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
