// Package config loads fpc-bot settings. Layers, later wins: built-in
// defaults, an optional TOML file, a .env file, FPC_* environment variables
// and finally command line flags that were set explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/commons-tools/fpc-bot/internal/fpc"
)

// Policy mirrors fpc.Policy with file tags
type Policy struct {
	MinAgeDays   int `toml:"min_age_days"`
	MinSupport   int `toml:"min_support"`
	SupportRatio int `toml:"support_ratio"`
}

// Config is the process configuration
type Config struct {
	APIURL          string        `toml:"api_url"`
	UserAgent       string        `toml:"user_agent"`
	Timeout         time.Duration `toml:"timeout"`
	CandidatePrefix string        `toml:"candidate_prefix"`
	CandidateList   string        `toml:"candidate_list"`
	TestLog         string        `toml:"test_log"`
	DataDir         string        `toml:"data_dir"`
	Concurrency     int           `toml:"concurrency"`
	Addr            string        `toml:"addr"`
	Policy          Policy        `toml:"policy"`

	// Bot password credentials; empty means read-only
	BotUser     string `toml:"bot_user"`
	BotPassword string `toml:"bot_password"`
}

// Default returns the Commons configuration
func Default() *Config {
	p := fpc.DefaultPolicy()
	return &Config{
		APIURL:          "https://commons.wikimedia.org/w/api.php",
		UserAgent:       "fpc-bot/1.0 (https://commons.wikimedia.org/wiki/Commons:Featured_picture_candidates)",
		Timeout:         30 * time.Second,
		CandidatePrefix: "Commons:Featured picture candidates/",
		CandidateList:   "Commons:Featured picture candidates/candidate list",
		TestLog:         "Commons:Featured_picture_candidates/Log/January_2009",
		DataDir:         "./data",
		Concurrency:     5,
		Addr:            ":8080",
		Policy: Policy{
			MinAgeDays:   p.MinAgeDays,
			MinSupport:   p.MinSupport,
			SupportRatio: p.SupportRatio,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// empty), the env file (skipped when it does not exist) and the environment
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// Never overrides variables already set in the environment
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FPC_API_URL":          &c.APIURL,
		"FPC_USER_AGENT":       &c.UserAgent,
		"FPC_CANDIDATE_PREFIX": &c.CandidatePrefix,
		"FPC_CANDIDATE_LIST":   &c.CandidateList,
		"FPC_TEST_LOG":         &c.TestLog,
		"FPC_DATA_DIR":         &c.DataDir,
		"FPC_ADDR":             &c.Addr,
		"FPC_BOT_USER":         &c.BotUser,
		"FPC_BOT_PASSWORD":     &c.BotPassword,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FPC_CONCURRENCY":   &c.Concurrency,
		"FPC_MIN_AGE_DAYS":  &c.Policy.MinAgeDays,
		"FPC_MIN_SUPPORT":   &c.Policy.MinSupport,
		"FPC_SUPPORT_RATIO": &c.Policy.SupportRatio,
	}
	for name, dst := range ints {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s env variable: %w", name, err)
		}
		*dst = n
	}

	if v, ok := lookup("FPC_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FPC_TIMEOUT env variable: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// RegisterFlags declares the flags ApplyFlags understands
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("api-url", d.APIURL, "MediaWiki api.php endpoint")
	fs.String("user-agent", d.UserAgent, "User-Agent sent to the wiki")
	fs.Duration("timeout", d.Timeout, "HTTP timeout")
	fs.String("data-dir", d.DataDir, "Directory holding fpc.db and the search index")
	fs.Int("concurrency", d.Concurrency, "Concurrent page fetches during sync")
	fs.Int("min-age", d.Policy.MinAgeDays, "Days a nomination stays open")
	fs.Int("min-support", d.Policy.MinSupport, "Support votes needed to feature")
	fs.Int("support-ratio", d.Policy.SupportRatio, "Support must be at least this many times oppose")
}

// ApplyFlags copies the flags the user set explicitly onto c
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	r := &flagReader{fs: fs}
	r.setString("api-url", &c.APIURL)
	r.setString("user-agent", &c.UserAgent)
	r.setDuration("timeout", &c.Timeout)
	r.setString("data-dir", &c.DataDir)
	r.setInt("concurrency", &c.Concurrency)
	r.setInt("min-age", &c.Policy.MinAgeDays)
	r.setInt("min-support", &c.Policy.MinSupport)
	r.setInt("support-ratio", &c.Policy.SupportRatio)

	if r.err != nil {
		return fmt.Errorf("read flags: %w", r.err)
	}
	return nil
}

// flagReader reads changed flags and keeps the first error
type flagReader struct {
	fs  *pflag.FlagSet
	err error
}

func (r *flagReader) skip(name string) bool {
	return r.err != nil || !r.fs.Changed(name)
}

func (r *flagReader) setString(name string, dst *string) {
	if r.skip(name) {
		return
	}
	v, err := r.fs.GetString(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) setInt(name string, dst *int) {
	if r.skip(name) {
		return
	}
	v, err := r.fs.GetInt(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) setDuration(name string, dst *time.Duration) {
	if r.skip(name) {
		return
	}
	v, err := r.fs.GetDuration(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch {
	case c.APIURL == "":
		return errors.New("api url is required")
	case c.CandidatePrefix == "":
		return errors.New("candidate prefix is required")
	case c.CandidateList == "":
		return errors.New("candidate list is required")
	case c.DataDir == "":
		return errors.New("data dir is required")
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	case c.Policy.MinAgeDays < 1, c.Policy.MinSupport < 1, c.Policy.SupportRatio < 1:
		return fmt.Errorf("policy thresholds must be positive, got %+v", c.Policy)
	case (c.BotUser == "") != (c.BotPassword == ""):
		return errors.New("bot user and bot password must be set together")
	}
	return nil
}

// FPCPolicy returns the closing thresholds
func (c *Config) FPCPolicy() fpc.Policy {
	return fpc.Policy{
		MinAgeDays:   c.Policy.MinAgeDays,
		MinSupport:   c.Policy.MinSupport,
		SupportRatio: c.Policy.SupportRatio,
	}
}

// CanWrite reports whether credentials for edits are configured
func (c *Config) CanWrite() bool {
	return c.BotUser != "" && c.BotPassword != ""
}

// DBPath is the sqlite database location
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "fpc.db")
}

// IndexPath is the bleve index location
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "bleve")
}
