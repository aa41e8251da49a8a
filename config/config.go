package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned by Require when a role has no usable login.
var ErrMissingCredentials = errors.New("missing credentials")

const (
	// DefaultTestEnv is used when neither test_env nor TEST_ENV is set.
	DefaultTestEnv = "prod"
	// DefaultEnvDir is the directory holding <test env>.env files.
	DefaultEnvDir = "env"
	// DefaultAuthDir is where storage state snapshots are cached.
	DefaultAuthDir = "playwright/.auth"
	// DefaultEnvironmentKey replaces an empty ENVIRONMENT_NAME in cache keys.
	DefaultEnvironmentKey = "default"
)

// Credentials is the login of one role. It is immutable after Load.
type Credentials struct {
	Role     Role
	Email    string
	Password string
	// Name is the display name shown after login. Optional.
	Name string
}

// Complete reports whether email and password are both set.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// Config is the read-only registry of settings resolved once at start.
// Unset values read as zero values; callers assert on them when a test needs them.
type Config struct {
	TestEnv         string
	EnvironmentName string
	BaseURL         string
	EnableCoverage  bool
	Headless        bool
	AuthDir         string
	TimeoutScale    float64
	LogLevel        string

	credentials map[Role]Credentials
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// TestEnv selects env/<TestEnv>.env.
	// Default: test_env, then TEST_ENV, then DefaultTestEnv
	TestEnv string
	// EnvDir is the directory with .env files.
	// Default: DefaultEnvDir
	EnvDir string
	// LookupEnv reads the process environment.
	// Default: os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

// Load resolves the configuration. Values from the process environment always
// win over values from the .env file. A missing .env file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	testEnv := opts.TestEnv
	if testEnv == "" {
		testEnv = firstSet(lookupEnv, "test_env", "TEST_ENV")
	}
	if testEnv == "" {
		testEnv = DefaultTestEnv
	}

	envDir := opts.EnvDir
	if envDir == "" {
		envDir = DefaultEnvDir
	}

	file, err := readEnvFile(filepath.Join(envDir, testEnv+".env"))
	if err != nil {
		return nil, err
	}

	lookup := func(key string) string {
		if v, ok := lookupEnv(key); ok {
			return v
		}
		if file != nil && file.IsSet(key) {
			return file.GetString(key)
		}
		return ""
	}

	cfg := &Config{
		TestEnv:         testEnv,
		EnvironmentName: lookup("ENVIRONMENT_NAME"),
		BaseURL:         lookup("BASE_URL"),
		EnableCoverage:  lookup("ENABLE_COVERAGE") == "true",
		Headless:        lookup("HEADLESS") != "false",
		AuthDir:         lookup("CVSUITE_AUTH_DIR"),
		LogLevel:        lookup("LOG_LEVEL"),
		TimeoutScale:    1,
		credentials:     make(map[Role]Credentials, len(Roles)),
	}
	if cfg.AuthDir == "" {
		cfg.AuthDir = DefaultAuthDir
	}
	if raw := lookup("CVSUITE_TIMEOUT_SCALE"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			return nil, fmt.Errorf("invalid CVSUITE_TIMEOUT_SCALE %q", raw)
		}
		cfg.TimeoutScale = scale
	}

	for _, role := range Roles {
		prefix := role.EnvPrefix()
		cfg.credentials[role] = Credentials{
			Role:     role,
			Email:    lookup(prefix + "_EMAIL"),
			Password: lookup(prefix + "_PASSWORD"),
			Name:     lookup(prefix + "_NAME"),
		}
	}

	return cfg, nil
}

func readEnvFile(path string) (*viper.Viper, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking env file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return v, nil
}

func firstSet(lookupEnv func(string) (string, bool), keys ...string) string {
	for _, key := range keys {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// Credentials returns the login of a role. Unknown or unset roles yield
// a record with empty fields.
func (c *Config) Credentials(role Role) Credentials {
	if creds, ok := c.credentials[role]; ok {
		return creds
	}
	return Credentials{Role: role}
}

// ConfiguredRoles returns the roles that have both email and password set.
func (c *Config) ConfiguredRoles() []Role {
	var roles []Role
	for _, role := range Roles {
		if c.Credentials(role).Complete() {
			roles = append(roles, role)
		}
	}
	return roles
}

// Require returns ErrMissingCredentials naming the unset variables of role.
func (c *Config) Require(role Role) error {
	creds := c.Credentials(role)
	var missing []string
	if creds.Email == "" {
		missing = append(missing, role.EnvPrefix()+"_EMAIL")
	}
	if creds.Password == "" {
		missing = append(missing, role.EnvPrefix()+"_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w for role %s: %s", ErrMissingCredentials, role, strings.Join(missing, ", "))
	}
	return nil
}

// EnvironmentKey is the lower-cased environment name used in cache file names.
func (c *Config) EnvironmentKey() string {
	if c.EnvironmentName == "" {
		return DefaultEnvironmentKey
	}
	return strings.ToLower(c.EnvironmentName)
}

// URL joins path onto the base URL.
func (c *Config) URL(path string) string {
	if path == "" {
		return c.BaseURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
