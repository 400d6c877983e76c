package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CM"

const (
	DefaultPort    = 7180
	DefaultTimeout = 10 * time.Second

	maxTimeout = 10 * time.Minute
)

// Target identifies what is being checked. Cluster and service must both be
// present in check mode; role is optional.
type Target struct {
	Cluster string
	Service string
	Role    string
}

// Settings is the resolved configuration for one invocation. It is built
// once by Load and never mutated afterwards.
type Settings struct {
	Host          string
	Port          int
	User          string
	Password      string
	TLS           bool
	TLSSkipVerify bool
	TLSCAFile     string
	Timeout       time.Duration
	Verbosity     int

	Target Target

	ListClusters bool
	ListServices bool
	ListRoles    bool
}

// Flags returns the flag set understood by Load. The command layer mounts it
// onto the root command; tests parse it directly.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("check-cm", pflag.ContinueOnError)
	fs.StringP("host", "H", "", "cluster manager host")
	fs.IntP("port", "P", DefaultPort, "cluster manager API port")
	fs.StringP("user", "u", "", "API username")
	fs.StringP("password", "p", "", "API password (prefer the CM_PASSWORD environment variable)")
	fs.Bool("tls", false, "use HTTPS when talking to the API")
	fs.Bool("tls-skip-verify", false, "skip TLS certificate verification (requires --tls)")
	fs.String("tls-ca", "", "CA bundle in PEM format (requires --tls)")
	fs.StringP("cluster", "C", "", "cluster name")
	fs.StringP("service", "S", "", "service name")
	fs.StringP("role", "R", "", "role identifier (optional; checks the role instead of the service)")
	fs.DurationP("timeout", "t", DefaultTimeout, "deadline for the API request")
	fs.CountP("verbose", "v", "show role identifiers instead of role types and raise log verbosity")
	fs.Bool("list-clusters", false, "list cluster names and exit UNKNOWN")
	fs.Bool("list-services", false, "list service names of --cluster and exit UNKNOWN")
	fs.Bool("list-roles", false, "list role names of --cluster/--service and exit UNKNOWN")
	return fs
}

// UsageError reports bad or missing command-line input. It is always
// produced before any network access.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string { return e.Reason }

func usageErrorf(format string, args ...any) *UsageError {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// Load merges defaults, an optional config file, CM_* environment variables
// (a .env file in the working directory is honored) and command-line flags
// into validated Settings. Precedence, lowest to highest: flag defaults,
// config file, environment, flags given on the command line.
func Load(flags *pflag.FlagSet, configFile string) (*Settings, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("check-cm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/check-cm")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, usageErrorf("read config file %s: %v", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	s := &Settings{
		Host:          v.GetString("host"),
		Port:          v.GetInt("port"),
		User:          v.GetString("user"),
		Password:      v.GetString("password"),
		TLS:           v.GetBool("tls"),
		TLSSkipVerify: v.GetBool("tls-skip-verify"),
		TLSCAFile:     v.GetString("tls-ca"),
		Timeout:       v.GetDuration("timeout"),
		Verbosity:     v.GetInt("verbose"),
		Target: Target{
			Cluster: v.GetString("cluster"),
			Service: v.GetString("service"),
			Role:    v.GetString("role"),
		},
		ListClusters: v.GetBool("list-clusters"),
		ListServices: v.GetBool("list-services"),
		ListRoles:    v.GetBool("list-roles"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

var hostPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9.-]*[A-Za-z0-9])?$`)

// Validate checks the resolved settings and returns a UsageError for the
// first violation. It runs before any network access.
func (s *Settings) Validate() error {
	listFlags := 0
	for _, set := range []bool{s.ListClusters, s.ListServices, s.ListRoles} {
		if set {
			listFlags++
		}
	}
	if listFlags > 1 {
		return usageErrorf("only one --list-* flag may be given")
	}

	switch {
	case s.ListClusters:
		// Needs no target.
	case s.ListServices:
		if s.Target.Cluster == "" {
			return usageErrorf("--list-services requires --cluster")
		}
	case s.ListRoles:
		if s.Target.Cluster == "" || s.Target.Service == "" {
			return usageErrorf("--list-roles requires --cluster and --service")
		}
	default:
		if s.Target.Cluster == "" || s.Target.Service == "" {
			return usageErrorf("--cluster and --service are required, --role is optional")
		}
	}

	if s.Host == "" {
		return usageErrorf("--host is required")
	}
	if !hostPattern.MatchString(s.Host) {
		return usageErrorf("invalid --host %q: expected a hostname or IP address", s.Host)
	}
	if s.Port < 1 || s.Port > 65535 {
		return usageErrorf("invalid --port %d: must be in range 1-65535", s.Port)
	}
	if s.User == "" {
		return usageErrorf("--user is required")
	}
	if strings.ContainsFunc(s.User, unicode.IsSpace) || strings.Contains(s.User, ":") {
		return usageErrorf("invalid --user %q: must not contain whitespace or ':'", s.User)
	}
	if s.Password == "" {
		return usageErrorf("--password is required (or set CM_PASSWORD)")
	}
	if s.Timeout <= 0 || s.Timeout > maxTimeout {
		return usageErrorf("invalid --timeout %s: must be positive and at most %s", s.Timeout, maxTimeout)
	}
	if s.TLSSkipVerify && !s.TLS {
		return usageErrorf("--tls-skip-verify requires --tls")
	}
	if s.TLSCAFile != "" {
		if !s.TLS {
			return usageErrorf("--tls-ca requires --tls")
		}
		if s.TLSSkipVerify {
			return usageErrorf("--tls-ca and --tls-skip-verify are mutually exclusive")
		}
	}
	return nil
}

// ListMode reports whether any listing flag was selected.
func (s *Settings) ListMode() bool {
	return s.ListClusters || s.ListServices || s.ListRoles
}

// BaseURL returns the API root implied by host, port and TLS mode.
func (s *Settings) BaseURL() string {
	scheme := "http"
	if s.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}
