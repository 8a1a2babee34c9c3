package flags

import (
	"os"
	"strconv"
	"time"

	applogger "titandash/pkg/logger"
)

// Defaults applied when the environment says nothing.
const (
	DefaultTimeout    = 8 * time.Second
	DefaultMaxRetries = 1
	DefaultTTL        = 30 * time.Second
)

// Policy is the process-wide data-sourcing policy. It is resolved once
// at startup and passed by value; nothing mutates it afterwards.
type Policy struct {
	ForceReal    bool
	UseMock      bool
	Debug        bool
	Timeout      time.Duration
	RetryEnabled bool
	MaxRetries   int
	DefaultTTL   time.Duration
}

// Default returns the policy used when no environment is consulted:
// real data only, retry once, 8s timeout.
func Default() Policy {
	return Policy{
		ForceReal:    true,
		UseMock:      false,
		Debug:        false,
		Timeout:      DefaultTimeout,
		RetryEnabled: true,
		MaxRetries:   DefaultMaxRetries,
		DefaultTTL:   DefaultTTL,
	}
}

// FromEnv resolves the policy from environment variables:
// FORCE_REAL (default true), USE_MOCK, DEBUG, API_TIMEOUT (ms),
// ENABLE_RETRY (default true), MAX_RETRIES.
//
// FORCE_REAL wins unconditionally: when set, USE_MOCK is forced off
// even if the environment requests it. The conflict is logged but the
// override cannot be bypassed.
func FromEnv(l *applogger.Logger) Policy {
	p := Policy{
		ForceReal:    envBool("FORCE_REAL", true),
		UseMock:      envBool("USE_MOCK", false),
		Debug:        envBool("DEBUG", false),
		Timeout:      envDurationMs("API_TIMEOUT", DefaultTimeout),
		RetryEnabled: envBool("ENABLE_RETRY", true),
		MaxRetries:   envInt("MAX_RETRIES", DefaultMaxRetries),
		DefaultTTL:   DefaultTTL,
	}

	if p.ForceReal && p.UseMock {
		if l != nil {
			l.Warn("USE_MOCK requested but FORCE_REAL is set; mock data disabled")
		}
		p.UseMock = false
	}

	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationMs(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
