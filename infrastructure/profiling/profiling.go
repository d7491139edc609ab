// Package profiling starts the optional pprof endpoint and continuous
// profiling agent for a service.
package profiling

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
)

// Defaults.
const (
	DefaultPprofPort    = 6060
	DefaultPyroscopeURL = "http://pyroscope:4040"
	DefaultEnvironment  = "development"
)

const (
	pprofReadHeaderTimeout = 5 * time.Second
	applicationNameFormat  = "north-cloud.%s"
)

// Config controls both profilers. Both are off unless enabled.
type Config struct {
	Pprof        bool   `env:"ENABLE_PROFILING"            yaml:"pprof"`
	PprofPort    int    `env:"PPROF_PORT"                  yaml:"pprof_port"`
	Continuous   bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"continuous"`
	PyroscopeURL string `env:"PYROSCOPE_SERVER_URL"        yaml:"pyroscope_url"`
	Environment  string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.PprofPort == 0 {
		c.PprofPort = DefaultPprofPort
	}
	if c.PyroscopeURL == "" {
		c.PyroscopeURL = DefaultPyroscopeURL
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
}

// PprofAddr is the loopback address the pprof server binds to.
func (c Config) PprofAddr() string {
	return net.JoinHostPort("localhost", fmt.Sprint(c.PprofPort))
}

// NewPprofHandler returns a mux serving the standard /debug/pprof endpoints.
func NewPprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer serves pprof on localhost in the background when enabled.
// It returns nil when pprof is disabled.
func StartPprofServer(cfg Config, log logger.Logger) *http.Server {
	if !cfg.Pprof {
		return nil
	}
	cfg.SetDefaults()

	srv := &http.Server{
		Addr:              cfg.PprofAddr(),
		Handler:           NewPprofHandler(),
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
	return srv
}

// Profiler is a running continuous profiler. A nil *Profiler is valid.
type Profiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling when enabled and returns
// (nil, nil) when it is not.
func StartPyroscope(cfg Config, serviceName, version string, log logger.Logger) (*Profiler, error) {
	if !cfg.Continuous {
		return nil, nil //nolint:nilnil // disabled is not an error
	}
	cfg.SetDefaults()

	pcfg := pyroscope.Config{
		ApplicationName: fmt.Sprintf(applicationNameFormat, serviceName),
		ServerAddress:   cfg.PyroscopeURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	}

	p, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Continuous profiling started",
		logger.String("application", pcfg.ApplicationName),
		logger.String("server", cfg.PyroscopeURL),
		logger.String("environment", cfg.Environment),
	)
	return &Profiler{profiler: p}, nil
}

// Stop flushes and stops the profiler.
func (p *Profiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
