package deps

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Built-in dependency names.
const (
	Router      = "router"
	Listener    = "listener"
	LLMClient   = "llm-client"
	Docker      = "docker"
	GoogleCloud = "google-cloud"
)

var (
	// DefaultRequired must all resolve for the server to start.
	DefaultRequired = []string{Router, Listener, LLMClient}
	// DefaultOptional are only reported. A personal deployment runs without them.
	DefaultOptional = []string{Docker, GoogleCloud}
)

// Report is the outcome of a probe
type Report struct {
	Present         []string `json:"present"`
	Missing         []string `json:"missing"`
	OptionalPresent []string `json:"optional_present"`
}

// OK reports whether every required dependency resolved
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Prober checks required and optional dependencies
type Prober struct {
	Required []string
	Optional []string
	Resolver Resolver
	Logger   *zap.Logger
}

// NewProber creates a prober for the default dependency lists
func NewProber(resolver Resolver, logger *zap.Logger) *Prober {
	return &Prober{
		Required: DefaultRequired,
		Optional: DefaultOptional,
		Resolver: resolver,
		Logger:   logger,
	}
}

// Check resolves every dependency. It never fails: a required dependency that
// does not resolve is listed in Report.Missing.
func (p *Prober) Check(ctx context.Context) Report {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Checking personal dependencies")

	report := Report{
		Present: []string{},
		Missing: []string{},
	}

	for _, name := range p.Required {
		if err := p.resolve(ctx, name); err != nil {
			logger.Debug("Dependency unavailable", zap.String("dependency", name), zap.Error(err))
			report.Missing = append(report.Missing, name)
			continue
		}
		logger.Info("Dependency available", zap.String("dependency", name))
		report.Present = append(report.Present, name)
	}

	for _, name := range p.Optional {
		if err := p.resolve(ctx, name); err != nil {
			logger.Info("Optional dependency not available (not needed for personal use)", zap.String("dependency", name))
			continue
		}
		logger.Warn("Optional dependency available (not needed for personal use)", zap.String("dependency", name))
		report.OptionalPresent = append(report.OptionalPresent, name)
	}

	if !report.OK() {
		logger.Error("Missing essential dependencies", zap.Strings("missing", report.Missing))
	}

	return report
}

func (p *Prober) resolve(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check for %s panicked: %v", name, r)
		}
	}()
	return p.Resolver.Resolve(ctx, name)
}
