package health

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/kebairia/wikiops/internal/compose"
	"github.com/kebairia/wikiops/internal/config"
	"github.com/kebairia/wikiops/internal/envfile"
	"github.com/kebairia/wikiops/internal/logger"
)

// KeyPublicPort is the optional env key naming the wiki's published HTTP
// port.
const KeyPublicPort = "WIKI_PUBLIC_PORT"

// Checker runs the deployment health check: file and directory presence,
// compose CLI resolution, orchestrator status, and an HTTP liveness probe.
// Resolve and Status are injectable for tests; NewChecker wires the real
// implementations.
type Checker struct {
	Config  config.Config
	Report  *Reporter
	Resolve func(ctx context.Context) (compose.Command, error)
	Status  func(ctx context.Context, cmd compose.Command) error
	Client  *http.Client
}

// NewChecker builds a Checker over the host's compose CLI and a probe
// client bounded by the configured timeout.
func NewChecker(cfg config.Config, log logger.Logger) *Checker {
	resolver := compose.NewResolver()
	return &Checker{
		Config:  cfg,
		Report:  NewReporter(log),
		Resolve: resolver.Resolve,
		Status: func(ctx context.Context, cmd compose.Command) error {
			ps := cmd.Exec(ctx, "ps")
			ps.Dir = cfg.ProjectRoot
			ps.Stdout = os.Stdout
			ps.Stderr = os.Stderr
			return ps.Run()
		},
		Client: &http.Client{Timeout: cfg.Health.ProbeTimeout},
	}
}

// Run executes the check sequence and returns the final tally. A missing
// compose file, a directory-creation failure, or an unresolvable compose
// CLI halts the run; every other problem is recorded as a warning and the
// diagnostic continues. The caller fails the run iff Tally.Error > 0.
func (c *Checker) Run(ctx context.Context) Tally {
	cfg := c.Config
	r := c.Report

	r.Info("starting health check", "root", cfg.ProjectRoot)

	if _, err := os.Stat(cfg.ComposePath()); err != nil {
		r.Error("compose file not found in project root", "path", cfg.ComposePath())
		return r.Tally()
	}
	r.OK("compose file found", "path", cfg.ComposePath())

	if _, err := os.Stat(cfg.EnvPath()); err != nil {
		r.Warn("env file not found", "path", cfg.EnvPath())
		r.Info("create it from .env.example and fill in your values")
	} else {
		r.OK("env file found", "path", cfg.EnvPath())
	}

	for _, dir := range cfg.DataDirs() {
		if _, err := os.Stat(dir); err == nil {
			r.OK("data directory exists", "path", dir)
			continue
		}
		r.Warn("data directory missing, creating", "path", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			r.Error("failed to create data directory", "path", dir, "error", err)
			return r.Tally()
		}
		r.OK("data directory created", "path", dir)
	}

	cmd, err := c.Resolve(ctx)
	if err != nil {
		r.Error("compose CLI not available", "error", err)
		return r.Tally()
	}
	r.OK("compose command resolved", "command", cmd.String())

	if err := c.Status(ctx, cmd); err != nil {
		r.Warn("compose status command failed", "error", err)
	} else {
		r.OK("compose status reported")
	}

	c.probeStep(ctx)

	tally := r.Tally()
	r.Info("health check summary",
		"ok", tally.OK, "warn", tally.Warn, "error", tally.Error)
	return tally
}

// probeStep issues the single bounded GET against the wiki's public port.
// Any fault is a warning; the probe never halts the run.
func (c *Checker) probeStep(ctx context.Context) {
	port := c.Config.Health.DefaultPort
	env, err := envfile.LoadOptional(c.Config.EnvPath(), KeyPublicPort)
	if err != nil {
		c.Report.Warn("failed to read env file for probe port", "error", err)
	} else if p, ok := env[KeyPublicPort]; ok && p != "" {
		port = p
	}

	url := fmt.Sprintf("http://localhost:%s", port)
	result := probe(ctx, c.Client, url)
	if result.Reachable {
		c.Report.OK("wiki answered HTTP probe", "url", url, "code", result.StatusCode)
	} else {
		c.Report.Warn("wiki did not answer HTTP probe", "url", url, "reason", result.Reason)
	}
}

// ProbeResult is the explicit outcome of the liveness probe; the probe
// itself never returns an error to its caller.
type ProbeResult struct {
	Reachable  bool
	StatusCode int
	Reason     string
}

// probe performs one GET with no retry. Status codes below 400 count as
// reachable; an HTTP error status, timeout, refused connection, or any
// other fault is normalized into the Reason field.
func probe(ctx context.Context, client *http.Client, url string) ProbeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeResult{Reason: err.Error()}
	}
	resp, err := client.Do(req)
	if err != nil {
		return ProbeResult{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ProbeResult{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}
	return ProbeResult{Reachable: true, StatusCode: resp.StatusCode}
}
