package compose

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrDockerNotFound indicates the container runtime binary is absent.
var ErrDockerNotFound = errors.New(
	"docker not found in PATH; install Docker and retry")

// ErrComposeNotFound indicates that neither compose invocation style works.
var ErrComposeNotFound = errors.New(
	"neither 'docker compose' nor 'docker-compose' is available; install Docker Compose v2 or v1")

// Command is the resolved compose invocation prefix, e.g. ["docker",
// "compose"] or ["docker-compose"]. It is resolved once per run and reused
// for every subprocess call.
type Command struct {
	prefix []string
}

// NewCommand builds a Command from an explicit token prefix.
func NewCommand(prefix ...string) Command {
	return Command{prefix: prefix}
}

// Exec builds an *exec.Cmd invoking the compose prefix with args appended.
func (c Command) Exec(ctx context.Context, args ...string) *exec.Cmd {
	argv := append(append([]string{}, c.prefix[1:]...), args...)
	return exec.CommandContext(ctx, c.prefix[0], argv...)
}

func (c Command) String() string {
	return strings.Join(c.prefix, " ")
}

// Resolver detects which compose invocation style the host supports. The
// LookPath and Probe fields default to the real executable search and a
// subprocess probe; tests override them.
type Resolver struct {
	LookPath func(file string) (string, error)
	Probe    func(ctx context.Context, name string, args ...string) error
}

// NewResolver returns a Resolver backed by the host PATH and os/exec.
func NewResolver() *Resolver {
	return &Resolver{
		LookPath: exec.LookPath,
		Probe: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Resolve locates the compose CLI. Strategy: require the docker binary, try
// the v2 "docker compose version" probe, then fall back to the standalone
// docker-compose binary. A failed probe is data, not a fatal error; only
// exhausting both strategies fails.
func (r *Resolver) Resolve(ctx context.Context) (Command, error) {
	dockerPath, err := r.LookPath("docker")
	if err != nil {
		return Command{}, fmt.Errorf("%w", ErrDockerNotFound)
	}

	if err := r.Probe(ctx, dockerPath, "compose", "version"); err == nil {
		return Command{prefix: []string{dockerPath, "compose"}}, nil
	}

	if legacyPath, err := r.LookPath("docker-compose"); err == nil {
		return Command{prefix: []string{legacyPath}}, nil
	}

	return Command{}, fmt.Errorf("%w", ErrComposeNotFound)
}
