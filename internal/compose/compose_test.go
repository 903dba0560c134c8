package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotOnPath = errors.New("executable file not found in $PATH")

func lookPathStub(found map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if path, ok := found[file]; ok {
			return path, nil
		}
		return "", errNotOnPath
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		onPath   map[string]string
		probeErr error
		want     string
		wantErr  error
	}{
		{
			name:   "compose v2 probe succeeds",
			onPath: map[string]string{"docker": "/usr/bin/docker", "docker-compose": "/usr/bin/docker-compose"},
			want:   "/usr/bin/docker compose",
		},
		{
			name:     "probe fails, legacy binary present",
			onPath:   map[string]string{"docker": "/usr/bin/docker", "docker-compose": "/usr/bin/docker-compose"},
			probeErr: errors.New("exit status 1"),
			want:     "/usr/bin/docker-compose",
		},
		{
			name:    "docker missing",
			onPath:  map[string]string{"docker-compose": "/usr/bin/docker-compose"},
			wantErr: ErrDockerNotFound,
		},
		{
			name:     "probe fails and no legacy binary",
			onPath:   map[string]string{"docker": "/usr/bin/docker"},
			probeErr: errors.New("exit status 1"),
			wantErr:  ErrComposeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var probed []string
			r := &Resolver{
				LookPath: lookPathStub(tt.onPath),
				Probe: func(ctx context.Context, name string, args ...string) error {
					probed = append(append(probed, name), args...)
					return tt.probeErr
				},
			}

			cmd, err := r.Resolve(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
			assert.Equal(t, []string{"/usr/bin/docker", "compose", "version"}, probed)
		})
	}
}

func TestCommandExec_BuildsArgv(t *testing.T) {
	tests := []struct {
		name   string
		prefix []string
		args   []string
		want   []string
	}{
		{
			name:   "two-token prefix",
			prefix: []string{"/usr/bin/docker", "compose"},
			args:   []string{"exec", "-T", "db", "pg_dump", "-U", "wikijs", "wiki"},
			want:   []string{"/usr/bin/docker", "compose", "exec", "-T", "db", "pg_dump", "-U", "wikijs", "wiki"},
		},
		{
			name:   "single-token prefix",
			prefix: []string{"/usr/bin/docker-compose"},
			args:   []string{"ps"},
			want:   []string{"/usr/bin/docker-compose", "ps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand(tt.prefix...).Exec(context.Background(), tt.args...)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}
}
