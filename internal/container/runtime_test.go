// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec answers LookPath from onPath and RunSilent from succeeds, and
// records every silent command it was asked to run.
type fakeExec struct {
	onPath    []string
	succeeds  []string
	piped     func(args []string, stdin io.Reader, stdout, stderr io.Writer) error
	ran       []string
	pipedWith string
}

func (f *fakeExec) LookPath(file string) (string, error) {
	for _, bin := range f.onPath {
		if bin == file {
			return "/usr/local/bin/" + file, nil
		}
	}
	return "", errors.New("executable not found")
}

func (f *fakeExec) RunSilent(name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	f.ran = append(f.ran, line)
	for _, ok := range f.succeeds {
		if ok == line {
			return nil
		}
	}
	return errors.New("exit status 1")
}

func (f *fakeExec) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f.pipedWith = name
	if f.piped == nil {
		return nil
	}
	return f.piped(args, stdin, stdout, stderr)
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		fake     fakeExec
		want     string
		wantRuns []string
	}{
		{
			name:     "prefers docker",
			fake:     fakeExec{onPath: []string{"docker", "podman"}, succeeds: []string{"docker info", "podman info"}},
			want:     "docker",
			wantRuns: []string{"docker info"},
		},
		{
			name:     "podman when docker absent",
			fake:     fakeExec{onPath: []string{"podman"}, succeeds: []string{"podman info"}},
			want:     "podman",
			wantRuns: []string{"podman info"},
		},
		{
			name:     "podman when docker daemon down",
			fake:     fakeExec{onPath: []string{"docker", "podman"}, succeeds: []string{"podman info"}},
			want:     "podman",
			wantRuns: []string{"docker info", "podman info"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := tt.fake
			rt, err := detectRuntime(&fake)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Name())
			assert.Equal(t, tt.wantRuns, fake.ran)
		})
	}
}

func TestDetectRuntime_NoneUsable(t *testing.T) {
	fake := &fakeExec{onPath: []string{"docker"}}
	_, err := detectRuntime(fake)
	assert.ErrorContains(t, err, "neither docker nor podman")
}

func TestImageExists(t *testing.T) {
	const image = "markitdown:latest"

	for _, bin := range []string{binDocker, binPodman} {
		t.Run(bin, func(t *testing.T) {
			check := newRuntime(bin, &fakeExec{}).imageCheck
			line := strings.Join(append(append([]string{bin}, check...), image), " ")

			present := newRuntime(bin, &fakeExec{succeeds: []string{line}})
			assert.NoError(t, present.ImageExists(image))

			missing := newRuntime(bin, &fakeExec{})
			err := missing.ImageExists(image)
			assert.ErrorContains(t, err, "image markitdown:latest not found in "+bin)
		})
	}
	assert.Equal(t, []string{"image", "exists"}, newRuntime(binPodman, &fakeExec{}).imageCheck)
	assert.Equal(t, []string{"image", "inspect"}, newRuntime(binDocker, &fakeExec{}).imageCheck)
}

func TestRun_PipesThroughIsolatedContainer(t *testing.T) {
	var args []string
	fake := &fakeExec{piped: func(a []string, stdin io.Reader, stdout, _ io.Writer) error {
		args = a
		_, err := io.Copy(stdout, stdin)
		return err
	}}

	var out bytes.Buffer
	err := newRuntime(binDocker, fake).Run(context.Background(), "markitdown:latest", strings.NewReader("%PDF-1.7"), &out)
	require.NoError(t, err)

	assert.Equal(t, "docker", fake.pipedWith)
	assert.Equal(t, "%PDF-1.7", out.String())
	assert.Contains(t, strings.Join(args, " "), "--network none")
	assert.Equal(t, "markitdown:latest", args[len(args)-1])
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"with stderr", "unsupported file\n", "running podman container markitdown:latest: exit status 2: unsupported file"},
		{"silent failure", "", "running podman container markitdown:latest: exit status 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExec{piped: func(_ []string, _ io.Reader, _, stderr io.Writer) error {
				_, _ = io.WriteString(stderr, tt.stderr)
				return errors.New("exit status 2")
			}}
			err := newRuntime(binPodman, fake).Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
