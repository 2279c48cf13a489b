package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

func TestRenderInstallPlan(t *testing.T) {
	plan := RenderInstallPlan(
		[]string{"gcc", "make"},
		[]string{"deb http://deb.example.com stable main"},
		[]string{"https://deb.example.com/key.gpg"},
	)

	want := []string{
		`echo "deb http://deb.example.com stable main" >> /etc/apt/sources.list.d/autoconfig.list`,
		`curl -fsSL "https://deb.example.com/key.gpg" | apt-key add -`,
		"apt-get update",
		"apt-get install -y gcc make",
	}

	require.Len(t, plan, len(want))
	for i := range want {
		assert.Equal(t, want[i], plan[i])
	}
}

func TestRenderInstallPlanPackagesOnly(t *testing.T) {
	plan := RenderInstallPlan([]string{"zip"}, nil, nil)

	want := []string{
		"apt-get update",
		"apt-get install -y zip",
	}
	assert.Equal(t, want, plan)
}

func TestPackageInstaller_Install(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{}

	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage:       "gcr.io/test/base:latest",
			BazelVersion:    "6.0.0",
			Packages:        []string{"gcc", "make"},
			AdditionalRepos: []string{"deb http://deb.example.com stable main"},
			Keys:            []string{"https://deb.example.com/key.gpg"},
		},
	}
	req.SetName("debian-test")

	ref, err := NewPackageInstaller(fake).Install(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "bazel-autoconfig/debian-test-deps", ref)

	require.Len(t, fake.pulled, 1)
	assert.Equal(t, "gcr.io/test/base:latest", fake.pulled[0])

	require.Len(t, fake.createdConfigs, 1)
	cfg := fake.createdConfigs[0]
	assert.Equal(t, "gcr.io/test/base:latest", cfg.Image)
	require.Len(t, cfg.Cmd, 3)
	assert.Contains(t, cfg.Cmd[2], "apt-get install -y gcc make")
	assert.Contains(t, cfg.Cmd[2], "apt-key add -")

	require.Len(t, fake.commits, 1)
	assert.Equal(t, "bazel-autoconfig/debian-test-deps", fake.commits[0].Reference)

	assert.Equal(t, []string{"fake-container"}, fake.removed)
}

func TestPackageInstaller_InstallNoPackages(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{}

	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage:    "gcr.io/test/base:latest",
			BazelVersion: "6.0.0",
		},
	}
	req.SetName("debian-test")

	ref, err := NewPackageInstaller(fake).Install(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "gcr.io/test/base:latest", ref)

	// No container work for a request without packages.
	assert.Empty(t, fake.pulled)
	assert.Empty(t, fake.createdConfigs)
}

func TestPackageInstaller_InstallRunFailure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeClient{waitCode: 100}

	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage: "gcr.io/test/base:latest",
			Packages:  []string{"gcc"},
		},
	}
	req.SetName("debian-test")

	_, err := NewPackageInstaller(fake).Install(ctx, req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
	assert.Empty(t, fake.commits)
}
