package oci

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"oras.land/oras-go/v2"
	orasoci "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/nlopezgi/bazel-toolchains/pkg/defaults"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// PushOptions configure pushing a packaged artifact to a registry.
type PushOptions struct {
	// StoreDir is the OCI layout store holding the artifact.
	StoreDir string

	// Reference is the registry reference to push, as tagged in the store.
	Reference string

	// PlainHTTP talks to the registry without TLS.
	PlainHTTP bool

	// InsecureTLS skips certificate verification.
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Reference string
	Digest    string
}

// Push copies a packaged artifact from its local OCI layout store to the
// registry named by the reference, authenticating with the Docker credential
// store.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	start := time.Now()

	store, err := orasoci.New(opts.StoreDir)
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open OCI layout store", err, map[string]any{
			"dir": opts.StoreDir,
		})
	}

	repo, err := remote.NewRepository(opts.Reference)
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid registry reference", err, map[string]any{
			"reference": opts.Reference,
		})
	}
	repo.PlainHTTP = opts.PlainHTTP

	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, "failed to open Docker credential store", err)
	}

	repo.Client = &auth.Client{
		Client:     httpClient(opts.InsecureTLS),
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}

	pushCtx, cancel := context.WithTimeout(ctx, defaults.PushTimeout)
	defer cancel()

	desc, err := oras.Copy(pushCtx, store, opts.Reference, repo, opts.Reference, oras.DefaultCopyOptions)
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to push artifact", err, map[string]any{
			"reference": opts.Reference,
		})
	}

	pushesTotal.WithLabelValues("success").Inc()
	pushDuration.Observe(time.Since(start).Seconds())

	slog.Info("artifact pushed", "reference", opts.Reference, "digest", desc.Digest.String())

	return &PushResult{
		Reference: opts.Reference,
		Digest:    desc.Digest.String(),
	}, nil
}

func httpClient(insecureTLS bool) *http.Client {
	if !insecureTLS {
		return retry.DefaultClient
	}
	return &http.Client{
		Transport: retry.NewTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}),
	}
}
