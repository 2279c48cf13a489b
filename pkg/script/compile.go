package script

import (
	"time"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/header"
)

// Compiler turns validated autoconfig requests into compiled scripts.
type Compiler struct {
	version string
}

// Option is a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithVersion stamps the compiler version into compiled script metadata.
func WithVersion(version string) Option {
	return func(c *Compiler) {
		c.version = version
	}
}

// New creates a Compiler with the provided options.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile validates and compiles a request. The request is normalized into
// a copy first, so compilation is a pure function of its input: compiling
// the same request twice yields byte-identical scripts. Validation failures
// are returned as a *autoconf.Violation; compilation itself cannot fail on
// a valid request.
func (c *Compiler) Compile(req *autoconf.Request) (*CompiledScript, error) {
	start := time.Now()
	defer func() {
		compileDuration.Observe(time.Since(start).Seconds())
	}()

	if req == nil {
		compileTotal.WithLabelValues("error").Inc()
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request is nil")
	}

	norm := req.Normalized()
	if err := autoconf.Validate(norm); err != nil {
		compileTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	compiled := &CompiledScript{
		Header: header.Header{
			Kind:       KindCompiledScript,
			APIVersion: header.APIVersionFor(KindCompiledScript),
		},
	}
	compiled.SetName(norm.Name())
	if c.version != "" {
		compiled.Metadata["compiler-version"] = c.version
	}

	for _, stage := range pipeline {
		cmds := stage.build(norm)
		compiled.Commands = append(compiled.Commands, banner(stage.name))
		compiled.Commands = append(compiled.Commands, cmds...)
		compiled.Stages = append(compiled.Stages, StageSummary{
			Name:     stage.name,
			Commands: len(cmds),
		})
	}
	compiled.Mounts = mountsFor(norm)
	compiled.Checks = checksFor(norm)

	compileTotal.WithLabelValues("success").Inc()
	return compiled, nil
}

// Compile compiles a request with a default Compiler.
func Compile(req *autoconf.Request) (*CompiledScript, error) {
	return New().Compile(req)
}
