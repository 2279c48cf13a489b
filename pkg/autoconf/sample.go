package autoconf

import (
	_ "embed"
	"sync"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

//go:embed data/sample-request.yaml
var sampleRequestData []byte

var (
	sampleOnce sync.Once
	sample     *Request
	sampleErr  error
)

// SampleRequest returns the built-in sample request, parsed once and cached.
// Callers must not mutate the returned request.
func SampleRequest() (*Request, error) {
	sampleOnce.Do(func() {
		sample, sampleErr = Parse(sampleRequestData)
		if sampleErr != nil {
			sampleErr = errors.Wrap(errors.ErrCodeInternal,
				"failed to parse embedded sample request", sampleErr)
		}
	})
	return sample, sampleErr
}

// SampleRequestDocument returns the raw YAML bytes of the built-in sample
// request, for callers that want the document rather than the parsed form.
func SampleRequestDocument() []byte {
	return sampleRequestData
}
