package header

import (
	"fmt"
	"strings"
	"time"
)

var (
	APIVersionDomain = "bazel.build"
	APIVersionV1     = "v1"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the
// Header. If the Metadata map is nil, it will be initialized.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind returns an Option that sets the Kind field of the Header.
// Kind represents the type of the resource (e.g., "AutoconfigRequest",
// "CompiledScript").
func WithKind(kind string) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion returns an Option that sets the APIVersion field of the
// Header. The APIVersion identifies the schema version for the resource.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// WithName returns an Option that sets the resource name in Metadata.
func WithName(name string) Option {
	return WithMetadata("name", name)
}

// New creates a new Header instance with the provided functional options.
// The Metadata map is initialized automatically.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Header contains metadata and versioning information for autoconfig
// resources. It follows Kubernetes-style resource conventions with Kind,
// APIVersion, and Metadata fields.
type Header struct {
	// Kind is the type of the resource.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the API version of the resource schema.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs with metadata about the resource.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// APIVersionFor returns the API version for the given kind, in the form
// "<kind>.bazel.build/v1".
func APIVersionFor(kind string) string {
	return fmt.Sprintf("%s.%s/%s", strings.ToLower(kind), APIVersionDomain, APIVersionV1)
}

// Name returns the resource name from Metadata, or "".
func (h *Header) Name() string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata["name"]
}

// SetName sets the resource name in Metadata, initializing the map if nil.
func (h *Header) SetName(name string) {
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata["name"] = name
}

// SetKind updates the Kind field of the Header.
func (h *Header) SetKind(kind string) {
	h.Kind = kind
}

// Set initializes the Header fields with the provided kind. It constructs
// the APIVersion using the format "<kind>.bazel.build/v1" and stamps a
// generated-timestamp into the Metadata, preserving any existing entries.
func (h *Header) Set(kind string) {
	h.Kind = kind
	h.APIVersion = APIVersionFor(kind)
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata["generated-timestamp"] = time.Now().UTC().Format(time.RFC3339)
}
