package autoconf

import (
	"log/slog"
	"net/http"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
	"github.com/nlopezgi/bazel-toolchains/pkg/server"
)

// HandleValidate processes request validation over HTTP.
// It accepts a POST request whose body is an AutoconfigRequest document in
// YAML or JSON. The response is always a ValidationResult with HTTP 200 when
// the document could be read; only transport problems (bad method, unreadable
// or undecodable body) use the error envelope.
//
// Example:
//
//	POST /v1/autoconfig/validate
//	Content-Type: application/yaml
//	Body: kind: AutoconfigRequest ...
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method": r.Method,
			})
		return
	}

	body, err := serializer.ReadBody(r, serializer.DefaultMaxBodyBytes)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Invalid request body", false, map[string]any{
				"error": err.Error(),
			})
		return
	}

	result, err := ValidateDocument(body)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to parse request document", nil)
		return
	}

	slog.Debug("validation request handled",
		"name", result.Name(),
		"status", result.Status,
	)
	serializer.RespondJSON(w, http.StatusOK, result)
}

// HandleSample serves the built-in sample request.
// It accepts a GET request and responds with the sample AutoconfigRequest
// document as JSON.
func HandleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method": r.Method,
			})
		return
	}

	sample, err := SampleRequest()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to load sample request", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, sample)
}

// ValidateDocument parses and validates a raw request document, returning a
// ValidationResult for anything expressible as a violation. Errors are
// reserved for documents that cannot be decoded at all.
func ValidateDocument(data []byte) (*ValidationResult, error) {
	req, err := Parse(data)
	if err != nil {
		var violation *Violation
		if errors.As(err, &violation) {
			validationTotal.WithLabelValues(string(ValidationStatusInvalid)).Inc()
			return NewValidationResult(requestName(data), violation), nil
		}
		return nil, err
	}

	var violation *Violation
	if err := Validate(req); err != nil {
		if !errors.As(err, &violation) {
			return nil, err
		}
	}

	result := NewValidationResult(req.Name(), violation)
	validationTotal.WithLabelValues(string(result.Status)).Inc()
	return result, nil
}
