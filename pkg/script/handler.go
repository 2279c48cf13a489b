package script

import (
	"log/slog"
	"net/http"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
	"github.com/nlopezgi/bazel-toolchains/pkg/server"
)

// HandleCompile processes compilation requests over HTTP.
// It accepts a POST request whose body is an AutoconfigRequest document in
// YAML or JSON and responds with the CompiledScript document as JSON.
// Requests that fail validation are rejected with HTTP 422 and the
// violation in the error details.
//
// Example:
//
//	POST /v1/autoconfig/compile
//	Content-Type: application/yaml
//	Body: kind: AutoconfigRequest ...
func (c *Compiler) HandleCompile(w http.ResponseWriter, r *http.Request) {
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

	req, err := autoconf.Parse(body)
	if err != nil {
		var violation *autoconf.Violation
		if errors.As(err, &violation) {
			writeViolation(w, r, violation)
			return
		}
		server.WriteErrorFromErr(w, r, err, "Failed to parse request document", nil)
		return
	}

	compiled, err := c.Compile(req)
	if err != nil {
		var violation *autoconf.Violation
		if errors.As(err, &violation) {
			writeViolation(w, r, violation)
			return
		}
		server.WriteErrorFromErr(w, r, err, "Failed to compile request", nil)
		return
	}

	slog.Debug("compile request handled",
		"name", compiled.Name(),
		"commands", len(compiled.Commands),
		"checks", len(compiled.Checks),
	)
	serializer.RespondJSON(w, http.StatusOK, compiled)
}

// writeViolation maps a validation failure to HTTP 422 with the violation
// carried in the error details.
func writeViolation(w http.ResponseWriter, r *http.Request, violation *autoconf.Violation) {
	server.WriteError(w, r, http.StatusUnprocessableEntity, errors.ErrCodeInvalidRequest,
		"Request failed validation", false, map[string]any{
			"kind":   violation.Kind,
			"fields": violation.Fields,
			"detail": violation.Detail,
		})
}
