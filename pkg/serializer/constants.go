package serializer

// URI constants for output destinations
const (
	// StdoutURI is the special URI indicating output should be written to stdout.
	StdoutURI = "-"
)
