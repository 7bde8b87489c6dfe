package tokenstore

// Redacted wraps a bearer token so it can be passed to loggers and
// formatters without leaking the value.
//
//	logging.Debug("Session", "installed %s", tokenstore.Redact(token)) // installed [REDACTED]
type Redacted struct {
	value string
}

// Redact wraps value.
func Redact(value string) Redacted {
	return Redacted{value: value}
}

// Value returns the raw token. Only use it to build an Authorization header.
func (r Redacted) Value() string {
	return r.value
}

func (r Redacted) IsEmpty() bool {
	return r.value == ""
}

func (r Redacted) String() string {
	if r.value == "" {
		return "[NONE]"
	}
	return "[REDACTED]"
}

func (r Redacted) GoString() string {
	return "tokenstore.Redacted{" + r.String() + "}"
}

func (r Redacted) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
