package types

// redacted is the value substituted for secrets in logs and serialization.
const redacted = "***REDACTED***"

// SecretString holds a sensitive value (API key, SMTP credential, DSN) and
// refuses to reveal it through fmt or JSON. Call Unmask only at the point
// the plaintext is genuinely required, such as building an Authorization
// header or a database connection string.
type SecretString string

// String satisfies fmt.Stringer with a redacted placeholder.
func (s SecretString) String() string { return redacted }

// MarshalJSON serializes the redacted placeholder, never the raw value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string { return string(s) }

// IsSet reports whether a non-empty secret was configured.
func (s SecretString) IsSet() bool { return s != "" }
