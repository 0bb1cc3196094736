package jsoner

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// They run inline with encoding, decoding and store calls.
type Hooks interface {
	// A tagged object was returned as a plain map instead of a live value.
	// reason ∈ {"unresolved_type", "not_constructible", "payload_mismatch", "bad_tag"}
	DecodeFallback(typePath, reason string)

	// Encode rejected a value that no strategy covers.
	EncodeRejected(typeName string)

	// A store dropped an entry it could not read.
	// reason ∈ {"corrupt", "codec_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// The provider refused a write (e.g. admission policy).
	ProviderSetRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DecodeFallback(string, string) {}
func (NopHooks) EncodeRejected(string)         {}
func (NopHooks) SelfHeal(string, string)       {}
func (NopHooks) ProviderSetRejected(string)    {}
