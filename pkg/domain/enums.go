package domain

import "helix/pkg/domerr"

// XPSource identifies which event producer granted experience points.
// Invariant: the value must be one of the supported sources.
type XPSource string

const (
	SourceGreenContent XPSource = "green_content"
	SourceArcade       XPSource = "arcade"
	SourceBankroll     XPSource = "bankroll"
	SourceSocial       XPSource = "social"
	SourceManual       XPSource = "manual"
)

var validXPSources = map[XPSource]bool{
	SourceGreenContent: true,
	SourceArcade:       true,
	SourceBankroll:     true,
	SourceSocial:       true,
	SourceManual:       true,
}

// ParseXPSource constructs an XPSource from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseXPSource(s string) (XPSource, error) {
	if s == "" {
		return "", domerr.New(domerr.CodeInvalidInput, "xp source cannot be empty")
	}
	src := XPSource(s)
	if !validXPSources[src] {
		return "", domerr.New(domerr.CodeInvalidInput, "unsupported xp source")
	}
	return src, nil
}

func (s XPSource) IsValid() bool  { return validXPSources[s] }
func (s XPSource) String() string { return string(s) }

// Capability scopes what a silo may do against the player record.
type Capability string

const (
	CapabilityRead  Capability = "read"
	CapabilityWrite Capability = "write"
	CapabilityAdmin Capability = "admin"
)

var validCapabilities = map[Capability]bool{
	CapabilityRead:  true,
	CapabilityWrite: true,
	CapabilityAdmin: true,
}

// ParseCapability constructs a Capability from external input.
func ParseCapability(s string) (Capability, error) {
	if s == "" {
		return "", domerr.New(domerr.CodeInvalidInput, "capability cannot be empty")
	}
	c := Capability(s)
	if !validCapabilities[c] {
		return "", domerr.New(domerr.CodeInvalidInput, "unsupported capability")
	}
	return c, nil
}

func (c Capability) IsValid() bool  { return validCapabilities[c] }
func (c Capability) String() string { return string(c) }

// Intent is the access mode a silo requests during a handshake. Narrower than
// Capability on purpose: admin is a capability on manual-grant review paths,
// never a handshake intent.
type Intent string

const (
	IntentRead  Intent = "read"
	IntentWrite Intent = "write"
)

// ParseIntent constructs an Intent from external input.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentRead, IntentWrite:
		return Intent(s), nil
	}
	return "", domerr.New(domerr.CodeInvalidInput, "intent must be read or write")
}

func (i Intent) String() string { return string(i) }
