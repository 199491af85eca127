// Package gateway is the only authorized path to mutate the player record.
// It authenticates silos against a static registry, issues handshake-scoped
// sessions, and audits every call into the handshake log.
package gateway

import (
	"encoding/json"
	"os"
	"time"

	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

// Silo is one registered external subsystem with capability-scoped access to
// the player record.
type Silo struct {
	ID           id.SiloID       `json:"id"`
	DisplayName  string          `json:"displayName"`
	Capabilities []id.Capability `json:"capabilities"`
	APIKeyDigest string          `json:"apiKeyDigest"`
	Active       bool            `json:"active"`
}

// Has reports whether the silo holds the capability.
func (s Silo) Has(c id.Capability) bool {
	for _, have := range s.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Redacted returns a copy safe to list or log: no key digest.
func (s Silo) Redacted() Silo {
	s.APIKeyDigest = ""
	return s
}

// Registry is the validated, immutable silo configuration. Exactly one
// active silo holds write; the loader refuses anything else.
type Registry struct {
	silos     map[id.SiloID]Silo
	writeSilo id.SiloID
}

type registryFile struct {
	Silos []Silo `json:"silos"`
}

// LoadRegistry reads and validates the silo registry from a JSON file.
// Errors: CodeConfigInvalid on unreadable files, duplicate ids, missing key
// digests, unknown capabilities, or any write-silo count other than one.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domerr.Wrap(err, domerr.CodeConfigInvalid, "read silo registry")
	}
	return ParseRegistry(raw)
}

// ParseRegistry validates raw registry JSON. See LoadRegistry for the rules.
func ParseRegistry(raw []byte) (*Registry, error) {
	var file registryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, domerr.Wrap(err, domerr.CodeConfigInvalid, "decode silo registry")
	}
	if len(file.Silos) == 0 {
		return nil, domerr.New(domerr.CodeConfigInvalid, "silo registry is empty")
	}

	reg := &Registry{silos: make(map[id.SiloID]Silo, len(file.Silos))}
	for _, silo := range file.Silos {
		if _, err := id.ParseSiloID(silo.ID.String()); err != nil {
			return nil, domerr.Wrap(err, domerr.CodeConfigInvalid, "invalid silo id")
		}
		if _, dup := reg.silos[silo.ID]; dup {
			return nil, domerr.Newf(domerr.CodeConfigInvalid, "duplicate silo id %q", silo.ID)
		}
		if silo.APIKeyDigest == "" {
			return nil, domerr.Newf(domerr.CodeConfigInvalid, "silo %q has no api key digest", silo.ID)
		}
		for _, c := range silo.Capabilities {
			if !c.IsValid() {
				return nil, domerr.Newf(domerr.CodeConfigInvalid, "silo %q has unknown capability %q", silo.ID, c)
			}
		}
		if silo.Active && silo.Has(id.CapabilityWrite) {
			if reg.writeSilo != "" {
				return nil, domerr.Newf(domerr.CodeConfigInvalid,
					"silos %q and %q both hold write; exactly one write silo is allowed", reg.writeSilo, silo.ID)
			}
			reg.writeSilo = silo.ID
		}
		reg.silos[silo.ID] = silo
	}
	if reg.writeSilo == "" {
		return nil, domerr.New(domerr.CodeConfigInvalid, "no active silo holds write")
	}
	return reg, nil
}

// Lookup returns a silo by id. Inactive silos are invisible.
func (r *Registry) Lookup(siloID id.SiloID) (Silo, bool) {
	silo, ok := r.silos[siloID]
	if !ok || !silo.Active {
		return Silo{}, false
	}
	return silo, true
}

// WriteSilo returns the id of the single silo holding write.
func (r *Registry) WriteSilo() id.SiloID {
	return r.writeSilo
}

// List returns every registered silo, key digests redacted.
func (r *Registry) List() []Silo {
	out := make([]Silo, 0, len(r.silos))
	for _, silo := range r.silos {
		out = append(out, silo.Redacted())
	}
	return out
}

// HandshakeResult reports one authorization attempt.
type HandshakeResult struct {
	Authorized   bool
	SiloName     string
	SessionToken string
	Reason       domerr.Code
}

// Updates is the set of inbound field writes a silo proposes through
// SecureUpdate, keyed by field name.
type Updates map[string]any

// UpdateResult reports which fields an authorized update applied.
type UpdateResult struct {
	OK            bool
	AppliedFields []string
	Reason        domerr.Code
}

// Session is a handshake-scoped grant tied to the gateway process lifetime.
type Session struct {
	TokenID   string
	SiloID    id.SiloID
	Intent    id.Intent
	IssuedAt  time.Time
	ExpiresAt time.Time
}
