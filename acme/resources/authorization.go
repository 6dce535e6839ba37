package resources

import (
	"encoding/json"
	"time"
)

// The Identifier resource represents a subject identifier that can be
// included in a certificate. In practice most ACME servers only support
// "dns" type identifiers where the value specifies a fully qualified domain
// name.
type Identifier struct {
	// The Type of the Identifier value (e.g. "dns").
	Type string `json:"type"`
	// The Identifier value.
	Value string `json:"value"`
}

// IdentifierTypeDNS is the identifier type for DNS names.
const IdentifierTypeDNS = "dns"

// The ACME Authorization resource represents an account's authorization to
// issue for a specified identifier, based on interactions with the
// associated Challenges.
//
// The Combinations field is a list of index sets into the Challenges slice.
// Completing every challenge in any one set satisfies the authorization,
// which is why the order of the Challenges slice is significant and must be
// preserved across refreshes.
type Authorization struct {
	// The identifier that the account holding this Authorization is
	// authorized to represent.
	Identifier Identifier `json:"identifier"`
	// The server-assigned URI identifying the Authorization.
	URI string `json:"uri,omitempty"`
	// The status of this authorization. Terminal values are "valid",
	// "invalid" and "revoked".
	Status string `json:"status,omitempty"`
	// A string representing an RFC 3339 date at which time the Authorization
	// is considered expired by the server.
	Expires string `json:"expires,omitempty"`
	// The challenges the client can fulfill in order to prove possession of
	// the identifier. Order matters, see Combinations.
	Challenges []Challenge `json:"challenges,omitempty"`
	// Sets of challenge indices that together satisfy the authorization.
	Combinations [][]int `json:"combinations,omitempty"`
}

// String returns the Authorization's server-assigned URI.
func (a Authorization) String() string {
	return a.URI
}

// Challenge returns a pointer to the first challenge of the given type, or
// nil if the authorization holds no challenge of that type. The pointer
// addresses the Authorization's own Challenges slice so callers can update
// the entry in place.
func (a *Authorization) Challenge(challengeType string) *Challenge {
	for i := range a.Challenges {
		if a.Challenges[i].Type == challengeType {
			return &a.Challenges[i]
		}
	}
	return nil
}

// The ACME Challenge resource represents an action that the client must take
// to authorize a given account for a specific identifier.
//
// Beyond the server-provided fields a Challenge carries client-side state:
// the decoded proof Details, the name of the handler used to publish the
// proof, and handle/clean-up/submit timestamps. Server fields this client
// does not recognize are preserved in Extra so a persisted Challenge
// round-trips without loss.
type Challenge struct {
	// The Type of the challenge ("dns-01", "http-01", "tls-sni-01").
	Type string
	// The URI of the challenge, used for refreshing it and submitting the
	// answer.
	URI string
	// The Token used for constructing the challenge response.
	Token string
	// The Status of the challenge ("pending", "valid", "invalid").
	Status string
	// The Error associated with an invalid challenge.
	Error *Problem
	// Unrecognized server fields, preserved for round-trip serialization.
	Extra map[string]json.RawMessage
	// The decoded proof for this challenge. Nil until DecodeChallenge has
	// been invoked for this challenge's type.
	Details *Details
	// The name of the handler provider last used for this challenge.
	HandlerName string
	// When the proof was last published by a handler.
	HandledAt time.Time
	// When the proof was last retracted by a handler.
	CleanedUpAt time.Time
	// When the answer was last submitted to the server.
	SubmittedAt time.Time
}

// String returns the URI of the Challenge.
func (c Challenge) String() string {
	return c.URI
}

// challengeFields enumerates the JSON keys that map onto typed Challenge
// fields. Anything else lands in Extra.
var challengeFields = map[string]bool{
	"type":        true,
	"uri":         true,
	"token":       true,
	"status":      true,
	"error":       true,
	"details":     true,
	"handlerName": true,
	"handledAt":   true,
	"cleanedUpAt": true,
	"submittedAt": true,
}

type challengeAlias struct {
	Type        string     `json:"type,omitempty"`
	URI         string     `json:"uri,omitempty"`
	Token       string     `json:"token,omitempty"`
	Status      string     `json:"status,omitempty"`
	Error       *Problem   `json:"error,omitempty"`
	Details     *Details   `json:"details,omitempty"`
	HandlerName string     `json:"handlerName,omitempty"`
	HandledAt   *time.Time `json:"handledAt,omitempty"`
	CleanedUpAt *time.Time `json:"cleanedUpAt,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// UnmarshalJSON decodes a Challenge, filling the typed fields and collecting
// unrecognized keys into Extra. Fields absent from the JSON are left
// untouched so that refreshing a challenge from a server response preserves
// client-side state like Details.
func (c *Challenge) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var known challengeAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	if _, ok := raw["type"]; ok {
		c.Type = known.Type
	}
	if _, ok := raw["uri"]; ok {
		c.URI = known.URI
	}
	if _, ok := raw["token"]; ok {
		c.Token = known.Token
	}
	if _, ok := raw["status"]; ok {
		c.Status = known.Status
	}
	if _, ok := raw["error"]; ok {
		c.Error = known.Error
	}
	if _, ok := raw["details"]; ok {
		c.Details = known.Details
	}
	if _, ok := raw["handlerName"]; ok {
		c.HandlerName = known.HandlerName
	}
	if known.HandledAt != nil {
		c.HandledAt = *known.HandledAt
	}
	if known.CleanedUpAt != nil {
		c.CleanedUpAt = *known.CleanedUpAt
	}
	if known.SubmittedAt != nil {
		c.SubmittedAt = *known.SubmittedAt
	}

	for key, value := range raw {
		if challengeFields[key] {
			continue
		}
		if c.Extra == nil {
			c.Extra = map[string]json.RawMessage{}
		}
		c.Extra[key] = value
	}
	return nil
}

// MarshalJSON encodes a Challenge with its Extra keys inlined alongside the
// typed fields, so persisted challenges keep every server field they
// arrived with.
func (c Challenge) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for key, value := range c.Extra {
		out[key] = value
	}

	alias := challengeAlias{
		Type:        c.Type,
		URI:         c.URI,
		Token:       c.Token,
		Status:      c.Status,
		Error:       c.Error,
		Details:     c.Details,
		HandlerName: c.HandlerName,
	}
	if !c.HandledAt.IsZero() {
		alias.HandledAt = &c.HandledAt
	}
	if !c.CleanedUpAt.IsZero() {
		alias.CleanedUpAt = &c.CleanedUpAt
	}
	if !c.SubmittedAt.IsZero() {
		alias.SubmittedAt = &c.SubmittedAt
	}
	aliasJSON, err := json.Marshal(alias)
	if err != nil {
		return nil, err
	}
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(aliasJSON, &typed); err != nil {
		return nil, err
	}
	for key, value := range typed {
		out[key] = value
	}
	return json.Marshal(out)
}
