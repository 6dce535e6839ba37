// Package challenge decodes pending ACME challenges into the concrete proof
// material an account holder must publish: the TXT record for dns-01, the
// well-known file for http-01, and the SNI Z-domain for tls-sni-01.
//
// Decoders register themselves by challenge type in an explicit table.
// Decoding is pure: for a fixed (identifier, token, account key) triple a
// decoder always produces an identical Details value and has no side
// effects.
package challenge

import (
	"crypto"
	"fmt"
	"sort"

	"github.com/acmevault/acmevault/acme/resources"
)

// Decoder computes the proof Details for one challenge type.
type Decoder interface {
	// Type returns the challenge type this decoder understands.
	Type() string
	// Decode computes the proof for the given challenge. The challenge's
	// Type must match the decoder's own type and the challenge must carry a
	// token.
	Decode(ident resources.Identifier, chall *resources.Challenge, signer crypto.Signer) (*resources.Details, error)
}

var decoders = map[string]Decoder{}

// Register adds a decoder to the table, replacing any previous decoder for
// the same challenge type.
func Register(d Decoder) {
	decoders[d.Type()] = d
}

// Supported returns the registered challenge types in sorted order.
func Supported() []string {
	types := make([]string, 0, len(decoders))
	for challType := range decoders {
		types = append(types, challType)
	}
	sort.Strings(types)
	return types
}

// Get returns the decoder for the given challenge type, or an error if no
// decoder is registered for it.
func Get(challengeType string) (Decoder, error) {
	d, ok := decoders[challengeType]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for challenge type %q", challengeType)
	}
	return d, nil
}

// Decode looks up the decoder for the challenge's type and runs it.
func Decode(ident resources.Identifier, chall *resources.Challenge, signer crypto.Signer) (*resources.Details, error) {
	if chall == nil {
		return nil, fmt.Errorf("challenge must not be nil")
	}
	d, err := Get(chall.Type)
	if err != nil {
		return nil, err
	}
	return d.Decode(ident, chall, signer)
}

// checkChallenge enforces the preconditions shared by every decoder.
func checkChallenge(wantType string, chall *resources.Challenge, signer crypto.Signer) error {
	if chall.Type != wantType {
		return fmt.Errorf("challenge type %q does not match decoder type %q", chall.Type, wantType)
	}
	if chall.Token == "" {
		return fmt.Errorf("challenge %q has no token", chall.URI)
	}
	if signer == nil {
		return fmt.Errorf("signer must not be nil")
	}
	return nil
}
