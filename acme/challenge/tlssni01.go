package challenge

import (
	"crypto"
	"crypto/sha256"
	"encoding/hex"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register(tlssni01{})
}

// tlssni01 decodes tls-sni-01 challenges into the Z-domain SAN for the
// self-signed certificate the host must present. Minting that certificate is
// left to the caller.
type tlssni01 struct{}

func (tlssni01) Type() string {
	return acme.ChallengeTypeTLSSNI01
}

func (t tlssni01) Decode(ident resources.Identifier, chall *resources.Challenge, signer crypto.Signer) (*resources.Details, error) {
	if err := checkChallenge(t.Type(), chall, signer); err != nil {
		return nil, err
	}

	keyAuth := keys.KeyAuth(signer, chall.Token)
	zDigest := sha256.Sum256([]byte(keyAuth))
	z := hex.EncodeToString(zDigest[:])
	return &resources.Details{
		ChallengeType: t.Type(),
		TLSSNI: &resources.TLSSNIDetails{
			KeyAuthorization: keyAuth,
			ZDomain:          z[0:32] + "." + z[32:64] + ".acme.invalid",
			IterationCount:   1,
		},
		Answer: &resources.Answer{
			Type:             t.Type(),
			KeyAuthorization: keyAuth,
		},
	}, nil
}
