package challenge

import (
	"crypto"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register(dns01{})
}

// dns01 decodes dns-01 challenges into the TXT record to provision. The
// record value is the base64url SHA-256 digest of the key authorization, not
// the key authorization itself.
type dns01 struct{}

func (dns01) Type() string {
	return acme.ChallengeTypeDNS01
}

func (d dns01) Decode(ident resources.Identifier, chall *resources.Challenge, signer crypto.Signer) (*resources.Details, error) {
	if err := checkChallenge(d.Type(), chall, signer); err != nil {
		return nil, err
	}

	return &resources.Details{
		ChallengeType: d.Type(),
		DNS: &resources.DNSDetails{
			RecordName:  "_acme-challenge." + ident.Value,
			RecordType:  "TXT",
			RecordValue: keys.KeyAuthDigest(signer, chall.Token),
		},
		Answer: &resources.Answer{
			Type:             d.Type(),
			KeyAuthorization: keys.KeyAuth(signer, chall.Token),
		},
	}, nil
}
