package challenge

import (
	"crypto"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register(http01{})
}

// http01 decodes http-01 challenges into the well-known file to serve. The
// validation fetch happens over plain HTTP on port 80.
type http01 struct{}

// WellKnownPrefix is the path under which http-01 proofs are served.
const WellKnownPrefix = ".well-known/acme-challenge/"

func (http01) Type() string {
	return acme.ChallengeTypeHTTP01
}

func (h http01) Decode(ident resources.Identifier, chall *resources.Challenge, signer crypto.Signer) (*resources.Details, error) {
	if err := checkChallenge(h.Type(), chall, signer); err != nil {
		return nil, err
	}

	keyAuth := keys.KeyAuth(signer, chall.Token)
	filePath := WellKnownPrefix + chall.Token
	return &resources.Details{
		ChallengeType: h.Type(),
		HTTP: &resources.HTTPDetails{
			FileURL:     "http://" + ident.Value + "/" + filePath,
			FilePath:    filePath,
			FileContent: keyAuth,
		},
		Answer: &resources.Answer{
			Type:             h.Type(),
			KeyAuthorization: keyAuth,
		},
	}, nil
}
