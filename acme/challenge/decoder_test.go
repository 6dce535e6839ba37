package challenge

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
)

func testIdent() resources.Identifier {
	return resources.Identifier{
		Type:  resources.IdentifierTypeDNS,
		Value: "example.com",
	}
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{
		acme.ChallengeTypeDNS01,
		acme.ChallengeTypeHTTP01,
		acme.ChallengeTypeTLSSNI01,
	}, Supported())
}

func TestGetUnregistered(t *testing.T) {
	_, err := Get("simpleHttp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simpleHttp")
}

func TestDecodeTypeMismatch(t *testing.T) {
	signer, err := keys.NewSigner("ecdsa")
	require.NoError(t, err)

	d, err := Get(acme.ChallengeTypeDNS01)
	require.NoError(t, err)
	_, err = d.Decode(testIdent(), &resources.Challenge{
		Type:  acme.ChallengeTypeHTTP01,
		Token: "tok",
	}, signer)
	require.Error(t, err)
}

func TestDecodeMissingToken(t *testing.T) {
	signer, err := keys.NewSigner("ecdsa")
	require.NoError(t, err)

	_, err = Decode(testIdent(), &resources.Challenge{
		Type: acme.ChallengeTypeDNS01,
	}, signer)
	require.Error(t, err)
}

func TestDecodeDNS01(t *testing.T) {
	signer, err := keys.NewSigner("rsa")
	require.NoError(t, err)

	chall := &resources.Challenge{
		Type:  acme.ChallengeTypeDNS01,
		Token: "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ-PCt92wr-oA",
	}
	details, err := Decode(testIdent(), chall, signer)
	require.NoError(t, err)

	require.NotNil(t, details.DNS)
	assert.Equal(t, "_acme-challenge.example.com", details.DNS.RecordName)
	assert.Equal(t, "TXT", details.DNS.RecordType)

	keyAuth := keys.KeyAuth(signer, chall.Token)
	digest := sha256.Sum256([]byte(keyAuth))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(digest[:]), details.DNS.RecordValue)

	require.NotNil(t, details.Answer)
	assert.Equal(t, acme.ChallengeTypeDNS01, details.Answer.Type)
	assert.Equal(t, keyAuth, details.Answer.KeyAuthorization)

	// Decoding is pure, a second decode must yield the same proof.
	again, err := Decode(testIdent(), chall, signer)
	require.NoError(t, err)
	assert.Equal(t, details, again)
}

func TestDecodeHTTP01(t *testing.T) {
	signer, err := keys.NewSigner("rsa")
	require.NoError(t, err)

	chall := &resources.Challenge{
		Type:  acme.ChallengeTypeHTTP01,
		Token: "LoqXcYV8q5ONbJQxbmR7SCTNo3tiAXDfowyjxAjEuX0",
	}
	details, err := Decode(testIdent(), chall, signer)
	require.NoError(t, err)

	require.NotNil(t, details.HTTP)
	assert.Equal(t, ".well-known/acme-challenge/"+chall.Token, details.HTTP.FilePath)
	assert.Equal(t, "http://example.com/.well-known/acme-challenge/"+chall.Token, details.HTTP.FileURL)
	assert.Equal(t, keys.KeyAuth(signer, chall.Token), details.HTTP.FileContent)
	require.NotNil(t, details.Answer)
	assert.Equal(t, details.HTTP.FileContent, details.Answer.KeyAuthorization)
}

func TestDecodeTLSSNI01(t *testing.T) {
	signer, err := keys.NewSigner("ecdsa")
	require.NoError(t, err)

	chall := &resources.Challenge{
		Type:  acme.ChallengeTypeTLSSNI01,
		Token: "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ-PCt92wr-oA",
	}
	details, err := Decode(testIdent(), chall, signer)
	require.NoError(t, err)

	require.NotNil(t, details.TLSSNI)
	assert.Equal(t, 1, details.TLSSNI.IterationCount)
	assert.Equal(t, keys.KeyAuth(signer, chall.Token), details.TLSSNI.KeyAuthorization)

	parts := strings.Split(details.TLSSNI.ZDomain, ".")
	require.Len(t, parts, 4)
	assert.Len(t, parts[0], 32)
	assert.Len(t, parts[1], 32)
	assert.Equal(t, "acme", parts[2])
	assert.Equal(t, "invalid", parts[3])
}
