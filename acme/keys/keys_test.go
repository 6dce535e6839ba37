package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The RSA public key from RFC 7638 Section 3.1 has a published thumbprint,
// pinned here so thumbprint computation stays interoperable.
const rfc7638Key = `{"kty":"RSA","n":"0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw","e":"AQAB","alg":"RS256"}`
const rfc7638Thumbprint = "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs"

func TestJWSAlg(t *testing.T) {
	rsaKey, err := NewSigner("rsa")
	require.NoError(t, err)
	assert.Equal(t, "RS256", JWSAlg(rsaKey))

	ecdsaKey, err := NewSigner("ecdsa")
	require.NoError(t, err)
	assert.Equal(t, "ES256", JWSAlg(ecdsaKey))
}

func TestNewSigner(t *testing.T) {
	rsaKey, err := NewSigner("rsa")
	require.NoError(t, err)
	_, ok := rsaKey.(*rsa.PrivateKey)
	assert.True(t, ok)

	ecdsaKey, err := NewSigner("ecdsa")
	require.NoError(t, err)
	_, ok = ecdsaKey.(*ecdsa.PrivateKey)
	assert.True(t, ok)

	_, err = NewSigner("dsa")
	require.Error(t, err)
}

func TestJWKJSON(t *testing.T) {
	signer, err := NewSigner("rsa")
	require.NoError(t, err)

	jwkJSON := JWKJSON(signer)
	require.NotEmpty(t, jwkJSON)

	var jwk jose.JSONWebKey
	require.NoError(t, json.Unmarshal([]byte(jwkJSON), &jwk))
	assert.True(t, jwk.IsPublic())
}

func TestJWKThumbprintVector(t *testing.T) {
	var jwk jose.JSONWebKey
	require.NoError(t, json.Unmarshal([]byte(rfc7638Key), &jwk))

	thumb, err := jwk.Thumbprint(crypto.SHA256)
	require.NoError(t, err)
	assert.Equal(t, rfc7638Thumbprint, base64.RawURLEncoding.EncodeToString(thumb))
}

func TestKeyAuth(t *testing.T) {
	signer, err := NewSigner("ecdsa")
	require.NoError(t, err)

	token := "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ-PCt92wr-oA"
	keyAuth := KeyAuth(signer, token)

	parts := strings.SplitN(keyAuth, ".", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, token, parts[0])
	assert.Equal(t, JWKThumbprint(signer), parts[1])

	// Stable for a fixed key and token.
	assert.Equal(t, keyAuth, KeyAuth(signer, token))
}

func TestKeyAuthDigest(t *testing.T) {
	signer, err := NewSigner("ecdsa")
	require.NoError(t, err)

	token := "tok"
	digest := sha256.Sum256([]byte(KeyAuth(signer, token)))
	assert.Equal(t,
		base64.RawURLEncoding.EncodeToString(digest[:]),
		KeyAuthDigest(signer, token))
}

func TestSignerRoundTrip(t *testing.T) {
	for _, keyType := range []string{"rsa", "ecdsa"} {
		signer, err := NewSigner(keyType)
		require.NoError(t, err)

		keyBytes, tag, err := MarshalSigner(signer)
		require.NoError(t, err)
		assert.Equal(t, keyType, tag)

		restored, err := UnmarshalSigner(keyBytes, tag)
		require.NoError(t, err)
		assert.Equal(t, JWKThumbprint(signer), JWKThumbprint(restored))
	}

	_, err := UnmarshalSigner([]byte{0x01}, "dsa")
	require.Error(t, err)
}

func TestSignerToPEM(t *testing.T) {
	rsaKey, err := NewSigner("rsa")
	require.NoError(t, err)
	pemStr, err := SignerToPEM(rsaKey)
	require.NoError(t, err)
	assert.Contains(t, pemStr, "RSA PRIVATE KEY")

	ecdsaKey, err := NewSigner("ecdsa")
	require.NoError(t, err)
	pemStr, err = SignerToPEM(ecdsaKey)
	require.NoError(t, err)
	assert.Contains(t, pemStr, "EC PRIVATE KEY")
}
