package jws

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"testing"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The RSA signing key from RFC 7515 Appendix A.2.1, used verbatim so the
// produced segments can be compared against the published test vectors.
const rfc7515A2Key = `{"kty":"RSA",
      "n":"ofgWCuLjybRlzo0tZWJjNiuSfb4p4fAkd_wWJcyQoTbji9k0l8W26mPddxHmfHQp-Vaw-4qPCJrcS2mJPMEzP1Pt0Bm4d4QlL-yRT-SFd2lZS-pCgNMsD1W_YpRPEwOWvG6b32690r2jZ47soMZo9wGzjb_7OMg0LOL-bSf63kpaSHSXndS5z5rexMdbBYUsLA9e-KXBdQOS-UTo7WTBEMa2R2CapHg665xsmtdVMTBQY4uDZlxvb3qCo5ZwKh9kG4LT6_I5IhlJH7aGhyxXFvUK-DWNmoudF8NAco9_h9iaGNj8q2ethFkMLs91kzk2PAcDTW9gb54h4FRWyuXpoQ",
      "e":"AQAB",
      "d":"Eq5xpGnNCivDflJsRQBXHx1hdR1k6Ulwe2JZD50LpXyWPEAeP88vLNO97IjlA7_GQ5sLKMgvfTeXZx9SE-7YwVol2NXOoAJe46sui395IW_GO-pWJ1O0BkTGoVEn2bKVRUCgu-GjBVaYLU6f3l9kJfFNS3E0QbVdxzubSu3Mkqzjkn439X0M_V51gfpRLI9JYanrC4D4qAdGcopV_0ZHHzQlBjudU2QvXt4ehNYTCBr6XCLQUShb1juUO1ZdiYoFaFQT5Tw8bGUl_x_jTj3ccPDVZFD9pIuhLhBOneufuBiB4cS98l2SR_RQyGWSeWjnczT0QU91p1DhOVRuOopznQ",
      "p":"4BzEEOtIpmVdVEZNCqS7baC4crd0pqnRH_5IB3jw3bcxGn6QLvnEtfdUdiYrqBdss1l58BQ3KhooKeQTa9AB0Hw_Py5PJdTJNPY8cQn7ouZ2KKDcmnPGBY5t7yLc1QlQ5xHdwW1VhvKn-nXqhJTBgIPgtldC-KDV5z-y2XDwGUc",
      "q":"uQPEfgmVtjL0Uyyx88GZFF1fOunH3-7cepKmtH4pxhtCoHqpWmT8YAmZxaewHgHAjLYsp1ZSe7zFYHj7C6ul7TjeLQeZD_YwD66t62wDmpe_HlB-TnBA-njbglfIsRLtXlnDzQkv5dTltRJ11BKBBypeeF6689rjcJIDEz9RWdc",
      "dp":"BwKfV3Akq5_MFZDFZCnW-wzl-CCo83WoZvnLQwCTeDv8uzluRSnm71I3QCLdhrqE2e9YkxvuxdBfpT_PI7Yz-FOKnu1R6HsJeDCjn12Sk3vmAktV2zb34MCdy7cpdTh_YVr7tss2u6vneTwrA86rZtu5Mbr1C1XsmvkxHQAdYo0",
      "dq":"h_96-mK1R_7glhsum81dZxjTnYynPbZpHziZjeeHcXYsXaaMwkOlODsWa7I9xXDoRwbKgB719rrmI2oKr6N3Do9U0ajaHF-NKJnwgjMd2w9cjz3_-kyNlxAr2v4IKhGNpmM5iIgOS1VZnOZ68m6_pbLBSp3nssTdlqvd0tIiTHU",
      "qi":"IYd7DHOhrWvxkwPQsRM2tOgrjbcrfvtQJipd-DlcxyVuuM9sQLdgjVk2oy26F0EmpScGLq2MowX7fhd_QJQ3ydy5cY7YIBi87w93IKLEdfnbJtoOPLUW0ITrJReOgo1cq9SbsxYawBgfp_gh6A5603k2-ZQwVK0JKSHuLFkuQ3U"}`

// Published base64url segments from RFC 7515 Appendix A.2.
const (
	rfc7515A2Protected = "eyJhbGciOiJSUzI1NiJ9"
	rfc7515A2Payload   = "eyJpc3MiOiJqb2UiLA0KICJleHAiOjEzMDA4MTkzODAsDQogImh0dHA6Ly9leGFtcGxlLmNvbS9pc19yb290Ijp0cnVlfQ"
	rfc7515A2Signature = "cC4hiUPoj9Eetdgtv3hF80EGrhuB__dzERat0XF9g2VtQgr9PJbu3XOiZj5RZmh7AAuHIm4Bh-0Qc_lF5YKt_O8W2Fp5jujGbds9uJdbF9CUAr7t1dnZcAcQjbKBYNX4BAynRFdiuB--f_nZLgrnbyTyWzO75vRK5h6xBArLIARNPvkSjtQBMHlb1L07Qe7K0GarZRmB_eSN9383LcOLn6_dO--xi12jzDwusC-eOkHWEsqtFZESc6BfI7noOPqvhJ1phCnvWh6IeYI2w9QOYEUipUTI8np6LbgGY9Fs98rqVt5AXLIhWkWywlVmtVrBp0igcN_IoypGlUPQGe77Rw"
)

func rfc7515Signer(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	var jwk jose.JSONWebKey
	require.NoError(t, json.Unmarshal([]byte(rfc7515A2Key), &jwk))
	key, ok := jwk.Key.(*rsa.PrivateKey)
	require.True(t, ok, "expected an RSA private key")
	return key
}

// rfc7515A2PayloadBytes reconstructs the exact payload bytes (including the
// CRLF line breaks) from RFC 7515 Appendix A.1.
func rfc7515A2PayloadBytes() []byte {
	return []byte("{\"iss\":\"joe\",\r\n \"exp\":1300819380,\r\n \"http://example.com/is_root\":true}")
}

func TestSignFlatJSONVectors(t *testing.T) {
	key := rfc7515Signer(t)

	payload := rfc7515A2PayloadBytes()
	protected := []byte(`{"alg":"RS256"}`)
	header := []byte(`{"kid":"2010-12-29"}`)

	serialized, err := SignFlatJSON(key, payload, protected, header)
	require.NoError(t, err)

	var envelope FlatJWS
	require.NoError(t, json.Unmarshal([]byte(serialized), &envelope))

	assert.Equal(t, rfc7515A2Payload, envelope.Payload)
	assert.Equal(t, rfc7515A2Protected, envelope.Protected)
	assert.Equal(t, rfc7515A2Signature, envelope.Signature)
	assert.JSONEq(t, `{"kid":"2010-12-29"}`, string(envelope.Header))

	// RS256 is deterministic so the whole envelope must be byte-exact.
	expected := fmt.Sprintf(
		`{"payload":%q,"protected":%q,"header":{"kid":"2010-12-29"},"signature":%q}`,
		rfc7515A2Payload, rfc7515A2Protected, rfc7515A2Signature)
	assert.Equal(t, expected, serialized)
}

func TestSignFlatJSONDeterministic(t *testing.T) {
	key := rfc7515Signer(t)

	payload := []byte(`{"resource":"new-reg"}`)
	protected := []byte(`{"nonce":"abc123"}`)
	header := []byte(`{"alg":"RS256"}`)

	first, err := SignFlatJSON(key, payload, protected, header)
	require.NoError(t, err)
	second, err := SignFlatJSON(key, payload, protected, header)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSignFlatJSONNilSigner(t *testing.T) {
	_, err := SignFlatJSON(nil, []byte("{}"), []byte("{}"), nil)
	require.Error(t, err)
}

func TestSignES256(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	data := []byte("eyJhbGciOiJFUzI1NiJ9.dGVzdA")
	sig, err := Sign(key, data)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	digest := sha256.Sum256(data)
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	assert.True(t, ecdsa.Verify(&key.PublicKey, digest[:], r, s))
}

func TestBase64URLRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{3, 236, 255, 224, 193},
		[]byte("hello world"),
		{0xff, 0xfe, 0xfd, 0xfc, 0xfb, 0xfa},
	}
	for _, tc := range cases {
		encoded := Base64URLEncode(tc)
		assert.NotContains(t, encoded, "+")
		assert.NotContains(t, encoded, "/")
		assert.NotContains(t, encoded, "=")

		decoded, err := Base64URLDecode(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc, decoded)
	}
}

func TestBase64URLDecodeToleratesPadding(t *testing.T) {
	decoded, err := Base64URLDecode("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decoded)
}

func TestBase64URLEncodeVector(t *testing.T) {
	// RFC 7515 Appendix C example octets.
	encoded := Base64URLEncode([]byte{3, 236, 255, 224, 193})
	assert.Equal(t, "A-z_4ME", encoded)
	assert.False(t, strings.ContainsAny(encoded, "+/="))
}
