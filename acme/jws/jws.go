// Package jws implements the flattened JSON serialization of a JSON Web
// Signature (RFC 7515 Section 7.2) as used by the draft-ACME dialect to
// authenticate requests.
//
// The envelope produced here carries both a protected header (integrity
// protected, holds the anti-replay nonce) and an unprotected header (holds
// the signature algorithm and the account JWK). go-jose's signer cannot emit
// this unprotected-header form, so the envelope is assembled by hand; the
// construction is deterministic for identical inputs because the header
// bytes provided by the caller are used verbatim.
package jws

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Base64URLEncode encodes data with the base64url alphabet and no padding,
// per RFC 7515 Appendix C. The output never contains '+', '/' or '='.
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Base64URLDecode decodes a base64url string. Padding characters are
// tolerated and stripped before decoding.
func Base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// FlatJWS is the flattened JSON serialization of a single-signature JWS.
// Field order matches the order the draft-ACME dialect emits on the wire.
type FlatJWS struct {
	// base64url of the payload bytes.
	Payload string `json:"payload"`
	// base64url of the protected header JSON.
	Protected string `json:"protected"`
	// The unprotected header, inline JSON.
	Header json.RawMessage `json:"header,omitempty"`
	// base64url of the signature over "<protected>.<payload>".
	Signature string `json:"signature"`
}

// Sign signs data with the given signer's native JWS algorithm: RS256
// (PKCS#1 v1.5 over SHA-256) for RSA keys, ES256 (raw R||S) for P-256 ECDSA
// keys. Signing failures propagate the underlying crypto error.
func Sign(signer crypto.Signer, data []byte) ([]byte, error) {
	if signer == nil {
		return nil, fmt.Errorf("sign: signer must not be nil")
	}

	digest := sha256.Sum256(data)
	switch key := signer.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	case *ecdsa.PrivateKey:
		r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
		if err != nil {
			return nil, err
		}
		byteLen := (key.Curve.Params().BitSize + 7) / 8
		sig := make([]byte, 2*byteLen)
		r.FillBytes(sig[:byteLen])
		s.FillBytes(sig[byteLen:])
		return sig, nil
	}
	return nil, fmt.Errorf("sign: unsupported signer type %T", signer)
}

// SignFlatJSON produces the flat JWS JSON envelope for the given payload.
// The protected and header arguments are raw JSON objects used byte for
// byte, which makes the output reproducible: identical inputs always yield
// the identical serialized string (RS256 is deterministic; ES256 envelopes
// differ only in the signature segment).
func SignFlatJSON(signer crypto.Signer, payload, protected, header []byte) (string, error) {
	if signer == nil {
		return "", fmt.Errorf("signFlatJSON: signer must not be nil")
	}

	payloadB64 := Base64URLEncode(payload)
	protectedB64 := Base64URLEncode(protected)

	// The signing input is the ASCII concatenation mandated by RFC 7515
	// Section 5.1 step 8.
	signature, err := Sign(signer, []byte(protectedB64+"."+payloadB64))
	if err != nil {
		return "", err
	}

	envelope := FlatJWS{
		Payload:   payloadB64,
		Protected: protectedB64,
		Header:    json.RawMessage(header),
		Signature: Base64URLEncode(signature),
	}
	out, err := json.Marshal(&envelope)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
