package resources

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationChallengeLookup(t *testing.T) {
	authz := Authorization{
		Challenges: []Challenge{
			{Type: "dns-01", Token: "a"},
			{Type: "http-01", Token: "b"},
		},
	}

	chall := authz.Challenge("http-01")
	require.NotNil(t, chall)
	assert.Equal(t, "b", chall.Token)

	// The returned pointer addresses the slice entry.
	chall.Status = "valid"
	assert.Equal(t, "valid", authz.Challenges[1].Status)

	assert.Nil(t, authz.Challenge("tls-sni-01"))
}

func TestChallengeUnmarshalPreservesClientState(t *testing.T) {
	chall := Challenge{
		Type:  "dns-01",
		URI:   "https://acme.example.com/authz/1/0",
		Token: "tok",
		Details: &Details{
			ChallengeType: "dns-01",
			DNS:           &DNSDetails{RecordName: "_acme-challenge.example.com"},
		},
		HandlerName: "route53",
		HandledAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	// A server refresh carries only the server's view of the challenge.
	serverBody := `{
		"type": "dns-01",
		"uri": "https://acme.example.com/authz/1/0",
		"token": "tok",
		"status": "valid",
		"validated": "2026-08-01T12:01:00Z"
	}`
	require.NoError(t, json.Unmarshal([]byte(serverBody), &chall))

	assert.Equal(t, "valid", chall.Status)
	// Client-side fields are untouched by fields absent from the body.
	require.NotNil(t, chall.Details)
	assert.Equal(t, "route53", chall.HandlerName)
	assert.False(t, chall.HandledAt.IsZero())
	// Unknown server fields are preserved.
	assert.Contains(t, chall.Extra, "validated")
}

func TestChallengeMarshalRoundTrip(t *testing.T) {
	original := Challenge{
		Type:        "http-01",
		URI:         "https://acme.example.com/authz/1/1",
		Token:       "tok",
		Status:      "pending",
		HandlerName: "s3",
		Extra: map[string]json.RawMessage{
			"validationRecord": json.RawMessage(`[{"url":"http://example.com"}]`),
		},
	}

	frozen, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Challenge
	require.NoError(t, json.Unmarshal(frozen, &restored))
	assert.Equal(t, original.Type, restored.Type)
	assert.Equal(t, original.URI, restored.URI)
	assert.Equal(t, original.Status, restored.Status)
	assert.Equal(t, original.HandlerName, restored.HandlerName)
	assert.JSONEq(t,
		string(original.Extra["validationRecord"]),
		string(restored.Extra["validationRecord"]))
}

func TestChallengeMarshalOmitsZeroTimestamps(t *testing.T) {
	frozen, err := json.Marshal(Challenge{Type: "dns-01", Token: "tok"})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(frozen, &raw))
	assert.NotContains(t, raw, "handledAt")
	assert.NotContains(t, raw, "cleanedUpAt")
	assert.NotContains(t, raw, "submittedAt")
}

func TestProblemString(t *testing.T) {
	assert.Equal(t, "urn:acme:error:unauthorized: nope",
		Problem{Type: "urn:acme:error:unauthorized", Detail: "nope"}.String())
	assert.Equal(t, "nope", Problem{Detail: "nope"}.String())
}

func TestCertificateRequestAccessors(t *testing.T) {
	cr := CertificateRequest{URI: "https://acme.example.com/cert/1"}
	assert.False(t, cr.Issued())
	assert.Equal(t, "", cr.IssuerCertURI())

	cr.CertificateContent = "MIIB"
	cr.Links = map[string][]string{
		"up": {"https://acme.example.com/issuer"},
	}
	assert.True(t, cr.Issued())
	assert.Equal(t, "https://acme.example.com/issuer", cr.IssuerCertURI())
}
