package resources

// Details is the concrete, type-specific proof descriptor computed for
// a challenge by a decoder. Exactly one of the DNS/HTTP/TLSSNI variants is
// populated, according to ChallengeType. Decoding is a pure function of
// (identifier, token, account key): re-decoding the same challenge with the
// same signer always yields an identical Details value.
type Details struct {
	// The challenge type that produced this proof.
	ChallengeType string `json:"challengeType"`
	// Populated for dns-01 challenges.
	DNS *DNSDetails `json:"dns,omitempty"`
	// Populated for http-01 challenges.
	HTTP *HTTPDetails `json:"http,omitempty"`
	// Populated for tls-sni-01 challenges.
	TLSSNI *TLSSNIDetails `json:"tlsSni,omitempty"`
	// The exact payload to submit back to the server for this challenge.
	Answer *Answer `json:"answer,omitempty"`
}

// DNSDetails describes the TXT record a dns-01 challenge requires. The
// record value is the SHA-256 digest of the key authorization rather than
// the key authorization itself, so the public record does not leak it.
type DNSDetails struct {
	// The full record name, "_acme-challenge." + identifier value.
	RecordName string `json:"recordName"`
	// The resource record type. Always "TXT".
	RecordType string `json:"recordType"`
	// The base64url-encoded SHA-256 digest of the key authorization.
	RecordValue string `json:"recordValue"`
}

// HTTPDetails describes the well-known resource an http-01 challenge
// requires. The file content is the raw key authorization, served over
// plain HTTP by the host being validated.
type HTTPDetails struct {
	// The absolute URL the server will fetch.
	FileURL string `json:"fileUrl"`
	// The path component, ".well-known/acme-challenge/" + token.
	FilePath string `json:"filePath"`
	// The key authorization string.
	FileContent string `json:"fileContent"`
}

// TLSSNIDetails describes the SNI name a tls-sni-01 challenge requires.
// Minting the self-signed certificate that answers for the Z-domain is left
// to the caller's PKI tooling; this descriptor carries everything needed to
// do so.
type TLSSNIDetails struct {
	// The key authorization string.
	KeyAuthorization string `json:"keyAuthorization"`
	// The Z-domain SAN: hex SHA-256 of the key authorization split as
	// "<z[0:32]>.<z[32:64]>.acme.invalid".
	ZDomain string `json:"zDomain"`
	// Number of certificates in the validation chain. Fixed at 1.
	IterationCount int `json:"iterationCount"`
}

// Answer is the payload submitted back to the server to trigger validation
// of a challenge.
type Answer struct {
	// The challenge type this answer responds to.
	Type string `json:"type"`
	// The key authorization proving control of the account key.
	KeyAuthorization string `json:"keyAuthorization"`
}
