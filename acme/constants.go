// Package acme provides draft-ACME protocol constants. See
// https://tools.ietf.org/html/draft-ietf-acme-acme-01
package acme

const (
	// Directory resource names
	// See https://tools.ietf.org/html/draft-ietf-acme-acme-01#section-6.2

	// The directory key for the new-registration endpoint.
	NEW_REG_RESOURCE = "new-reg"
	// The directory key for the new-authorization endpoint.
	NEW_AUTHZ_RESOURCE = "new-authz"
	// The directory key for the new-certificate endpoint.
	NEW_CERT_RESOURCE = "new-cert"
	// The directory key for the certificate revocation endpoint.
	REVOKE_CERT_RESOURCE = "revoke-cert"

	// Resource names for requests addressed to an existing resource. These are
	// carried in the "resource" field of every signed request payload.
	REG_RESOURCE       = "reg"
	AUTHZ_RESOURCE     = "authz"
	CHALLENGE_RESOURCE = "challenge"

	// The HTTP response header used by ACME to communicate a fresh nonce. The
	// server includes it on every response, success or error.
	REPLAY_NONCE_HEADER = "Replay-Nonce"
	// The HTTP response header carrying the URI of a newly created resource.
	LOCATION_HEADER = "Location"
	// The HTTP response header carrying relation-typed links.
	LINK_HEADER = "Link"
	// The HTTP response header hinting when a pending resource should be
	// polled again. Either delta-seconds or an HTTP-date.
	RETRY_AFTER_HEADER = "Retry-After"

	// Link relation naming the server's current terms of service document.
	TERMS_OF_SERVICE_REL = "terms-of-service"
	// Link relation naming the issuer certificate of an issued certificate.
	UP_REL = "up"
)

// Content types used on the wire.
const (
	JSONContentType        = "application/json"
	ProblemJSONContentType = "application/problem+json"
	PKIXCertContentType    = "application/pkix-cert"
)

// Status values for authorizations and challenges.
// See https://tools.ietf.org/html/draft-ietf-acme-acme-01#section-5.3
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
	StatusRevoked    = "revoked"
)

// Challenge types this client understands.
const (
	ChallengeTypeDNS01    = "dns-01"
	ChallengeTypeHTTP01   = "http-01"
	ChallengeTypeTLSSNI01 = "tls-sni-01"
)

// Problem document type URNs.
// See https://tools.ietf.org/html/draft-ietf-acme-acme-01#section-5.4
const (
	ErrorNamespace       = "urn:acme:error:"
	ErrorBadCSR          = ErrorNamespace + "badCSR"
	ErrorBadNonce        = ErrorNamespace + "badNonce"
	ErrorConnection      = ErrorNamespace + "connection"
	ErrorMalformed       = ErrorNamespace + "malformed"
	ErrorRateLimited     = ErrorNamespace + "rateLimited"
	ErrorServerInternal  = ErrorNamespace + "serverInternal"
	ErrorTLS             = ErrorNamespace + "tls"
	ErrorUnauthorized    = ErrorNamespace + "unauthorized"
	ErrorUnknownHost     = ErrorNamespace + "unknownHost"
)

// Certificate revocation reason codes, from RFC 5280 Section 5.3.1. Values
// other than the ones enumerated here are passed through uninterpreted.
const (
	ReasonUnspecified          = iota // 0
	ReasonKeyCompromise               // 1
	ReasonCACompromise                // 2
	ReasonAffiliationChanged          // 3
	ReasonSuperseded                  // 4
	ReasonCessationOfOperation        // 5
	ReasonCertificateHold             // 6
	_                                 // 7 - Unused
	ReasonRemoveFromCRL               // 8
	ReasonPrivilegeWithdrawn          // 9
	ReasonAACompromise                // 10
)
