// Package resources provides types for representing and interacting with ACME
// protocol resources.
package resources

import "encoding/json"

// Registration holds information related to a single ACME account
// registration. If the registration has an empty RegistrationURI it has not
// yet been created server-side with the ACME server using the
// client.Register function.
//
// The RegistrationURI field holds the server assigned registration URI that
// is assigned at the time of registration. Once set it is the sole identity
// handle for all subsequent authenticated requests tied to the account and
// is never changed by the client.
//
// The Contacts field is either nil or a slice of one or more contact URIs
// (e.g. "mailto:admin@example.com").
//
// The PublicKey field holds the JWK representation of the account keypair's
// public component exactly as the server echoed it back.
type Registration struct {
	// The server assigned registration URI. This is the identity handle used
	// to address the account in subsequent requests.
	RegistrationURI string `json:"registrationUri,omitempty"`
	// If not nil, a slice of one or more contact URIs for the account.
	Contacts []string `json:"contacts,omitempty"`
	// The account public key as a JWK, as returned by the server.
	PublicKey json.RawMessage `json:"publicKey,omitempty"`
	// The URI of the server's current terms-of-service document, taken from
	// the rel="terms-of-service" link of the last registration response.
	TOSLinkURI string `json:"tosLinkUri,omitempty"`
	// The terms-of-service URI the account has agreed to, if any.
	TOSAgreementURI string `json:"tosAgreementUri,omitempty"`
	// The URI of the collection of authorizations belonging to the account.
	AuthorizationsURI string `json:"authorizationsUri,omitempty"`
	// The URI of the collection of certificates belonging to the account.
	CertificatesURI string `json:"certificatesUri,omitempty"`
}

// String returns the Registration's server-assigned URI or an empty string if
// it has not been created with the ACME server.
func (r Registration) String() string {
	return r.RegistrationURI
}
