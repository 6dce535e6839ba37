package resources

import "time"

// CertificateRequest represents a CSR submitted to the server's new-cert
// endpoint and the certificate eventually issued for it. It is created by
// client.RequestCertificate and mutated in place by
// client.RefreshCertificateRequest until CertificateContent is populated.
type CertificateRequest struct {
	// The base64url-encoded DER CSR that was submitted.
	CSRContent string `json:"csrContent"`
	// The server-assigned certificate resource URI from the Location header.
	URI string `json:"uri,omitempty"`
	// The HTTP status code of the most recent exchange for this resource.
	StatusCode int `json:"statusCode,omitempty"`
	// The absolute time before which the resource should not be polled
	// again, normalized from the Retry-After response header. Zero when the
	// server sent no hint.
	RetryAfter time.Time `json:"retryAfter,omitempty"`
	// The base64url-encoded DER certificate. Empty until issued.
	CertificateContent string `json:"certificateContent,omitempty"`
	// Relation-typed links from the most recent response, rel -> URIs.
	// Includes the rel="up" link to the issuer certificate once issued.
	Links map[string][]string `json:"links,omitempty"`
}

// String returns the certificate resource URI.
func (cr CertificateRequest) String() string {
	return cr.URI
}

// Issued returns true once the certificate content has been retrieved.
func (cr *CertificateRequest) Issued() bool {
	return cr.CertificateContent != ""
}

// IssuerCertURI returns the first rel="up" link, or an empty string if the
// server has not provided one.
func (cr *CertificateRequest) IssuerCertURI() string {
	if links := cr.Links["up"]; len(links) > 0 {
		return links[0]
	}
	return ""
}
