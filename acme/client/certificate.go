package client

import (
	"net/http"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/jws"
	"github.com/acmevault/acmevault/acme/resources"
)

// certRequest is the payload shape for new-cert requests.
type certRequest struct {
	Resource string `json:"resource"`
	CSR      string `json:"csr"`
}

// revokeRequest is the payload shape for revoke-cert requests.
type revokeRequest struct {
	Resource    string `json:"resource"`
	Certificate string `json:"certificate"`
	Reason      int    `json:"reason,omitempty"`
}

// RequestCertificate submits a DER-encoded CSR to the server's new-cert
// endpoint. The returned CertificateRequest carries the server-assigned
// certificate URI; when the server issues synchronously the certificate
// content is captured too, otherwise poll with RefreshCertificateRequest.
func (c *Client) RequestCertificate(csrDER []byte) (*resources.CertificateRequest, error) {
	op := "requestCertificate"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	if c.Registration == nil || c.Registration.RegistrationURI == "" {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "no existing registration, call Register first",
		}
	}
	if len(csrDER) == 0 {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "CSR must not be empty",
		}
	}

	endpoint, err := c.endpointURL(op, acme.NEW_CERT_RESOURCE)
	if err != nil {
		return nil, err
	}
	csrB64 := jws.Base64URLEncode(csrDER)
	resp, err := c.postSigned(op, endpoint, certRequest{
		Resource: acme.NEW_CERT_RESOURCE,
		CSR:      csrB64,
	})
	if err != nil {
		return nil, err
	}
	if resp.Response.StatusCode != http.StatusCreated {
		return nil, c.serverError(op, resp)
	}

	location := resp.Response.Header.Get(acme.LOCATION_HEADER)
	if location == "" {
		return nil, ProtocolError{
			Op:       op,
			Reason:   "created certificate response carried no Location header",
			Response: resp,
		}
	}
	uri, err := c.resolveURL(location)
	if err != nil {
		return nil, err
	}

	certReq := &resources.CertificateRequest{
		CSRContent: csrB64,
		URI:        uri,
		StatusCode: resp.Response.StatusCode,
		RetryAfter: parseRetryAfter(resp),
		Links:      parseLinks(resp),
	}
	if len(resp.RespBody) > 0 {
		certReq.CertificateContent = jws.Base64URLEncode(resp.RespBody)
	}
	return certReq, nil
}

// RefreshCertificateRequest polls the certificate resource, updating the
// request in place. With useRootURL the certificate URI's host is rewritten
// to the root URL's before fetching. While issuance is pending the server
// answers 202 with a Retry-After hint; once issued the DER certificate body
// and its rel="up" issuer link are captured.
func (c *Client) RefreshCertificateRequest(certReq *resources.CertificateRequest, useRootURL bool) error {
	op := "refreshCertificateRequest"
	if err := c.requireInitialized(op); err != nil {
		return err
	}
	if certReq == nil || certReq.URI == "" {
		return InvalidOperationError{
			Op:     op,
			Reason: "certificate request has no URI",
		}
	}

	target, err := c.targetURL(certReq.URI, useRootURL)
	if err != nil {
		return err
	}
	resp, err := c.get(op, target)
	if err != nil {
		return err
	}

	switch resp.Response.StatusCode {
	case http.StatusOK:
		certReq.StatusCode = resp.Response.StatusCode
		certReq.RetryAfter = parseRetryAfter(resp)
		certReq.Links = parseLinks(resp)
		if len(resp.RespBody) == 0 {
			return ProtocolError{
				Op:       op,
				Reason:   "issued certificate response carried an empty body",
				Response: resp,
			}
		}
		certReq.CertificateContent = jws.Base64URLEncode(resp.RespBody)
		return nil
	case http.StatusAccepted:
		certReq.StatusCode = resp.Response.StatusCode
		certReq.RetryAfter = parseRetryAfter(resp)
		certReq.Links = parseLinks(resp)
		return nil
	default:
		return c.serverError(op, resp)
	}
}

// RevokeCertificate asks the server to revoke the given DER-encoded
// certificate with the given RFC 5280 reason code. Revocation requests are
// signed with the account key, so the account must be authorized for every
// identifier in the certificate; servers refuse other accounts' certificates
// with a ServerError whose Unauthorized method returns true.
func (c *Client) RevokeCertificate(certDER []byte, reason int) error {
	op := "revokeCertificate"
	if err := c.requireInitialized(op); err != nil {
		return err
	}
	if len(certDER) == 0 {
		return InvalidOperationError{
			Op:     op,
			Reason: "certificate must not be empty",
		}
	}

	endpoint, err := c.endpointURL(op, acme.REVOKE_CERT_RESOURCE)
	if err != nil {
		return err
	}
	resp, err := c.postSigned(op, endpoint, revokeRequest{
		Resource:    acme.REVOKE_CERT_RESOURCE,
		Certificate: jws.Base64URLEncode(certDER),
		Reason:      reason,
	})
	if err != nil {
		return err
	}
	if resp.Response.StatusCode != http.StatusOK {
		return c.serverError(op, resp)
	}
	return nil
}
