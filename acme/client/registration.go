package client

import (
	"encoding/json"
	"net/http"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
	acmenet "github.com/acmevault/acmevault/net"
)

// regRequest is the payload shape for new-reg and reg requests.
type regRequest struct {
	Resource  string   `json:"resource"`
	Contact   []string `json:"contact,omitempty"`
	Agreement string   `json:"agreement,omitempty"`
}

// regResponse is the wire shape of a registration resource body.
type regResponse struct {
	Key            json.RawMessage `json:"key,omitempty"`
	Contact        []string        `json:"contact,omitempty"`
	Agreement      string          `json:"agreement,omitempty"`
	Authorizations string          `json:"authorizations,omitempty"`
	Certificates   string          `json:"certificates,omitempty"`
}

// Register creates a new account registration bound to the client's signer,
// with the given contact URIs (e.g. "mailto:admin@example.com"). On success
// the client's Registration is populated with the server-assigned URI and
// the current terms-of-service link.
//
// Registering a key that already has an account fails with a ServerError
// whose Conflict method returns true; the Location header of that response
// still identifies the existing registration.
func (c *Client) Register(contacts []string) (*resources.Registration, error) {
	op := "register"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	endpoint, err := c.endpointURL(op, acme.NEW_REG_RESOURCE)
	if err != nil {
		return nil, err
	}

	resp, err := c.postSigned(op, endpoint, regRequest{
		Resource: acme.NEW_REG_RESOURCE,
		Contact:  contacts,
	})
	if err != nil {
		return nil, err
	}
	if resp.Response.StatusCode != http.StatusCreated {
		return nil, c.serverError(op, resp)
	}

	reg, err := c.registrationFromResponse(op, resp)
	if err != nil {
		return nil, err
	}
	c.Registration = reg
	return reg, nil
}

// UpdateRegistration posts an update to the account's registration resource.
// With useRootURL the registration URI's host is rewritten to the root URL's
// before posting. When agreeToTOS is true the agreement field is set to the
// most recently advertised terms-of-service URI. A nil contacts slice leaves
// the account's contacts unchanged; with no changes at all the call
// degenerates to a server-side refresh of the registration.
func (c *Client) UpdateRegistration(useRootURL, agreeToTOS bool, contacts []string) (*resources.Registration, error) {
	op := "updateRegistration"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	if c.Registration == nil || c.Registration.RegistrationURI == "" {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "no existing registration, call Register first",
		}
	}
	payload := regRequest{
		Resource: acme.REG_RESOURCE,
		Contact:  contacts,
	}
	if agreeToTOS {
		if c.Registration.TOSLinkURI == "" {
			return nil, InvalidOperationError{
				Op:     op,
				Reason: "server has not advertised a terms-of-service document",
			}
		}
		payload.Agreement = c.Registration.TOSLinkURI
	}

	target, err := c.targetURL(c.Registration.RegistrationURI, useRootURL)
	if err != nil {
		return nil, err
	}
	resp, err := c.postSigned(op, target, payload)
	if err != nil {
		return nil, err
	}
	switch resp.Response.StatusCode {
	case http.StatusOK, http.StatusAccepted:
	default:
		return nil, c.serverError(op, resp)
	}

	reg, err := c.registrationFromResponse(op, resp)
	if err != nil {
		return nil, err
	}
	// Updates do not repeat the Location header, the URI never changes.
	if reg.RegistrationURI == "" {
		reg.RegistrationURI = c.Registration.RegistrationURI
	}
	c.Registration = reg
	return reg, nil
}

func (c *Client) registrationFromResponse(op string, resp *acmenet.NetResponse) (*resources.Registration, error) {
	var body regResponse
	if err := json.Unmarshal(resp.RespBody, &body); err != nil {
		return nil, ProtocolError{
			Op:       op,
			Reason:   "registration body was not valid JSON: " + err.Error(),
			Response: resp,
		}
	}

	reg := &resources.Registration{
		Contacts:          body.Contact,
		PublicKey:         body.Key,
		TOSAgreementURI:   body.Agreement,
		AuthorizationsURI: body.Authorizations,
		CertificatesURI:   body.Certificates,
	}

	if location := resp.Response.Header.Get(acme.LOCATION_HEADER); location != "" {
		uri, err := c.resolveURL(location)
		if err != nil {
			return nil, err
		}
		reg.RegistrationURI = uri
	} else if resp.Response.StatusCode == http.StatusCreated {
		return nil, ProtocolError{
			Op:       op,
			Reason:   "created registration response carried no Location header",
			Response: resp,
		}
	}

	links := parseLinks(resp)
	if tos := firstLink(links, acme.TERMS_OF_SERVICE_REL); tos != "" {
		uri, err := c.resolveURL(tos)
		if err != nil {
			return nil, err
		}
		reg.TOSLinkURI = uri
	} else if c.Registration != nil {
		reg.TOSLinkURI = c.Registration.TOSLinkURI
	}
	return reg, nil
}
