package client

import (
	"encoding/json"
	"net/http"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
	acmenet "github.com/acmevault/acmevault/net"
)

// authzRequest is the payload shape for new-authz requests.
type authzRequest struct {
	Resource   string               `json:"resource"`
	Identifier resources.Identifier `json:"identifier"`
}

// AuthorizeIdentifier asks the server to authorize the account for the given
// identifier, returning the pending Authorization with its challenges. The
// client must hold a registration; an account the server refuses to
// authorize surfaces as a ServerError carrying the problem document.
func (c *Client) AuthorizeIdentifier(ident resources.Identifier) (*resources.Authorization, error) {
	op := "authorizeIdentifier"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	if c.Registration == nil || c.Registration.RegistrationURI == "" {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "no existing registration, call Register first",
		}
	}
	if ident.Type == "" || ident.Value == "" {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "identifier must have both a type and a value",
		}
	}

	endpoint, err := c.endpointURL(op, acme.NEW_AUTHZ_RESOURCE)
	if err != nil {
		return nil, err
	}
	resp, err := c.postSigned(op, endpoint, authzRequest{
		Resource:   acme.NEW_AUTHZ_RESOURCE,
		Identifier: ident,
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
			Reason:   "created authorization response carried no Location header",
			Response: resp,
		}
	}
	return c.authorizationFromResponse(op, resp, location)
}

// RefreshAuthorization fetches the current server-side state of the
// authorization and returns it as a new snapshot. With useRootURL the
// authorization URI's host is rewritten to the root URL's before fetching.
// The given authorization is not modified; decoded proofs and handler state
// of its challenges are carried over to the matching challenges (by type) of
// the snapshot.
func (c *Client) RefreshAuthorization(authz *resources.Authorization, useRootURL bool) (*resources.Authorization, error) {
	op := "refreshAuthorization"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	if authz == nil || authz.URI == "" {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "authorization has no URI",
		}
	}

	target, err := c.targetURL(authz.URI, useRootURL)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(op, target)
	if err != nil {
		return nil, err
	}
	switch resp.Response.StatusCode {
	case http.StatusOK, http.StatusAccepted:
	default:
		return nil, c.serverError(op, resp)
	}

	fresh, err := c.authorizationFromResponse(op, resp, authz.URI)
	if err != nil {
		return nil, err
	}
	for i := range fresh.Challenges {
		old := authz.Challenge(fresh.Challenges[i].Type)
		if old == nil {
			continue
		}
		fresh.Challenges[i].Details = old.Details
		fresh.Challenges[i].HandlerName = old.HandlerName
		fresh.Challenges[i].HandledAt = old.HandledAt
		fresh.Challenges[i].CleanedUpAt = old.CleanedUpAt
		fresh.Challenges[i].SubmittedAt = old.SubmittedAt
	}
	return fresh, nil
}

// RefreshChallenge fetches the current server-side state of the challenge
// and applies it to the given challenge in place. With useRootURL the
// challenge URI's host is rewritten to the root URL's before fetching.
// Client-side state (decoded proof, handler name, timestamps) is preserved
// because the server response never carries those fields.
func (c *Client) RefreshChallenge(chall *resources.Challenge, useRootURL bool) error {
	op := "refreshChallenge"
	if err := c.requireInitialized(op); err != nil {
		return err
	}
	if chall == nil || chall.URI == "" {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has no URI",
		}
	}

	target, err := c.targetURL(chall.URI, useRootURL)
	if err != nil {
		return err
	}
	resp, err := c.get(op, target)
	if err != nil {
		return err
	}
	switch resp.Response.StatusCode {
	case http.StatusOK, http.StatusAccepted:
	default:
		return c.serverError(op, resp)
	}

	if err := json.Unmarshal(resp.RespBody, chall); err != nil {
		return ProtocolError{
			Op:       op,
			Reason:   "challenge body was not valid JSON: " + err.Error(),
			Response: resp,
		}
	}
	return nil
}

func (c *Client) authorizationFromResponse(op string, resp *acmenet.NetResponse, location string) (*resources.Authorization, error) {
	var authz resources.Authorization
	if err := json.Unmarshal(resp.RespBody, &authz); err != nil {
		return nil, ProtocolError{
			Op:       op,
			Reason:   "authorization body was not valid JSON: " + err.Error(),
			Response: resp,
		}
	}
	uri, err := c.resolveURL(location)
	if err != nil {
		return nil, err
	}
	authz.URI = uri

	// Challenge URIs may be relative, make them absolute once so later
	// refreshes and submissions can address them directly.
	for i := range authz.Challenges {
		if authz.Challenges[i].URI == "" {
			continue
		}
		challURI, err := c.resolveURL(authz.Challenges[i].URI)
		if err != nil {
			return nil, err
		}
		authz.Challenges[i].URI = challURI
	}
	return &authz, nil
}
