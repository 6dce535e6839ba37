package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/jws"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
	acmenet "github.com/acmevault/acmevault/net"
)

// protectedHeader is the integrity-protected JWS header of every signed
// request. It carries only the anti-replay nonce; the algorithm and account
// JWK travel in the unprotected header.
type protectedHeader struct {
	Nonce string `json:"nonce"`
}

// get performs a GET of the target URL and captures the response nonce.
// Every server response must carry a Replay-Nonce header; its absence is a
// ProtocolError regardless of the response status.
func (c *Client) get(op, targetURL string) (*acmenet.NetResponse, error) {
	resp, err := c.net.GetURL(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: GET %s: %w", op, targetURL, err)
	}
	c.LastResponse = resp
	if err := c.captureNonce(op, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// postSigned marshals the payload, wraps it in a signed flat JWS envelope
// carrying the next nonce, and POSTs it to the target URL. The consumed
// nonce is replaced by the one on the response.
func (c *Client) postSigned(op, targetURL string, payload interface{}) (*acmenet.NetResponse, error) {
	if c.Signer == nil {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "client has no signer for authenticated requests",
		}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshaling payload: %w", op, err)
	}

	nonce, err := c.nonce(op)
	if err != nil {
		return nil, err
	}
	protected, err := json.Marshal(protectedHeader{Nonce: nonce})
	if err != nil {
		return nil, fmt.Errorf("%s: marshaling protected header: %w", op, err)
	}
	header := fmt.Sprintf(`{"alg":%q,"jwk":%s}`,
		keys.JWSAlg(c.Signer), keys.JWKJSON(c.Signer))

	envelope, err := jws.SignFlatJSON(c.Signer, payloadJSON, protected, []byte(header))
	if err != nil {
		return nil, fmt.Errorf("%s: signing request: %w", op, err)
	}

	resp, err := c.net.PostURL(targetURL, []byte(envelope))
	if err != nil {
		return nil, fmt.Errorf("%s: POST %s: %w", op, targetURL, err)
	}
	c.LastResponse = resp
	if err := c.captureNonce(op, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// serverError builds the error for an exchange the server rejected,
// attaching the parsed problem document when one was served.
func (c *Client) serverError(op string, resp *acmenet.NetResponse) error {
	return ServerError{
		Op:       op,
		Response: resp,
		Problem:  problemFromResponse(resp),
	}
}

func problemFromResponse(resp *acmenet.NetResponse) *resources.Problem {
	contentType := resp.Response.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, acme.ProblemJSONContentType) {
		return nil
	}
	var prob resources.Problem
	if err := json.Unmarshal(resp.RespBody, &prob); err != nil {
		return nil
	}
	return &prob
}

// resolveURL makes the given URL absolute by resolving it against the
// client's root URL. Absolute URLs pass through unchanged.
func (c *Client) resolveURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("resolving URL %q: %w", raw, err)
	}
	if parsed.IsAbs() {
		return raw, nil
	}
	return c.RootURL.ResolveReference(parsed).String(), nil
}

// targetURL resolves raw against the root URL. With useRootURL the scheme
// and host of the result are rewritten to the root URL's, keeping path and
// query: proxy and staging deployments hand out resource URIs on a logical
// host the client cannot address directly.
func (c *Client) targetURL(raw string, useRootURL bool) (string, error) {
	resolved, err := c.resolveURL(raw)
	if err != nil {
		return "", err
	}
	if !useRootURL {
		return resolved, nil
	}
	parsed, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("resolving URL %q: %w", resolved, err)
	}
	parsed.Scheme = c.RootURL.Scheme
	parsed.Host = c.RootURL.Host
	return parsed.String(), nil
}
