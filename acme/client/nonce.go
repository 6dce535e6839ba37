package client

import (
	"fmt"

	"github.com/acmevault/acmevault/acme"
	acmenet "github.com/acmevault/acmevault/net"
)

// captureNonce stores the Replay-Nonce from the response for the next signed
// request. The dialect requires a nonce on every response, success or error,
// so a missing header is protocol-fatal and takes precedence over whatever
// status the response carried.
func (c *Client) captureNonce(op string, resp *acmenet.NetResponse) error {
	nonce := resp.Response.Header.Get(acme.REPLAY_NONCE_HEADER)
	if nonce == "" {
		return ProtocolError{
			Op:       op,
			Reason:   "response carried no " + acme.REPLAY_NONCE_HEADER + " header",
			Response: resp,
		}
	}
	c.NextNonce = nonce
	return nil
}

// nonce returns the nonce to use for the next signed request, fetching a
// fresh one with a HEAD of the server's root URL when none is banked. The
// returned nonce is consumed.
func (c *Client) nonce(op string) (string, error) {
	if c.NextNonce == "" {
		resp, err := c.net.HeadURL(c.RootURL.String())
		if err != nil {
			return "", fmt.Errorf("%s: HEAD %s: %w", op, c.RootURL.String(), err)
		}
		c.LastResponse = resp
		if err := c.captureNonce(op, resp); err != nil {
			return "", err
		}
	}
	nonce := c.NextNonce
	c.NextNonce = ""
	return nonce, nil
}
