package client

import (
	"fmt"
	"net/http"

	"github.com/acmevault/acmevault/acme/resources"
	acmenet "github.com/acmevault/acmevault/net"
)

// InvalidOperationError indicates the client was asked to do something its
// current state does not allow, before any request was made. Typical causes:
// submitting an answer for a challenge that was never decoded, or updating a
// registration that does not exist yet.
type InvalidOperationError struct {
	// The operation that was rejected.
	Op string
	// Why the operation is invalid in the current state.
	Reason string
}

func (e InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ServerError indicates the server answered an otherwise well-formed
// exchange with an error status. When the response carried an
// application/problem+json body the parsed Problem is attached.
type ServerError struct {
	// The operation whose request was rejected.
	Op string
	// The full response, for callers that want the raw exchange.
	Response *acmenet.NetResponse
	// The parsed problem document, nil when the server sent none.
	Problem *resources.Problem
}

func (e ServerError) Error() string {
	if e.Problem != nil {
		return fmt.Sprintf("%s: server returned status %d, problem: %s",
			e.Op, e.StatusCode(), e.Problem)
	}
	return fmt.Sprintf("%s: server returned unexpected status %d",
		e.Op, e.StatusCode())
}

// StatusCode returns the HTTP status of the rejected exchange, or zero if no
// response was captured.
func (e ServerError) StatusCode() int {
	if e.Response == nil || e.Response.Response == nil {
		return 0
	}
	return e.Response.Response.StatusCode
}

// Conflict is true when the server rejected the request because the resource
// already exists, e.g. registering an account key that is already
// registered.
func (e ServerError) Conflict() bool {
	return e.StatusCode() == http.StatusConflict
}

// Unauthorized is true when the server refused the account access to the
// resource.
func (e ServerError) Unauthorized() bool {
	return e.StatusCode() == http.StatusForbidden ||
		e.StatusCode() == http.StatusUnauthorized
}

// ProtocolError indicates the server's response violated the protocol in a
// way that makes continuing unsafe, e.g. a response without a Replay-Nonce
// header or a created resource without a Location.
type ProtocolError struct {
	// The operation whose response was malformed.
	Op string
	// What was wrong with the response.
	Reason string
	// The offending response, when one was received.
	Response *acmenet.NetResponse
}

func (e ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
