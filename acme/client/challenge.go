package client

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/challenge"
	"github.com/acmevault/acmevault/acme/handlers"
	"github.com/acmevault/acmevault/acme/resources"
)

// challengeRequest is the payload shape for challenge answer submissions.
type challengeRequest struct {
	Resource         string `json:"resource"`
	Type             string `json:"type"`
	KeyAuthorization string `json:"keyAuthorization"`
}

// DecodeChallenge computes the proof material for the authorization's
// challenge of the given type and stores it on the challenge. Decoding is
// local and repeatable; it does not talk to the server.
func (c *Client) DecodeChallenge(authz *resources.Authorization, challengeType string) (*resources.Challenge, error) {
	op := "decodeChallenge"
	chall, err := c.findChallenge(op, authz, challengeType)
	if err != nil {
		return nil, err
	}

	details, err := challenge.Decode(authz.Identifier, chall, c.Signer)
	if err != nil {
		return nil, InvalidOperationError{Op: op, Reason: err.Error()}
	}
	chall.Details = details
	return chall, nil
}

// HandleChallenge publishes the decoded proof of the authorization's
// challenge of the given type using the named handler provider. The
// challenge must have been decoded first; handling an undecoded challenge is
// an InvalidOperationError. The handler is closed before returning; its
// scoped resources do not outlive the call.
func (c *Client) HandleChallenge(authz *resources.Authorization, challengeType, handlerName string, params handlers.Params) error {
	op := "handleChallenge"
	chall, err := c.findChallenge(op, authz, challengeType)
	if err != nil {
		return err
	}
	if chall.Details == nil {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has not been decoded, call DecodeChallenge first",
		}
	}

	handler, err := c.handlerFor(op, chall, handlerName, params)
	if err != nil {
		return err
	}
	defer handler.Close()

	if err := handler.Handle(chall); err != nil {
		return err
	}
	chall.HandlerName = handlerName
	chall.HandledAt = time.Now()
	return nil
}

// CleanUpChallenge retracts a previously published proof using the named
// handler provider, or the provider that published it when handlerName is
// empty.
func (c *Client) CleanUpChallenge(authz *resources.Authorization, challengeType, handlerName string, params handlers.Params) error {
	op := "cleanUpChallenge"
	chall, err := c.findChallenge(op, authz, challengeType)
	if err != nil {
		return err
	}
	if chall.Details == nil {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has not been decoded, nothing to clean up",
		}
	}
	if handlerName == "" {
		handlerName = chall.HandlerName
	}
	if handlerName == "" {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has no recorded handler and none was named",
		}
	}

	handler, err := c.handlerFor(op, chall, handlerName, params)
	if err != nil {
		return err
	}
	defer handler.Close()

	if err := handler.CleanUp(chall); err != nil {
		return err
	}
	chall.CleanedUpAt = time.Now()
	return nil
}

// SubmitChallengeAnswer tells the server the proof for the authorization's
// challenge of the given type is in place, triggering validation. With
// useRootURL the challenge URI's host is rewritten to the root URL's before
// posting. The challenge must have been decoded first; submitting an
// undecoded challenge is an InvalidOperationError and no request is made.
func (c *Client) SubmitChallengeAnswer(authz *resources.Authorization, challengeType string, useRootURL bool) error {
	op := "submitChallengeAnswer"
	if err := c.requireInitialized(op); err != nil {
		return err
	}
	chall, err := c.findChallenge(op, authz, challengeType)
	if err != nil {
		return err
	}
	if chall.Details == nil || chall.Details.Answer == nil {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has not been decoded, call DecodeChallenge first",
		}
	}
	if chall.URI == "" {
		return InvalidOperationError{
			Op:     op,
			Reason: "challenge has no URI",
		}
	}

	target, err := c.targetURL(chall.URI, useRootURL)
	if err != nil {
		return err
	}
	resp, err := c.postSigned(op, target, challengeRequest{
		Resource:         acme.CHALLENGE_RESOURCE,
		Type:             chall.Details.Answer.Type,
		KeyAuthorization: chall.Details.Answer.KeyAuthorization,
	})
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
	chall.SubmittedAt = time.Now()
	return nil
}

func (c *Client) findChallenge(op string, authz *resources.Authorization, challengeType string) (*resources.Challenge, error) {
	if authz == nil {
		return nil, InvalidOperationError{Op: op, Reason: "authorization must not be nil"}
	}
	chall := authz.Challenge(challengeType)
	if chall == nil {
		return nil, InvalidOperationError{
			Op: op,
			Reason: "authorization for " + authz.Identifier.Value +
				" offers no " + challengeType + " challenge",
		}
	}
	return chall, nil
}

func (c *Client) handlerFor(op string, chall *resources.Challenge, handlerName string, params handlers.Params) (handlers.Handler, error) {
	provider, err := handlers.Get(handlerName)
	if err != nil {
		return nil, InvalidOperationError{Op: op, Reason: err.Error()}
	}
	if !provider.IsSupported(chall) {
		return nil, InvalidOperationError{
			Op:     op,
			Reason: "handler " + handlerName + " does not support " + chall.Type + " challenges",
		}
	}
	return provider.GetHandler(chall, params)
}
