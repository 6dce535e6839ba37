package handlers

import (
	"fmt"
	"strings"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
)

// ChallengeServer is the slice of the embedded test challenge server that
// handlers need: adding and removing http-01 and dns-01 mock responses.
// Satisfied by *challtestsrv.ChallSrv.
type ChallengeServer interface {
	AddHTTPOneChallenge(token string, content string)
	DeleteHTTPOneChallenge(token string)
	AddDNSOneChallenge(host string, content string)
	DeleteDNSOneChallenge(host string)
}

// NewChallengeServerProvider returns a provider that publishes proofs to the
// given in-process challenge server. The provider is registered at runtime
// by whoever owns the server's lifecycle.
func NewChallengeServerProvider(srv ChallengeServer) Provider {
	return &challSrvProvider{srv: srv}
}

type challSrvProvider struct {
	srv ChallengeServer
}

func (p *challSrvProvider) IsSupported(chall *resources.Challenge) bool {
	switch chall.Type {
	case acme.ChallengeTypeDNS01, acme.ChallengeTypeHTTP01:
		return true
	}
	return false
}

func (p *challSrvProvider) Params() []ParameterDetail {
	return nil
}

func (p *challSrvProvider) GetHandler(chall *resources.Challenge, params Params) (Handler, error) {
	return &challSrvHandler{srv: p.srv}, nil
}

type challSrvHandler struct {
	srv    ChallengeServer
	closed bool
}

func (h *challSrvHandler) Handle(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	details := chall.Details
	switch {
	case details.DNS != nil:
		h.srv.AddDNSOneChallenge(dnsHost(details.DNS.RecordName), details.DNS.RecordValue)
	case details.HTTP != nil:
		h.srv.AddHTTPOneChallenge(chall.Token, details.HTTP.FileContent)
	default:
		return errUnsupportedProof(chall)
	}
	return nil
}

func (h *challSrvHandler) CleanUp(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	details := chall.Details
	switch {
	case details.DNS != nil:
		h.srv.DeleteDNSOneChallenge(dnsHost(details.DNS.RecordName))
	case details.HTTP != nil:
		h.srv.DeleteHTTPOneChallenge(chall.Token)
	default:
		return errUnsupportedProof(chall)
	}
	return nil
}

func (h *challSrvHandler) Close() error {
	h.closed = true
	return nil
}

func errUnsupportedProof(chall *resources.Challenge) error {
	return fmt.Errorf("challenge server cannot publish proof for challenge type %q", chall.Details.ChallengeType)
}

// dnsHost makes the record name fully qualified. The mock DNS server matches
// questions against FQDNs with a trailing dot.
func dnsHost(recordName string) string {
	if strings.HasSuffix(recordName, ".") {
		return recordName
	}
	return recordName + "."
}
