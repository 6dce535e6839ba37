package handlers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
)

func decodedDNSChallenge() *resources.Challenge {
	return &resources.Challenge{
		Type:  acme.ChallengeTypeDNS01,
		URI:   "https://acme.example.com/authz/1/0",
		Token: "tok",
		Details: &resources.Details{
			ChallengeType: acme.ChallengeTypeDNS01,
			DNS: &resources.DNSDetails{
				RecordName:  "_acme-challenge.example.com",
				RecordType:  "TXT",
				RecordValue: "digest-value",
			},
		},
	}
}

func decodedHTTPChallenge() *resources.Challenge {
	return &resources.Challenge{
		Type:  acme.ChallengeTypeHTTP01,
		URI:   "https://acme.example.com/authz/1/1",
		Token: "tok",
		Details: &resources.Details{
			ChallengeType: acme.ChallengeTypeHTTP01,
			HTTP: &resources.HTTPDetails{
				FileURL:     "http://example.com/.well-known/acme-challenge/tok",
				FilePath:    ".well-known/acme-challenge/tok",
				FileContent: "tok.thumbprint",
			},
		},
	}
}

func TestSupportedProviders(t *testing.T) {
	names := Supported()
	assert.Contains(t, names, "manual")
	assert.Contains(t, names, "route53")
	assert.Contains(t, names, "s3")
}

func TestGetUnknownProvider(t *testing.T) {
	_, err := Get("carrier-pigeon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestParamsAccessors(t *testing.T) {
	p := Params{
		"writeTo":     "FILE",
		"waitForSync": true,
		"ttl":         10,
	}
	assert.Equal(t, "FILE", p.String("writeTo"))
	assert.Equal(t, "", p.String("absent"))
	assert.Equal(t, "", p.String("ttl"))
	assert.True(t, p.Bool("waitForSync"))
	assert.False(t, p.Bool("absent"))
}

func TestManualHandlerDNS(t *testing.T) {
	chall := decodedDNSChallenge()
	var out bytes.Buffer
	h := &manualHandler{out: &out}

	require.NoError(t, h.Handle(chall))
	assert.Contains(t, out.String(), "_acme-challenge.example.com")
	assert.Contains(t, out.String(), "digest-value")

	out.Reset()
	require.NoError(t, h.CleanUp(chall))
	assert.Contains(t, out.String(), "retract")
}

func TestManualHandlerHTTP(t *testing.T) {
	chall := decodedHTTPChallenge()
	var out bytes.Buffer
	h := &manualHandler{out: &out}

	require.NoError(t, h.Handle(chall))
	assert.Contains(t, out.String(), chall.Details.HTTP.FileURL)
	assert.Contains(t, out.String(), chall.Details.HTTP.FileContent)
}

func TestManualHandlerUndecoded(t *testing.T) {
	var out bytes.Buffer
	h := &manualHandler{out: &out}
	err := h.Handle(&resources.Challenge{Type: acme.ChallengeTypeDNS01, URI: "u"})
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestManualHandlerClosed(t *testing.T) {
	var out bytes.Buffer
	h := &manualHandler{out: &out}
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	assert.ErrorIs(t, h.Handle(decodedDNSChallenge()), ErrHandlerClosed)
	assert.ErrorIs(t, h.CleanUp(decodedDNSChallenge()), ErrHandlerClosed)
}

func TestManualProviderFileRequiresName(t *testing.T) {
	_, err := manualProvider{}.GetHandler(decodedDNSChallenge(), Params{
		"writeTo": "FILE",
	})
	require.Error(t, err)
	var missing MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "fileName", missing.Name)
}

func TestManualProviderFileModes(t *testing.T) {
	path := t.TempDir() + "/instructions.txt"

	h, err := manualProvider{}.GetHandler(decodedDNSChallenge(), Params{
		"writeTo":  "FILE",
		"fileName": path,
		"fileMode": "createNew",
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(decodedDNSChallenge()))
	require.NoError(t, h.Close())

	// createNew refuses to reuse an existing file.
	_, err = manualProvider{}.GetHandler(decodedDNSChallenge(), Params{
		"writeTo":  "FILE",
		"fileName": path,
		"fileMode": "createNew",
	})
	require.Error(t, err)

	_, err = manualProvider{}.GetHandler(decodedDNSChallenge(), Params{
		"writeTo":  "FILE",
		"fileName": path,
		"fileMode": "rotate",
	})
	require.Error(t, err)
}

// fakeChallSrv records mock challenge responses like the embedded challenge
// server would.
type fakeChallSrv struct {
	httpOne map[string]string
	dnsOne  map[string]string
}

func newFakeChallSrv() *fakeChallSrv {
	return &fakeChallSrv{
		httpOne: map[string]string{},
		dnsOne:  map[string]string{},
	}
}

func (f *fakeChallSrv) AddHTTPOneChallenge(token, content string) { f.httpOne[token] = content }
func (f *fakeChallSrv) DeleteHTTPOneChallenge(token string)       { delete(f.httpOne, token) }
func (f *fakeChallSrv) AddDNSOneChallenge(host, content string)   { f.dnsOne[host] = content }
func (f *fakeChallSrv) DeleteDNSOneChallenge(host string)         { delete(f.dnsOne, host) }

func TestChallengeServerProvider(t *testing.T) {
	srv := newFakeChallSrv()
	provider := NewChallengeServerProvider(srv)

	assert.True(t, provider.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeDNS01}))
	assert.True(t, provider.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeHTTP01}))
	assert.False(t, provider.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeTLSSNI01}))

	dnsChall := decodedDNSChallenge()
	h, err := provider.GetHandler(dnsChall, nil)
	require.NoError(t, err)
	require.NoError(t, h.Handle(dnsChall))
	// The mock DNS server matches fully qualified names.
	assert.Equal(t, "digest-value", srv.dnsOne["_acme-challenge.example.com."])
	require.NoError(t, h.CleanUp(dnsChall))
	assert.Empty(t, srv.dnsOne)

	httpChall := decodedHTTPChallenge()
	h, err = provider.GetHandler(httpChall, nil)
	require.NoError(t, err)
	require.NoError(t, h.Handle(httpChall))
	assert.Equal(t, "tok.thumbprint", srv.httpOne["tok"])
	require.NoError(t, h.CleanUp(httpChall))
	assert.Empty(t, srv.httpOne)

	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Handle(httpChall), ErrHandlerClosed)
}

func TestRoute53ProviderSupport(t *testing.T) {
	p, err := Get("route53")
	require.NoError(t, err)
	assert.True(t, p.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeDNS01}))
	assert.False(t, p.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeHTTP01}))
}

func TestS3ProviderRequiresBucket(t *testing.T) {
	p, err := Get("s3")
	require.NoError(t, err)
	assert.True(t, p.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeHTTP01}))
	assert.False(t, p.IsSupported(&resources.Challenge{Type: acme.ChallengeTypeDNS01}))

	_, err = p.GetHandler(decodedHTTPChallenge(), Params{})
	var missing MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "bucket", missing.Name)
}

func TestS3ObjectKey(t *testing.T) {
	h := &s3Handler{bucket: "b"}
	assert.Equal(t, ".well-known/acme-challenge/tok",
		h.objectKey(&resources.HTTPDetails{FilePath: "/.well-known/acme-challenge/tok"}))

	h.keyPrefix = "site/"
	assert.Equal(t, "site/.well-known/acme-challenge/tok",
		h.objectKey(&resources.HTTPDetails{FilePath: ".well-known/acme-challenge/tok"}))
}
