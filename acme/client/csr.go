package client

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"

	"github.com/acmevault/acmevault/acme/keys"
)

// NewCertificateKey generates a fresh ECDSA private key, stores it in the
// client's named key map and returns it. Certificate keys are kept separate
// from the account key so issuance never reuses the key that signs requests.
func (c *Client) NewCertificateKey(name string) (crypto.Signer, error) {
	if name == "" {
		return nil, fmt.Errorf("key name must not be empty")
	}
	if _, found := c.Keys[name]; found {
		return nil, fmt.Errorf("there is already a key named %q", name)
	}
	signer, err := keys.NewSigner("ecdsa")
	if err != nil {
		return nil, err
	}
	c.Keys[name] = signer
	return signer, nil
}

// CSR builds a DER-encoded PKCS#10 certificate signing request for the given
// DNS names, signed by the given private key. The first name becomes the
// subject common name.
func CSR(signer crypto.Signer, dnsNames []string) ([]byte, error) {
	if len(dnsNames) == 0 {
		return nil, fmt.Errorf("at least one DNS name is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer must not be nil")
	}

	template := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: dnsNames[0]},
		DNSNames: dnsNames,
	}
	return x509.CreateCertificateRequest(rand.Reader, template, signer)
}
