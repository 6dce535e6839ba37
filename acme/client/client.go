// Package client provides an ACME protocol client for the draft dialect of
// ACME: flattened JWS request envelopes carrying a "resource" field,
// directory-driven endpoint discovery and Replay-Nonce anti-replay on every
// response.
package client

import (
	"crypto"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
	acmenet "github.com/acmevault/acmevault/net"
)

// Config holds the settings needed to create a Client.
type Config struct {
	// The ACME server's directory URL.
	RootURL string
	// Path to a PEM CA bundle to trust for the server's TLS certificate.
	// Empty means the system roots.
	CACert string
	// An optional contact email address for new registrations.
	ContactEmail string
	// When true, NewClient registers the account immediately after Init.
	AutoRegister bool
	// An existing account key. When nil a fresh RSA key is generated.
	Signer crypto.Signer
	// An existing registration, e.g. restored from a saved profile.
	Registration *resources.Registration
}

func (conf *Config) normalize() error {
	conf.RootURL = strings.TrimSpace(conf.RootURL)
	conf.ContactEmail = strings.TrimSpace(conf.ContactEmail)
	if conf.RootURL == "" {
		return fmt.Errorf("RootURL must not be empty")
	}
	if _, err := url.Parse(conf.RootURL); err != nil {
		return fmt.Errorf("RootURL %q is not a valid URL: %w", conf.RootURL, err)
	}
	return nil
}

// Client is a stateful ACME protocol client. It tracks the account key and
// registration, the server's directory, and the nonce to use for the next
// signed request. A Client is not safe for concurrent use.
type Client struct {
	// The parsed directory URL of the server.
	RootURL url.URL
	// The account private key used to sign requests.
	Signer crypto.Signer
	// The account's registration, nil until Register or a profile restore.
	Registration *resources.Registration
	// Additional named private keys, e.g. certificate keys for CSRs.
	Keys map[string]crypto.Signer
	// The raw response from the most recent exchange, for debugging.
	LastResponse *acmenet.NetResponse
	// The Replay-Nonce captured from the most recent response, consumed by
	// the next signed request.
	NextNonce string

	cfg         Config
	net         *acmenet.ACMENet
	directory   map[string]string
	initialized bool
}

// NewClient constructs a Client from the given configuration. The client is
// not usable until Init has been called.
func NewClient(config Config) (*Client, error) {
	if err := config.normalize(); err != nil {
		return nil, fmt.Errorf("newClient: %w", err)
	}

	netHandler, err := acmenet.New(config.CACert)
	if err != nil {
		return nil, fmt.Errorf("newClient: %w", err)
	}

	signer := config.Signer
	if signer == nil {
		signer, err = keys.NewSigner("rsa")
		if err != nil {
			return nil, fmt.Errorf("newClient: generating account key: %w", err)
		}
		log.Printf("generated a fresh RSA account key\n")
	}

	parsedURL, _ := url.Parse(config.RootURL)
	return &Client{
		RootURL:      *parsedURL,
		Signer:       signer,
		Registration: config.Registration,
		Keys:         map[string]crypto.Signer{},
		cfg:          config,
		net:          netHandler,
	}, nil
}

// Init primes the client by fetching the server's root URL, which seeds the
// nonce for the first signed request. Every server response, including this
// one, must carry a Replay-Nonce header.
func (c *Client) Init() error {
	_, err := c.get("init", c.RootURL.String())
	if err != nil {
		return err
	}
	c.initialized = true

	if c.cfg.AutoRegister && c.Registration == nil {
		var contacts []string
		if c.cfg.ContactEmail != "" {
			contacts = append(contacts, "mailto:"+c.cfg.ContactEmail)
		}
		if _, err := c.Register(contacts); err != nil {
			return err
		}
	}
	return nil
}

// Initialized reports whether Init has completed successfully.
func (c *Client) Initialized() bool {
	return c.initialized
}

// requireInitialized guards every protocol operation: a client that has not
// been primed with Init has no nonce and must not reach the network.
func (c *Client) requireInitialized(op string) error {
	if !c.initialized {
		return InvalidOperationError{
			Op:     op,
			Reason: "client is not initialized, call Init first",
		}
	}
	return nil
}

// Directory returns the most recently fetched directory, or nil when the
// directory has not been fetched yet.
func (c *Client) Directory() map[string]string {
	return c.directory
}

// SaveProfile freezes the client's registration and account key to the given
// path so a later session can resume without re-registering.
func (c *Client) SaveProfile(path string) error {
	if c.Registration == nil {
		return InvalidOperationError{
			Op:     "saveProfile",
			Reason: "no registration to save, register first",
		}
	}
	return resources.SaveProfile(path, c.Registration, c.Signer)
}

// RestoreProfile loads a previously saved profile, replacing the client's
// account key and registration.
func (c *Client) RestoreProfile(path string) error {
	profile, err := resources.RestoreProfile(path)
	if err != nil {
		return err
	}
	c.Signer = profile.Signer
	c.Registration = profile.Registration
	return nil
}
