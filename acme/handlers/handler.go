// Package handlers publishes and retracts decoded challenge proofs. A
// Provider knows how to build a Handler for a challenge (writing a TXT
// record to a hosted zone, uploading a well-known file to a bucket, printing
// instructions for an operator). Providers register themselves by name in an
// explicit table so the set of available handlers is visible at a glance.
package handlers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/acmevault/acmevault/acme/resources"
)

// ErrHandlerClosed is returned by Handle and CleanUp after the handler's
// Close has released its scoped resources.
var ErrHandlerClosed = errors.New("handler is closed")

// ParameterDetail describes one parameter a Provider accepts, for help
// output and validation messages.
type ParameterDetail struct {
	Name        string
	Description string
	Required    bool
}

// Params carries the provider-specific configuration for one GetHandler
// call.
type Params map[string]interface{}

// String returns the named parameter as a string. Absent or non-string
// values yield the empty string.
func (p Params) String(name string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns the named parameter as a bool. Absent or non-bool values
// yield false.
func (p Params) Bool(name string) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return false
}

// MissingParameterError indicates a required provider parameter was not
// supplied.
type MissingParameterError struct {
	Name string
}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter %q was not provided", e.Name)
}

// Handler publishes and retracts the proof for challenges of the types its
// provider supports. Handlers may hold scoped resources (API clients, open
// files); Close releases them, after which Handle and CleanUp return
// ErrHandlerClosed.
type Handler interface {
	// Handle publishes the challenge's decoded proof.
	Handle(chall *resources.Challenge) error
	// CleanUp retracts a previously published proof.
	CleanUp(chall *resources.Challenge) error
	// Close releases the handler's resources. Safe to call more than once.
	Close() error
}

// Provider builds Handlers.
type Provider interface {
	// IsSupported reports whether the provider can publish the given
	// challenge's proof.
	IsSupported(chall *resources.Challenge) bool
	// Params describes the parameters GetHandler accepts.
	Params() []ParameterDetail
	// GetHandler builds a handler for the challenge with the given
	// parameters.
	GetHandler(chall *resources.Challenge, params Params) (Handler, error)
}

var (
	providersMu sync.Mutex
	providers   = map[string]Provider{}
)

// Register adds a provider under the given name, replacing any previous
// provider with that name. Providers constructed at runtime (like the
// embedded challenge server) register here too.
func Register(name string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = p
}

// Get returns the named provider, or an error naming the unknown provider.
func Get(name string) (Provider, error) {
	providersMu.Lock()
	defer providersMu.Unlock()
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("no handler provider registered with name %q", name)
	}
	return p, nil
}

// Supported returns the registered provider names in sorted order.
func Supported() []string {
	providersMu.Lock()
	defer providersMu.Unlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkDecoded verifies the challenge carries a decoded proof before a
// handler tries to publish it.
func checkDecoded(chall *resources.Challenge) error {
	if chall == nil {
		return fmt.Errorf("challenge must not be nil")
	}
	if chall.Details == nil {
		return fmt.Errorf("challenge %q has not been decoded", chall.URI)
	}
	return nil
}
