// Package shell provides an interactive REPL for working with an ACME
// server: registering accounts, authorizing identifiers, fulfilling
// challenges and managing certificates. It embeds a challenge test server
// that can answer http-01 and dns-01 validations for local development.
package shell

import (
	"fmt"
	"log"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/abiosoft/readline"
	challtestsrv "github.com/letsencrypt/challtestsrv"

	acmeclient "github.com/acmevault/acmevault/acme/client"
	"github.com/acmevault/acmevault/acme/handlers"
	"github.com/acmevault/acmevault/acme/resources"
)

// BasePrompt is the prompt displayed by the shell.
const BasePrompt = "[ ACME ] > "

const (
	clientKey  = "client"
	authzsKey  = "authzs"
	certReqKey = "certReq"
)

// ACMEShellOptions bundles the client configuration with the ports the
// embedded challenge server listens on.
type ACMEShellOptions struct {
	acmeclient.Config
	// Port for the embedded http-01 challenge responder.
	HTTPPort int
	// Port for the embedded dns-01 challenge responder.
	DNSPort int
}

// ACMEShell is an ishell REPL bound to an ACME client and an embedded
// challenge server.
type ACMEShell struct {
	*ishell.Shell
	challSrv *challtestsrv.ChallSrv
}

// NewACMEShell creates the shell, its client and the embedded challenge
// server, and registers the challenge server as the "testsrv" handler
// provider. The client is not initialized until Run.
func NewACMEShell(opts *ACMEShellOptions) (*ACMEShell, error) {
	challSrv, err := challtestsrv.New(challtestsrv.Config{
		HTTPOneAddrs: []string{fmt.Sprintf(":%d", opts.HTTPPort)},
		DNSOneAddrs:  []string{fmt.Sprintf(":%d", opts.DNSPort)},
		Log:          log.New(os.Stdout, "challsrv ", log.LstdFlags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating challenge server: %w", err)
	}
	handlers.Register("testsrv", handlers.NewChallengeServerProvider(challSrv))

	client, err := acmeclient.NewClient(opts.Config)
	if err != nil {
		return nil, err
	}

	sh := ishell.NewWithConfig(&readline.Config{
		Prompt: BasePrompt,
	})
	sh.Set(clientKey, client)
	sh.Set(authzsKey, map[string]*resources.Authorization{})
	sh.Set(certReqKey, &certReqBox{})

	shell := &ACMEShell{
		Shell:    sh,
		challSrv: challSrv,
	}
	addCommands(sh)
	return shell, nil
}

// Run starts the embedded challenge server, initializes the client against
// the ACME server and enters the REPL. The challenge server is shut down
// when the REPL exits.
func (a *ACMEShell) Run() {
	go a.challSrv.Run()
	defer a.challSrv.Shutdown()

	client := a.Get(clientKey).(*acmeclient.Client)
	if err := client.Init(); err != nil {
		log.Printf("client initialization failed: %v\n", err)
	}

	a.Shell.Run()
}

// getClient returns the shell's ACME client.
func getClient(c *ishell.Context) *acmeclient.Client {
	return c.Get(clientKey).(*acmeclient.Client)
}

// getAuthzs returns the shell's identifier -> authorization map. Commands
// store every authorization they create or refresh here, keyed by the
// identifier value.
func getAuthzs(c *ishell.Context) map[string]*resources.Authorization {
	return c.Get(authzsKey).(map[string]*resources.Authorization)
}

// certReqBox holds the most recent certificate request so the newCert,
// getCert, saveCert and revoke commands can share it.
type certReqBox struct {
	req *resources.CertificateRequest
}

// getCertReqBox returns the shell's certificate request holder.
func getCertReqBox(c *ishell.Context) *certReqBox {
	return c.Get(certReqKey).(*certReqBox)
}
