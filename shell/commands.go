package shell

import (
	"encoding/pem"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/acmevault/acmevault/acme"
	acmeclient "github.com/acmevault/acmevault/acme/client"
	"github.com/acmevault/acmevault/acme/handlers"
	"github.com/acmevault/acmevault/acme/jws"
	"github.com/acmevault/acmevault/acme/keys"
	"github.com/acmevault/acmevault/acme/resources"
)

func addCommands(sh *ishell.Shell) {
	sh.AddCmd(&ishell.Cmd{
		Name: "dir",
		Help: "Fetch and print the server's directory. -relative stores endpoints relative to the root URL",
		Func: dirCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "register",
		Help: "Register a new account. -contacts is a comma separated list of contact URIs",
		Func: registerCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "updateReg",
		Help: "Update the account registration. -tos agrees to the current terms of service",
		Func: updateRegCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "authorize",
		Help: "Request an authorization for a DNS identifier: authorize -ident example.com",
		Func: authorizeCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "getAuthz",
		Help: "Refresh and print the authorization for an identifier",
		Func: getAuthzCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "decode",
		Help: "Compute the proof material for a challenge: decode -ident example.com -type dns-01",
		Func: decodeCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "handle",
		Help: "Publish the proof for a challenge with a handler: handle -ident example.com -type dns-01 -handler testsrv",
		Func: handleCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "cleanup",
		Help: "Retract a published proof for a challenge",
		Func: cleanupCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "submit",
		Help: "Submit the challenge answer to the server, triggering validation",
		Func: submitCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "poll",
		Help: "Poll an authorization until it leaves the pending state",
		Func: pollCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "keyAuth",
		Help: "Print the key authorization and its digest for a token",
		Func: keyAuthCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "newKey",
		Help: "Generate a named certificate key: newKey -name example.com",
		Func: newKeyCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "newCert",
		Help: "Request a certificate: newCert -names example.com,www.example.com -key example.com",
		Func: newCertCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "getCert",
		Help: "Poll the pending certificate request",
		Func: getCertCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "saveCert",
		Help: "Write the issued certificate as PEM: saveCert -path cert.pem",
		Func: saveCertCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "revoke",
		Help: "Revoke the issued certificate: revoke -reason 1",
		Func: revokeCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "saveProfile",
		Help: "Save the account registration and key to a file",
		Func: saveProfileCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "loadProfile",
		Help: "Restore the account registration and key from a file",
		Func: loadProfileCmd,
	})
	sh.AddCmd(&ishell.Cmd{
		Name: "handlers",
		Help: "List the registered challenge handler providers",
		Func: handlersCmd,
	})
}

func parseFlags(c *ishell.Context, fs *flag.FlagSet) bool {
	if err := fs.Parse(c.Args); err != nil {
		return false
	}
	return true
}

func lookupAuthz(c *ishell.Context, ident string) *resources.Authorization {
	if ident == "" {
		c.Println("an -ident value is required")
		return nil
	}
	authz := getAuthzs(c)[ident]
	if authz == nil {
		c.Printf("no authorization for %q, run authorize first\n", ident)
	}
	return authz
}

// parseParams turns a "key=value,key=value" string into handler params.
// The literal values "true" and "false" become bools.
func parseParams(spec string) handlers.Params {
	params := handlers.Params{}
	if spec == "" {
		return params
	}
	for _, pair := range strings.Split(spec, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch value {
		case "true":
			params[key] = true
		case "false":
			params[key] = false
		default:
			params[key] = value
		}
	}
	return params
}

func dirCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("dir", flag.ContinueOnError)
	relative := fs.Bool("relative", false, "store endpoints relative to the root URL")
	if !parseFlags(c, fs) {
		return
	}

	dir, err := getClient(c).GetDirectory(*relative)
	if err != nil {
		c.Printf("dir: %v\n", err)
		return
	}
	for name, endpoint := range dir {
		c.Printf("%-12s %s\n", name, endpoint)
	}
}

func registerCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	contacts := fs.String("contacts", "", "comma separated contact URIs")
	if !parseFlags(c, fs) {
		return
	}

	var contactList []string
	if *contacts != "" {
		contactList = strings.Split(*contacts, ",")
	}
	reg, err := getClient(c).Register(contactList)
	if err != nil {
		c.Printf("register: %v\n", err)
		return
	}
	c.Printf("registered account: %s\n", reg)
	if reg.TOSLinkURI != "" {
		c.Printf("terms of service: %s (agree with updateReg -tos)\n", reg.TOSLinkURI)
	}
}

func updateRegCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("updateReg", flag.ContinueOnError)
	agreeTOS := fs.Bool("tos", false, "agree to the current terms of service")
	contacts := fs.String("contacts", "", "comma separated contact URIs")
	rootURL := fs.Bool("rootURL", false, "rewrite the registration URI host to the root URL's")
	if !parseFlags(c, fs) {
		return
	}

	var contactList []string
	if *contacts != "" {
		contactList = strings.Split(*contacts, ",")
	}
	reg, err := getClient(c).UpdateRegistration(*rootURL, *agreeTOS, contactList)
	if err != nil {
		c.Printf("updateReg: %v\n", err)
		return
	}
	c.Printf("updated registration: %s\n", reg)
	if reg.TOSAgreementURI != "" {
		c.Printf("agreed to terms: %s\n", reg.TOSAgreementURI)
	}
}

func authorizeCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("authorize", flag.ContinueOnError)
	ident := fs.String("ident", "", "DNS identifier to authorize")
	if !parseFlags(c, fs) {
		return
	}
	if *ident == "" {
		c.Println("an -ident value is required")
		return
	}

	authz, err := getClient(c).AuthorizeIdentifier(resources.Identifier{
		Type:  resources.IdentifierTypeDNS,
		Value: *ident,
	})
	if err != nil {
		c.Printf("authorize: %v\n", err)
		return
	}
	getAuthzs(c)[*ident] = authz
	printAuthz(c, authz)
}

func getAuthzCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("getAuthz", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	rootURL := fs.Bool("rootURL", false, "rewrite the authorization URI host to the root URL's")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	fresh, err := getClient(c).RefreshAuthorization(authz, *rootURL)
	if err != nil {
		c.Printf("getAuthz: %v\n", err)
		return
	}
	getAuthzs(c)[*ident] = fresh
	printAuthz(c, fresh)
}

func printAuthz(c *ishell.Context, authz *resources.Authorization) {
	c.Printf("authorization %s\n", authz.URI)
	c.Printf("  identifier: %s\n", authz.Identifier.Value)
	c.Printf("  status:     %s\n", authz.Status)
	if authz.Expires != "" {
		c.Printf("  expires:    %s\n", authz.Expires)
	}
	for i, chall := range authz.Challenges {
		c.Printf("  challenge %d: %s (%s) %s\n", i, chall.Type, chall.Status, chall.URI)
		if chall.Error != nil {
			c.Printf("    error: %s\n", chall.Error)
		}
	}
	if len(authz.Combinations) > 0 {
		c.Printf("  combinations: %v\n", authz.Combinations)
	}
}

func decodeCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	challType := fs.String("type", acme.ChallengeTypeDNS01, "challenge type to decode")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	chall, err := getClient(c).DecodeChallenge(authz, *challType)
	if err != nil {
		c.Printf("decode: %v\n", err)
		return
	}
	details := chall.Details
	switch {
	case details.DNS != nil:
		c.Printf("%s record %s = %q\n",
			details.DNS.RecordType, details.DNS.RecordName, details.DNS.RecordValue)
	case details.HTTP != nil:
		c.Printf("serve %s with content %q\n", details.HTTP.FileURL, details.HTTP.FileContent)
	case details.TLSSNI != nil:
		c.Printf("present a certificate with SAN %s\n", details.TLSSNI.ZDomain)
	}
}

func handleCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("handle", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	challType := fs.String("type", acme.ChallengeTypeDNS01, "challenge type to handle")
	handler := fs.String("handler", "manual", "handler provider name")
	params := fs.String("params", "", "handler parameters as key=value,key=value")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	client := getClient(c)
	if chall := authz.Challenge(*challType); chall != nil && chall.Details == nil {
		if _, err := client.DecodeChallenge(authz, *challType); err != nil {
			c.Printf("handle: %v\n", err)
			return
		}
	}
	err := client.HandleChallenge(authz, *challType, *handler, parseParams(*params))
	if err != nil {
		c.Printf("handle: %v\n", err)
		return
	}
	c.Printf("published %s proof for %s with handler %s\n", *challType, *ident, *handler)
}

func cleanupCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	challType := fs.String("type", acme.ChallengeTypeDNS01, "challenge type to clean up")
	handler := fs.String("handler", "", "handler provider name, defaults to the one that published")
	params := fs.String("params", "", "handler parameters as key=value,key=value")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	err := getClient(c).CleanUpChallenge(authz, *challType, *handler, parseParams(*params))
	if err != nil {
		c.Printf("cleanup: %v\n", err)
		return
	}
	c.Printf("retracted %s proof for %s\n", *challType, *ident)
}

func submitCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	challType := fs.String("type", acme.ChallengeTypeDNS01, "challenge type to submit")
	rootURL := fs.Bool("rootURL", false, "rewrite the challenge URI host to the root URL's")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	if err := getClient(c).SubmitChallengeAnswer(authz, *challType, *rootURL); err != nil {
		c.Printf("submit: %v\n", err)
		return
	}
	chall := authz.Challenge(*challType)
	c.Printf("submitted %s answer for %s, status %s\n", *challType, *ident, chall.Status)
}

func pollCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("poll", flag.ContinueOnError)
	ident := fs.String("ident", "", "identifier of the authorization")
	interval := fs.Duration("interval", 2*time.Second, "time between polls")
	maxPolls := fs.Int("max", 10, "maximum number of polls")
	rootURL := fs.Bool("rootURL", false, "rewrite the authorization URI host to the root URL's")
	if !parseFlags(c, fs) {
		return
	}
	authz := lookupAuthz(c, *ident)
	if authz == nil {
		return
	}

	client := getClient(c)
	for i := 0; i < *maxPolls; i++ {
		fresh, err := client.RefreshAuthorization(authz, *rootURL)
		if err != nil {
			c.Printf("poll: %v\n", err)
			return
		}
		getAuthzs(c)[*ident] = fresh
		if fresh.Status != acme.StatusPending && fresh.Status != acme.StatusProcessing {
			printAuthz(c, fresh)
			return
		}
		c.Printf("authorization %s still %s\n", fresh.URI, fresh.Status)
		time.Sleep(*interval)
	}
	c.Printf("gave up polling %s after %d attempts\n", *ident, *maxPolls)
}

func keyAuthCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("keyAuth", flag.ContinueOnError)
	token := fs.String("token", "", "challenge token")
	if !parseFlags(c, fs) {
		return
	}
	if *token == "" {
		c.Println("a -token value is required")
		return
	}

	signer := getClient(c).Signer
	c.Printf("key authorization: %s\n", keys.KeyAuth(signer, *token))
	c.Printf("digest (dns-01):   %s\n", keys.KeyAuthDigest(signer, *token))
}

func newKeyCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("newKey", flag.ContinueOnError)
	name := fs.String("name", "", "name for the new certificate key")
	if !parseFlags(c, fs) {
		return
	}

	if _, err := getClient(c).NewCertificateKey(*name); err != nil {
		c.Printf("newKey: %v\n", err)
		return
	}
	c.Printf("generated certificate key %q\n", *name)
}

func newCertCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("newCert", flag.ContinueOnError)
	names := fs.String("names", "", "comma separated DNS names for the certificate")
	keyName := fs.String("key", "", "name of the certificate key, generated when absent")
	if !parseFlags(c, fs) {
		return
	}
	if *names == "" {
		c.Println("a -names value is required")
		return
	}
	dnsNames := strings.Split(*names, ",")

	client := getClient(c)
	name := *keyName
	if name == "" {
		name = dnsNames[0]
	}
	signer := client.Keys[name]
	if signer == nil {
		var err error
		signer, err = client.NewCertificateKey(name)
		if err != nil {
			c.Printf("newCert: %v\n", err)
			return
		}
		c.Printf("generated certificate key %q\n", name)
	}

	csrDER, err := acmeclient.CSR(signer, dnsNames)
	if err != nil {
		c.Printf("newCert: %v\n", err)
		return
	}
	certReq, err := client.RequestCertificate(csrDER)
	if err != nil {
		c.Printf("newCert: %v\n", err)
		return
	}
	getCertReqBox(c).req = certReq
	printCertReq(c, certReq)
}

func getCertCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("getCert", flag.ContinueOnError)
	rootURL := fs.Bool("rootURL", false, "rewrite the certificate URI host to the root URL's")
	if !parseFlags(c, fs) {
		return
	}
	certReq := getCertReqBox(c).req
	if certReq == nil {
		c.Println("no pending certificate request, run newCert first")
		return
	}
	if !certReq.RetryAfter.IsZero() {
		if wait := time.Until(certReq.RetryAfter); wait > 0 {
			c.Printf("waiting %s for the server's Retry-After\n", wait.Round(time.Second))
			time.Sleep(wait)
		}
	}

	if err := getClient(c).RefreshCertificateRequest(certReq, *rootURL); err != nil {
		c.Printf("getCert: %v\n", err)
		return
	}
	printCertReq(c, certReq)
}

func printCertReq(c *ishell.Context, certReq *resources.CertificateRequest) {
	c.Printf("certificate %s\n", certReq.URI)
	if certReq.Issued() {
		c.Printf("  issued, %d base64 bytes\n", len(certReq.CertificateContent))
		if issuer := certReq.IssuerCertURI(); issuer != "" {
			c.Printf("  issuer certificate: %s\n", issuer)
		}
		return
	}
	c.Printf("  pending (status %d)\n", certReq.StatusCode)
	if !certReq.RetryAfter.IsZero() {
		c.Printf("  retry after %s\n", certReq.RetryAfter.Format(time.RFC3339))
	}
}

func saveCertCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("saveCert", flag.ContinueOnError)
	path := fs.String("path", "cert.pem", "file to write the PEM certificate to")
	if !parseFlags(c, fs) {
		return
	}
	certReq := getCertReqBox(c).req
	if certReq == nil || !certReq.Issued() {
		c.Println("no issued certificate, run newCert and getCert first")
		return
	}

	der, err := jws.Base64URLDecode(certReq.CertificateContent)
	if err != nil {
		c.Printf("saveCert: %v\n", err)
		return
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(*path, pemBytes, 0644); err != nil {
		c.Printf("saveCert: %v\n", err)
		return
	}
	c.Printf("wrote certificate to %s\n", *path)
}

func revokeCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	reason := fs.Int("reason", acme.ReasonUnspecified, "RFC 5280 revocation reason code")
	if !parseFlags(c, fs) {
		return
	}
	certReq := getCertReqBox(c).req
	if certReq == nil || !certReq.Issued() {
		c.Println("no issued certificate to revoke")
		return
	}

	der, err := jws.Base64URLDecode(certReq.CertificateContent)
	if err != nil {
		c.Printf("revoke: %v\n", err)
		return
	}
	if err := getClient(c).RevokeCertificate(der, *reason); err != nil {
		c.Printf("revoke: %v\n", err)
		return
	}
	c.Println("certificate revoked")
}

func saveProfileCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("saveProfile", flag.ContinueOnError)
	path := fs.String("path", "acmevault.profile.json", "file to save the profile to")
	if !parseFlags(c, fs) {
		return
	}

	if err := getClient(c).SaveProfile(*path); err != nil {
		c.Printf("saveProfile: %v\n", err)
		return
	}
	c.Printf("saved profile to %s\n", *path)
}

func loadProfileCmd(c *ishell.Context) {
	fs := flag.NewFlagSet("loadProfile", flag.ContinueOnError)
	path := fs.String("path", "acmevault.profile.json", "file to load the profile from")
	if !parseFlags(c, fs) {
		return
	}

	client := getClient(c)
	if err := client.RestoreProfile(*path); err != nil {
		c.Printf("loadProfile: %v\n", err)
		return
	}
	c.Printf("restored account %s\n", client.Registration)
}

func handlersCmd(c *ishell.Context) {
	for _, name := range handlers.Supported() {
		c.Println(name)
	}
}
