// acmevault provides a developer-oriented command-line shell interface for
// interacting with an ACME server: account registration, identifier
// authorization, challenge handling and certificate management.
package main

import (
	"flag"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	acmeclient "github.com/acmevault/acmevault/acme/client"
	"github.com/acmevault/acmevault/acme/resources"
	"github.com/acmevault/acmevault/cmd"
	acmeshell "github.com/acmevault/acmevault/shell"
)

// envConfig supplies defaults from the environment (and an optional .env
// file); command line flags override them.
type envConfig struct {
	Directory    string `env:"ACMEVAULT_DIRECTORY" envDefault:"https://acme-staging.api.letsencrypt.org/directory"`
	CACert       string `env:"ACMEVAULT_CA"`
	Contact      string `env:"ACMEVAULT_CONTACT"`
	AutoRegister bool   `env:"ACMEVAULT_AUTOREGISTER" envDefault:"true"`
	Profile      string `env:"ACMEVAULT_PROFILE"`
	HTTPPort     int    `env:"ACMEVAULT_HTTP_PORT" envDefault:"5002"`
	DNSPort      int    `env:"ACMEVAULT_DNS_PORT" envDefault:"5252"`
}

func main() {
	// A missing .env file is fine, the environment and flags still apply.
	_ = godotenv.Load()
	var defaults envConfig
	cmd.FailOnError(env.Parse(&defaults), "parsing environment configuration")

	directory := flag.String(
		"directory",
		defaults.Directory,
		"Directory URL for ACME server")

	caCert := flag.String(
		"ca",
		defaults.CACert,
		"CA certificate(s) for verifying ACME server HTTPS")

	autoRegister := flag.Bool(
		"autoregister",
		defaults.AutoRegister,
		"Create an ACME account automatically at startup if required")

	email := flag.String(
		"contact",
		defaults.Contact,
		"Optional contact email address for auto-registered ACME account")

	profilePath := flag.String(
		"profile",
		defaults.Profile,
		"Optional JSON filepath of a saved account profile to restore")

	httpPort := flag.Int(
		"httpPort",
		defaults.HTTPPort,
		"HTTP-01 challenge server port")

	dnsPort := flag.Int(
		"dnsPort",
		defaults.DNSPort,
		"DNS-01 challenge server port")

	flag.Parse()

	config := &acmeshell.ACMEShellOptions{
		Config: acmeclient.Config{
			RootURL:      *directory,
			CACert:       *caCert,
			ContactEmail: *email,
			AutoRegister: *autoRegister,
		},
		HTTPPort: *httpPort,
		DNSPort:  *dnsPort,
	}

	if *profilePath != "" {
		profile, err := resources.RestoreProfile(*profilePath)
		cmd.FailOnError(err, "restoring account profile")
		config.Signer = profile.Signer
		config.Registration = profile.Registration
	}

	shell, err := acmeshell.NewACMEShell(config)
	cmd.FailOnError(err, "creating ACME shell")

	go cmd.CatchSignals(nil)
	shell.Run()
}
