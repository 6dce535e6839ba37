package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/acmevault/acmevault/acme"
)

// GetDirectory fetches the server's directory, a JSON map from resource
// names ("new-reg", "new-authz", "new-cert", "revoke-cert") to endpoint
// URLs.
//
// When saveRelative is true the stored endpoints keep only the path and
// query of each advertised URL; they are resolved against the client's root
// URL at use time. This supports servers that advertise a public hostname
// different from the address the client dials, e.g. a test server behind a
// port forward.
func (c *Client) GetDirectory(saveRelative bool) (map[string]string, error) {
	op := "getDirectory"
	if err := c.requireInitialized(op); err != nil {
		return nil, err
	}
	resp, err := c.get(op, c.RootURL.String())
	if err != nil {
		return nil, err
	}
	if resp.Response.StatusCode != http.StatusOK {
		return nil, c.serverError(op, resp)
	}

	// Non-string values (like a "meta" object) are not endpoints and are
	// skipped.
	var raw map[string]interface{}
	if err := json.Unmarshal(resp.RespBody, &raw); err != nil {
		return nil, ProtocolError{
			Op:       op,
			Reason:   fmt.Sprintf("directory body was not valid JSON: %v", err),
			Response: resp,
		}
	}
	directory := map[string]string{}
	for name, value := range raw {
		endpoint, ok := value.(string)
		if !ok {
			continue
		}
		if saveRelative {
			parsed, err := url.Parse(endpoint)
			if err != nil {
				return nil, ProtocolError{
					Op:       op,
					Reason:   fmt.Sprintf("directory endpoint %q is not a valid URL: %v", endpoint, err),
					Response: resp,
				}
			}
			relative := &url.URL{Path: parsed.Path, RawQuery: parsed.RawQuery}
			endpoint = relative.String()
		}
		directory[name] = endpoint
	}

	c.directory = directory
	return directory, nil
}

// endpointURL returns the absolute URL for the named directory resource,
// fetching the directory first if it has not been fetched yet.
func (c *Client) endpointURL(op, resource string) (string, error) {
	if c.directory == nil {
		if _, err := c.GetDirectory(false); err != nil {
			return "", err
		}
	}
	endpoint, ok := c.directory[resource]
	if !ok {
		return "", ProtocolError{
			Op:     op,
			Reason: fmt.Sprintf("server directory has no %q endpoint", resource),
		}
	}
	return c.resolveURL(endpoint)
}

// directoryResources lists the endpoint names a well-formed directory is
// expected to advertise.
var directoryResources = []string{
	acme.NEW_REG_RESOURCE,
	acme.NEW_AUTHZ_RESOURCE,
	acme.NEW_CERT_RESOURCE,
	acme.REVOKE_CERT_RESOURCE,
}
