package client

import (
	"strings"

	"github.com/acmevault/acmevault/acme"
	acmenet "github.com/acmevault/acmevault/net"
)

// parseLinks collects the response's Link headers into a rel -> URIs map.
// Headers that do not follow the `<uri>;rel="relation"` shape are skipped.
func parseLinks(resp *acmenet.NetResponse) map[string][]string {
	links := map[string][]string{}
	for _, header := range resp.Response.Header.Values(acme.LINK_HEADER) {
		for _, link := range strings.Split(header, ",") {
			parts := strings.Split(link, ";")
			if len(parts) < 2 {
				continue
			}
			uri := strings.TrimSpace(parts[0])
			if !strings.HasPrefix(uri, "<") || !strings.HasSuffix(uri, ">") {
				continue
			}
			uri = strings.Trim(uri, "<>")

			for _, param := range parts[1:] {
				param = strings.TrimSpace(param)
				if !strings.HasPrefix(param, "rel=") {
					continue
				}
				rel := strings.Trim(strings.TrimPrefix(param, "rel="), `"`)
				links[rel] = append(links[rel], uri)
			}
		}
	}
	return links
}

// firstLink returns the first URI with the given relation, or an empty
// string.
func firstLink(links map[string][]string, rel string) string {
	if uris := links[rel]; len(uris) > 0 {
		return uris[0]
	}
	return ""
}
