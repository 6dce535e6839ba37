package handlers

import (
	"fmt"

	"github.com/miekg/dns"
)

// CheckTXT queries the given DNS server ("host:port") for TXT records at
// recordName and reports whether any record matches the expected value. Used
// to verify a published dns-01 proof has propagated before the answer is
// submitted.
func CheckTXT(server, recordName, expected string) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(recordName), dns.TypeTXT)
	m.RecursionDesired = true

	client := new(dns.Client)
	in, _, err := client.Exchange(m, server)
	if err != nil {
		return false, fmt.Errorf("querying %s for TXT %q: %w", server, recordName, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return false, fmt.Errorf("querying %s for TXT %q: %s", server, recordName, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		for _, value := range txt.Txt {
			if value == expected {
				return true, nil
			}
		}
	}
	return false, nil
}
