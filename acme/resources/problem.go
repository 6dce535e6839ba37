package resources

import "fmt"

// Problem is a struct representing a problem document from the server.
// Problem documents are served with the "application/problem+json" content
// type and carry a type URN (e.g. "urn:acme:error:unauthorized") alongside
// a human readable detail message.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

// String returns a one line "type: detail" rendering of the problem.
func (p Problem) String() string {
	if p.Type == "" {
		return p.Detail
	}
	return fmt.Sprintf("%s: %s", p.Type, p.Detail)
}
