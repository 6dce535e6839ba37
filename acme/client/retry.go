package client

import (
	"net/http"
	"strconv"
	"time"

	"github.com/acmevault/acmevault/acme"
	acmenet "github.com/acmevault/acmevault/net"
)

// parseRetryAfter normalizes the response's Retry-After header to an
// absolute time. The header is either delta-seconds or an HTTP-date. A
// missing or malformed header yields the zero time.
func parseRetryAfter(resp *acmenet.NetResponse) time.Time {
	header := resp.Response.Header.Get(acme.RETRY_AFTER_HEADER)
	if header == "" {
		return time.Time{}
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Now().Add(time.Duration(seconds) * time.Second)
	}
	if when, err := http.ParseTime(header); err == nil {
		return when
	}
	return time.Time{}
}
