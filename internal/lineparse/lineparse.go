// Package lineparse pulls the request path and $request_time out of a line in
// the ui_short nginx format:
//
//	$remote_addr  $remote_user $http_x_real_ip [$time_local] "$request"
//	$status $body_bytes_sent "$http_referer" "$http_user_agent"
//	"$http_x_forwarded_for" "$http_X_REQUEST_ID" "$http_X_RB_USER"
//	$request_time
package lineparse

import (
	"strconv"
	"strings"
)

// Request is the part of a log line the report cares about.
type Request struct {
	URL      string
	Duration float64
}

// ParseLine returns the request target and duration of raw. ok is false for a
// malformed line: no quoted request with a method and a non-empty path, or no trailing
// decimal number (digits '.' digits; integers do not qualify).
func ParseLine(raw string) (req Request, ok bool) {
	line := strings.TrimRight(raw, " \t\r\n")

	url, ok := requestTarget(line)
	if !ok {
		return Request{}, false
	}
	d, ok := trailingDuration(line)
	if !ok {
		return Request{}, false
	}
	return Request{URL: url, Duration: d}, true
}

// requestTarget returns the second space-separated token of the first quoted
// field. An empty token (two spaces in a row) does not count as a path.
func requestTarget(line string) (string, bool) {
	open := strings.IndexByte(line, '"')
	if open < 0 {
		return "", false
	}
	n := strings.IndexByte(line[open+1:], '"')
	if n < 0 {
		return "", false
	}
	parts := strings.Split(line[open+1:open+1+n], " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func trailingDuration(line string) (float64, bool) {
	i := strings.LastIndexAny(line, " \t")
	tok := line[i+1:]
	if i < 0 || !isDecimal(tok) {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDecimal(s string) bool {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	return allDigits(s[:dot]) && allDigits(s[dot+1:])
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
