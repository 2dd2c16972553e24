// Package status maps numeric transfer status codes to human-readable labels.
//
// The table covers the informational, success, redirect, client-error and
// server-error codes an API call commonly sees, plus the sentinel 0 which
// means the transfer never reached a server. Lookups are exact-match only.
package status

import "strconv"

// ConnectionFailed is the status code reported when the transport engine
// could not complete the transfer.
const ConnectionFailed = 0

var labels = map[int]string{
	ConnectionFailed: "Connection failed",
	100:              "Continue",
	101:              "Switching Protocols",
	200:              "OK",
	201:              "Created",
	202:              "Accepted",
	203:              "Non-Authoritative Information",
	204:              "No Content",
	205:              "Reset Content",
	206:              "Partial Content",
	300:              "Multiple Choices",
	301:              "Moved Permanently",
	302:              "Found",
	303:              "See Other",
	304:              "Not Modified",
	305:              "Use Proxy",
	307:              "Temporary Redirect",
	400:              "Bad Request",
	401:              "Unauthorized",
	403:              "Forbidden",
	404:              "Not Found",
	405:              "Method Not Allowed",
	406:              "Not Acceptable",
	407:              "Proxy Authentication Required",
	408:              "Request Timeout",
	409:              "Conflict",
	410:              "Gone",
	411:              "Length Required",
	412:              "Precondition Failed",
	413:              "Request Entity Too Large",
	414:              "Request URI Too Long",
	415:              "Unsupported Media Type",
	416:              "Requested Range Not Satisfiable",
	417:              "Expectation Failed",
	500:              "Internal Server Error",
	501:              "Not Implemented",
	502:              "Bad Gateway",
	503:              "Service Unavailable",
	504:              "Gateway Timeout",
	505:              "HTTP Version Not Supported",
}

// Text returns the label registered for code.
func Text(code int) (string, bool) {
	label, ok := labels[code]
	return label, ok
}

// Format returns "<code> <label>", or the bare code when no label is known.
func Format(code int) string {
	if label, ok := labels[code]; ok {
		return strconv.Itoa(code) + " " + label
	}
	return strconv.Itoa(code)
}

// Class returns the status class of code ("1xx" .. "5xx"), "failed" for the
// connection failure sentinel and "other" for anything outside 100-599.
func Class(code int) string {
	switch {
	case code == ConnectionFailed:
		return "failed"
	case code >= 100 && code < 600:
		return strconv.Itoa(code/100) + "xx"
	default:
		return "other"
	}
}
