/*
Package server implements the user_suggest HTTP endpoint over a user directory.

It is the counterpart of the suggest package's HTTPFetcher and is meant for
development and tests: point the widget's base_url at it and type away.

# Endpoint

	GET /user_suggest?prefix=ali
	GET /user_suggest/?prefix=ali
	GET /api/v1/user_suggest/?prefix=ali

The /api/v1 routes match the default client base_url.

Prefixes shorter than the configured minimum get an empty list. Otherwise the
first names (lexical order, at most the configured limit) that start with the
prefix are returned, case-sensitive:

	["ali","alibaba","alice","alicia"]

JSON is the default encoding. Clients sending

	Accept: application/msgpack

get the same list as a msgpack array of strings.

	GET /health

answers {"status":"ok","users":<count>,"requests":<count>}.
*/
package server

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Users    int    `json:"users"`
	Requests int64  `json:"requests"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
