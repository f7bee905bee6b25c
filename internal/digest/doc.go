// Package digest implements the client side of HTTP Digest authentication
// (RFC 2617 auth scheme) as spoken by ISAPI access-control panels.
//
// The package is pure computation over supplied strings: it parses a
// WWW-Authenticate challenge and produces an Authorization header value.
// Retry and network behavior live in the transport layer.
//
// The target panels do not negotiate an algorithm and expect classic MD5
// with qop=auth, an exact attribute ordering, and a zero-padded decimal
// nonce count. See Authenticator.Authorize for the details.
package digest
