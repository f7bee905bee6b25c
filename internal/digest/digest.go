package digest

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Challenge holds the parsed attributes of a WWW-Authenticate Digest header.
// The map is keyed by lowercased attribute name (realm, nonce, opaque, qop).
type Challenge map[string]string

// Credential records what Authorize computed for one request attempt.
type Credential struct {
	// Username echoed into the Authorization header
	Username string

	// Response is the final MD5 response digest
	Response string

	// NonceCount is the 8-digit zero-padded decimal nc value used
	NonceCount string

	// ClientNonce is the hex-encoded random cnonce used
	ClientNonce string
}

// Authenticator computes Digest credentials for one control operation.
// The nonce counter is per-instance and monotonic: create a fresh
// Authenticator for each operation and discard it afterwards. A single
// instance is legitimately shared across the sequential requests within
// one operation.
type Authenticator struct {
	Username string
	Password string

	nc int
}

// NewAuthenticator creates an Authenticator for the given panel credentials.
func NewAuthenticator(username, password string) *Authenticator {
	return &Authenticator{
		Username: username,
		Password: password,
	}
}

// ParseChallenge tokenizes a WWW-Authenticate header value into a Challenge.
// The parser is deliberately tolerant: it accepts quoted and unquoted
// attribute values, escaped quotes inside quoted values, and arbitrary
// spacing around commas. An absent or unparseable header yields an empty
// Challenge rather than an error; callers must treat a challenge missing
// nonce or realm as an authentication failure.
func ParseChallenge(header string) Challenge {
	challenge := make(Challenge)

	header = strings.TrimSpace(header)
	if header == "" {
		return challenge
	}

	// Strip the scheme prefix if present
	if len(header) >= 6 && strings.EqualFold(header[:6], "Digest") {
		header = strings.TrimSpace(header[6:])
	}

	i := 0
	for i < len(header) {
		// Skip separators between attributes
		for i < len(header) && (header[i] == ',' || header[i] == ' ' || header[i] == '\t') {
			i++
		}
		if i >= len(header) {
			break
		}

		// Attribute name up to '='
		start := i
		for i < len(header) && header[i] != '=' && header[i] != ',' {
			i++
		}
		if i >= len(header) || header[i] != '=' {
			// Bare token without a value - skip it
			continue
		}
		key := strings.ToLower(strings.TrimSpace(header[start:i]))
		i++ // consume '='

		var value string
		if i < len(header) && header[i] == '"' {
			// Quoted value, honoring backslash escapes
			i++
			var sb strings.Builder
			for i < len(header) {
				c := header[i]
				if c == '\\' && i+1 < len(header) {
					sb.WriteByte(header[i+1])
					i += 2
					continue
				}
				if c == '"' {
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			value = sb.String()
		} else {
			// Unquoted value up to the next comma
			start = i
			for i < len(header) && header[i] != ',' {
				i++
			}
			value = strings.TrimSpace(header[start:i])
		}

		if key != "" {
			challenge[key] = value
		}
	}

	return challenge
}

// Authorize computes the Authorization header value for one request attempt.
// It returns an error when the challenge lacks the nonce or realm attributes;
// a credential with an undefined nonce must never be produced.
//
// Side effect: the per-instance nonce counter is incremented on every call,
// including across the two sequential requests of one operation. The counter
// is never reset between steps since some panels reject a reused nonce/nc
// pair.
func (a *Authenticator) Authorize(challenge Challenge, method, uri string) (string, Credential, error) {
	realm, hasRealm := challenge["realm"]
	nonce, hasNonce := challenge["nonce"]
	if !hasRealm || !hasNonce || nonce == "" {
		return "", Credential{}, fmt.Errorf("digest challenge missing realm or nonce")
	}

	a.nc++
	nc := fmt.Sprintf("%08d", a.nc)
	cnonce := randomNonce(8)

	ha1 := md5hex(a.Username + ":" + realm + ":" + a.Password)
	ha2 := md5hex(method + ":" + uri)
	response := md5hex(strings.Join([]string{ha1, nonce, nc, cnonce, "auth", ha2}, ":"))

	// Attribute order matters: the target panels have been observed to
	// reject headers with attributes in any other order.
	var sb strings.Builder
	fmt.Fprintf(&sb, `Digest username="%s", realm="%s", nonce="%s", uri="%s", qop=auth, nc=%s, cnonce="%s", response="%s"`,
		a.Username, realm, nonce, uri, nc, cnonce, response)
	if opaque, ok := challenge["opaque"]; ok && opaque != "" {
		fmt.Fprintf(&sb, `, opaque="%s"`, opaque)
	}

	cred := Credential{
		Username:    a.Username,
		Response:    response,
		NonceCount:  nc,
		ClientNonce: cnonce,
	}
	return sb.String(), cred, nil
}

// NonceCount returns the number of credentials generated so far.
func (a *Authenticator) NonceCount() int {
	return a.nc
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// randomNonce returns size random bytes as a hex string.
func randomNonce(size int) string {
	b := make([]byte, size)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
