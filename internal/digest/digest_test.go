package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

func TestParseChallenge_QuotedAndUnquoted(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected Challenge
	}{
		{
			name:   "typical panel challenge",
			header: `Digest qop="auth", realm="DS-K1T341", nonce="4e6f6e63653a313233"`,
			expected: Challenge{
				"qop":   "auth",
				"realm": "DS-K1T341",
				"nonce": "4e6f6e63653a313233",
			},
		},
		{
			name:   "unquoted values",
			header: `Digest realm=panel, nonce=abc123, qop=auth`,
			expected: Challenge{
				"realm": "panel",
				"nonce": "abc123",
				"qop":   "auth",
			},
		},
		{
			name:   "loose spacing around commas",
			header: `Digest realm="R" ,  nonce="N",qop=auth`,
			expected: Challenge{
				"realm": "R",
				"nonce": "N",
				"qop":   "auth",
			},
		},
		{
			name:   "escaped quote inside quoted value",
			header: `Digest realm="door \"one\"", nonce="N"`,
			expected: Challenge{
				"realm": `door "one"`,
				"nonce": "N",
			},
		},
		{
			name:   "opaque carried through",
			header: `Digest realm="R", nonce="N", opaque="5ccc069c"`,
			expected: Challenge{
				"realm":  "R",
				"nonce":  "N",
				"opaque": "5ccc069c",
			},
		},
		{
			name:     "empty header",
			header:   "",
			expected: Challenge{},
		},
		{
			name:     "garbage header",
			header:   "Bearer sometoken",
			expected: Challenge{"bearer sometoken": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseChallenge(tt.header)
			for k, want := range tt.expected {
				if k == "bearer sometoken" {
					continue // non-digest input just must not panic
				}
				if got[k] != want {
					t.Errorf("ParseChallenge()[%q] = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestParseChallenge_AbsentHeaderIsEmptyNotError(t *testing.T) {
	got := ParseChallenge("")
	if len(got) != 0 {
		t.Errorf("ParseChallenge(\"\") = %v, want empty map", got)
	}
}

func TestAuthorize_MissingNonceOrRealm(t *testing.T) {
	tests := []struct {
		name      string
		challenge Challenge
	}{
		{name: "missing nonce", challenge: Challenge{"realm": "R"}},
		{name: "missing realm", challenge: Challenge{"nonce": "N"}},
		{name: "empty nonce", challenge: Challenge{"realm": "R", "nonce": ""}},
		{name: "empty challenge", challenge: Challenge{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthenticator("admin", "secret")
			_, _, err := auth.Authorize(tt.challenge, "PUT", "/ISAPI/AccessControl/Door/param/1")
			if err == nil {
				t.Error("Authorize() should fail for incomplete challenge")
			}
		})
	}
}

func TestAuthorize_NonceCountIncrements(t *testing.T) {
	auth := NewAuthenticator("admin", "secret")
	challenge := Challenge{"realm": "R", "nonce": "N", "qop": "auth"}

	for i := 1; i <= 3; i++ {
		_, cred, err := auth.Authorize(challenge, "PUT", "/x")
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		want := fmt.Sprintf("%08d", i)
		if cred.NonceCount != want {
			t.Errorf("call %d: NonceCount = %s, want %s", i, cred.NonceCount, want)
		}
	}

	if auth.NonceCount() != 3 {
		t.Errorf("NonceCount() = %d, want 3", auth.NonceCount())
	}
}

func TestAuthorize_FirstCallIsOne(t *testing.T) {
	auth := NewAuthenticator("admin", "secret")
	header, cred, err := auth.Authorize(Challenge{"realm": "R", "nonce": "N"}, "PUT", "/x")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if cred.NonceCount != "00000001" {
		t.Errorf("NonceCount = %s, want 00000001", cred.NonceCount)
	}
	if !strings.Contains(header, "nc=00000001") {
		t.Errorf("header missing nc=00000001: %s", header)
	}
}

func TestAuthorize_ResponseDigest(t *testing.T) {
	auth := NewAuthenticator("admin", "12345")
	challenge := Challenge{"realm": "DS-K1T341", "nonce": "abcdef"}

	_, cred, err := auth.Authorize(challenge, "PUT", "/ISAPI/AccessControl/Door/param/1")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	// Recompute the expected response with the cnonce the call generated
	ha1 := md5String("admin:DS-K1T341:12345")
	ha2 := md5String("PUT:/ISAPI/AccessControl/Door/param/1")
	want := md5String(ha1 + ":abcdef:00000001:" + cred.ClientNonce + ":auth:" + ha2)

	if cred.Response != want {
		t.Errorf("Response = %s, want %s", cred.Response, want)
	}
}

func TestAuthorize_HeaderAttributeOrder(t *testing.T) {
	auth := NewAuthenticator("admin", "secret")
	header, _, err := auth.Authorize(Challenge{"realm": "R", "nonce": "N"}, "PUT", "/door/1")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	// The panels require this exact attribute ordering
	order := []string{"username=", "realm=", "nonce=", "uri=", "qop=auth", "nc=", "cnonce=", "response="}
	pos := -1
	for _, attr := range order {
		idx := strings.Index(header, attr)
		if idx < 0 {
			t.Fatalf("header missing %q: %s", attr, header)
		}
		if idx < pos {
			t.Errorf("attribute %q out of order in header: %s", attr, header)
		}
		pos = idx
	}

	if !strings.HasPrefix(header, "Digest ") {
		t.Errorf("header should start with Digest scheme: %s", header)
	}
	if strings.Contains(header, `qop="auth"`) {
		t.Errorf("qop must be unquoted: %s", header)
	}
}

func TestAuthorize_OpaqueAppended(t *testing.T) {
	auth := NewAuthenticator("admin", "secret")
	header, _, err := auth.Authorize(Challenge{"realm": "R", "nonce": "N", "opaque": "xyz"}, "GET", "/")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !strings.HasSuffix(header, `opaque="xyz"`) {
		t.Errorf("opaque should be the final attribute: %s", header)
	}
}

func TestAuthorize_FreshClientNoncePerCall(t *testing.T) {
	auth := NewAuthenticator("admin", "secret")
	challenge := Challenge{"realm": "R", "nonce": "N"}

	_, first, _ := auth.Authorize(challenge, "PUT", "/x")
	_, second, _ := auth.Authorize(challenge, "PUT", "/x")

	if first.ClientNonce == second.ClientNonce {
		t.Error("cnonce must be freshly generated per call")
	}
	if len(first.ClientNonce) != 16 {
		t.Errorf("cnonce = %q, want 16 hex chars (8 bytes)", first.ClientNonce)
	}
}

func md5String(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
