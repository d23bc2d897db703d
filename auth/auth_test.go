// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // raw base64url length
	}{
		{"poll id", 6, 8},
		{"option id", 8, 11},
		{"16 bytes", 16, 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			if !ValidToken(id) {
				t.Errorf("GenerateID() = %q is not URL-safe", id)
			}
			if strings.Contains(id, "=") {
				t.Error("GenerateID() contains padding characters")
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(8)
	id2, _ := GenerateID(8)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestResolveVoterID(t *testing.T) {
	existing := uuid.NewString()

	tests := []struct {
		name     string
		supplied string
		wantSame bool
	}{
		{"reuses existing token", existing, true},
		{"reuses short token", "abc_DEF-123", true},
		{"mints when empty", "", false},
		{"mints when malformed", "bad token; path=/", false},
		{"mints when too long", strings.Repeat("a", MaxTokenLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVoterID(tt.supplied)
			if tt.wantSame {
				if got != tt.supplied {
					t.Errorf("ResolveVoterID(%q) = %q, want the supplied token", tt.supplied, got)
				}
				return
			}
			if got == tt.supplied {
				t.Errorf("ResolveVoterID(%q) reused an invalid token", tt.supplied)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("ResolveVoterID() minted %q, not a UUID: %v", got, err)
			}
		})
	}

	// Minted tokens must not repeat
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := ResolveVoterID("")
		if seen[id] {
			t.Fatalf("ResolveVoterID() produced duplicate token: %s", id)
		}
		seen[id] = true
	}
}

func TestFingerprintIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"unknown sentinel", "unknown", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := FingerprintIP(tt.ip, tt.salt)

			// Should be 64 hex characters (sha256)
			if len(fp) != 64 {
				t.Errorf("FingerprintIP() length = %d, want 64", len(fp))
			}
			for _, c := range fp {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("FingerprintIP() contains invalid hex char: %c", c)
				}
			}

			if fp2 := FingerprintIP(tt.ip, tt.salt); fp != fp2 {
				t.Error("FingerprintIP() is not deterministic")
			}
			if strings.Contains(fp, tt.ip) {
				t.Error("FingerprintIP() leaks the raw address")
			}
		})
	}

	if FingerprintIP("192.168.1.1", "salt") == FingerprintIP("192.168.1.2", "salt") {
		t.Error("FingerprintIP() produced same digest for different IPs")
	}
	if FingerprintIP("192.168.1.1", "salt1") == FingerprintIP("192.168.1.1", "salt2") {
		t.Error("FingerprintIP() produced same digest for different salts")
	}
}

func TestValidToken(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"abcXYZ019", true},
		{"with-dash_and_underscore", true},
		{"has space", false},
		{"semi;colon", false},
		{"dot.ted", false},
		{"ünicode", false},
	}

	for _, tt := range tests {
		if got := ValidToken(tt.in); got != tt.want {
			t.Errorf("ValidToken(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// Benchmark tests
func BenchmarkGenerateID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateID(8)
	}
}

func BenchmarkFingerprintIP(b *testing.B) {
	for i := 0; i < b.N; i++ {
		FingerprintIP("203.0.113.7", "ip-salt")
	}
}
