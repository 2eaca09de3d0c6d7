package util

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	version := GetVersion()

	if version == "" {
		t.Error("Version should not be empty")
	}

	// Version should match semantic versioning pattern (e.g., "1.2.2")
	hasDigit := false
	hasDot := false
	for _, char := range version {
		if char >= '0' && char <= '9' {
			hasDigit = true
		}
		if char == '.' {
			hasDot = true
		}
	}

	if !hasDigit {
		t.Error("Version should contain at least one digit")
	}
	if !hasDot {
		t.Error("Version should contain at least one dot (semantic versioning)")
	}
}

func TestGetNameAndVersion(t *testing.T) {
	result := GetNameAndVersion()
	expected := fmt.Sprintf("mammut / %s", GetVersion())

	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestPrettyPrint(t *testing.T) {
	input := struct {
		Name  string
		Count int
	}{Name: "test", Count: 3}

	result := PrettyPrint(input)

	if !strings.Contains(result, `"Name": "test"`) {
		t.Errorf("Expected indented JSON with Name field, got %s", result)
	}
	if !strings.Contains(result, `"Count": 3`) {
		t.Errorf("Expected indented JSON with Count field, got %s", result)
	}
}

func TestGeneratePemKeypair(t *testing.T) {
	keypair := GeneratePemKeypair()

	if keypair == nil {
		t.Fatal("GeneratePemKeypair returned nil")
	}

	// Private key must be a parseable PKCS#8 block
	block, _ := pem.Decode([]byte(keypair.Private))
	if block == nil {
		t.Fatal("Private key is not valid PEM")
	}
	if block.Type != "PRIVATE KEY" {
		t.Errorf("Expected PKCS#8 'PRIVATE KEY' block, got %s", block.Type)
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err != nil {
		t.Errorf("Private key should parse as PKCS#8: %v", err)
	}

	// Public key must be a parseable PKIX block
	pubBlock, _ := pem.Decode([]byte(keypair.Public))
	if pubBlock == nil {
		t.Fatal("Public key is not valid PEM")
	}
	if pubBlock.Type != "PUBLIC KEY" {
		t.Errorf("Expected PKIX 'PUBLIC KEY' block, got %s", pubBlock.Type)
	}
	if _, err := x509.ParsePKIXPublicKey(pubBlock.Bytes); err != nil {
		t.Errorf("Public key should parse as PKIX: %v", err)
	}
}

func TestMarkdownLinksToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single link",
			input:    "see [example](https://example.com)",
			expected: `see <a href="https://example.com" target="_blank" rel="noopener noreferrer">example</a>`,
		},
		{
			name:     "no links",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "escapes html in link text",
			input:    "[<b>bold</b>](https://example.com)",
			expected: `<a href="https://example.com" target="_blank" rel="noopener noreferrer">&lt;b&gt;bold&lt;/b&gt;</a>`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MarkdownLinksToHTML(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestExtractMarkdownLinks(t *testing.T) {
	input := "read [one](https://one.example) and [two](https://two.example)"
	urls := ExtractMarkdownLinks(input)

	if len(urls) != 2 {
		t.Fatalf("Expected 2 urls, got %d", len(urls))
	}
	if urls[0] != "https://one.example" || urls[1] != "https://two.example" {
		t.Errorf("Expected urls in document order, got %v", urls)
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "local mention",
			input:    "hi @alice",
			expected: []string{"alice"},
		},
		{
			name:     "remote mention",
			input:    "hi @bob@remote.tld",
			expected: []string{"bob@remote.tld"},
		},
		{
			name:     "deduplicates in first-seen order",
			input:    "@alice and @bob and @alice again",
			expected: []string{"alice", "bob"},
		},
		{
			name:     "ignores mid-word at signs",
			input:    "mail me at alice@example.com",
			expected: []string{},
		},
		{
			name:     "no mentions",
			input:    "nothing here",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractMentions(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d mentions, got %d: %v", len(tt.expected), len(result), result)
			}
			for i := range tt.expected {
				if result[i] != tt.expected[i] {
					t.Errorf("Expected mention %q at %d, got %q", tt.expected[i], i, result[i])
				}
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"  https://example.com  ", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsURL(tt.input); got != tt.expected {
				t.Errorf("IsURL(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
