package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

const testSecret = "owm-api-key-12345"

func TestSecretString_String(t *testing.T) {
	s := SecretString(testSecret)

	result := s.String()

	if result != redactedPlaceholder {
		t.Errorf("String() = %q, want %q", result, redactedPlaceholder)
	}
	if strings.Contains(result, testSecret) {
		t.Errorf("String() leaked the raw secret value")
	}
}

func TestSecretString_Sprintf(t *testing.T) {
	s := SecretString(testSecret)

	// %s uses the String() method via the fmt.Stringer interface.
	result := fmt.Sprintf("appid=%s", s)

	if strings.Contains(result, testSecret) {
		t.Errorf("fmt.Sprintf(%%s) leaked the raw secret: %s", result)
	}
	expected := "appid=" + redactedPlaceholder
	if result != expected {
		t.Errorf("fmt.Sprintf(%%s) = %q, want %q", result, expected)
	}
}

func TestSecretString_MarshalJSON(t *testing.T) {
	payload := struct {
		APIKey SecretString `json:"api_key"`
		City   string       `json:"city"`
	}{
		APIKey: SecretString(testSecret),
		City:   "Lisbon",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	if strings.Contains(string(data), testSecret) {
		t.Errorf("JSON output leaked the raw secret: %s", data)
	}
	if !strings.Contains(string(data), redactedPlaceholder) {
		t.Errorf("JSON output missing redaction placeholder: %s", data)
	}
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString(testSecret)

	if s.Unmask() != testSecret {
		t.Errorf("Unmask() = %q, want %q", s.Unmask(), testSecret)
	}
}

func TestSecretString_Empty(t *testing.T) {
	s := SecretString("")

	// Even an empty secret renders as redacted; callers check emptiness
	// via Unmask.
	if s.String() != redactedPlaceholder {
		t.Errorf("String() on empty secret = %q, want %q", s.String(), redactedPlaceholder)
	}
	if s.Unmask() != "" {
		t.Errorf("Unmask() on empty secret = %q, want empty", s.Unmask())
	}
}
