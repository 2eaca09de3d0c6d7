package web

import (
	"encoding/json"
	"testing"
)

func TestGetWebFingerNotFound(t *testing.T) {
	result := GetWebFingerNotFound()
	expected := `{"detail":"Not Found"}`

	if result != expected {
		t.Errorf("Expected %s, got %s", expected, result)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal([]byte(result), &jsonMap); err != nil {
		t.Error("Result should be valid JSON")
	}
	if jsonMap["detail"] != "Not Found" {
		t.Error("JSON should contain 'detail' field with 'Not Found'")
	}
}
