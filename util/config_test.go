package util

import (
	"os"
	"testing"
)

func TestConfigConstants(t *testing.T) {
	if Name != "mammut" {
		t.Errorf("Expected Name 'mammut', got '%s'", Name)
	}

	if ConfigFileName != "config.yaml" {
		t.Errorf("Expected ConfigFileName 'config.yaml', got '%s'", ConfigFileName)
	}
}

func TestReadConfWithYaml(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  sslDomain: example.com
  withAp: true
  nodeName: test node
  defaultMagazine: random
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.Host != "127.0.0.1" {
		t.Errorf("Expected Host '127.0.0.1', got '%s'", config.Conf.Host)
	}

	if config.Conf.HttpPort != 9999 {
		t.Errorf("Expected HttpPort 9999, got %d", config.Conf.HttpPort)
	}

	if config.Conf.SslDomain != "example.com" {
		t.Errorf("Expected SslDomain 'example.com', got '%s'", config.Conf.SslDomain)
	}

	if !config.Conf.WithAp {
		t.Error("Expected WithAp to be true")
	}

	if config.Conf.NodeName != "test node" {
		t.Errorf("Expected NodeName 'test node', got '%s'", config.Conf.NodeName)
	}

	if config.Conf.DefaultMagazine != "random" {
		t.Errorf("Expected DefaultMagazine 'random', got '%s'", config.Conf.DefaultMagazine)
	}
}

func TestReadConfFromExplicitPath(t *testing.T) {
	yamlContent := `
conf:
  host: 0.0.0.0
  httpPort: 8181
  defaultMagazine: frontpage
`
	path := t.TempDir() + "/custom.yaml"
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	config, err := ReadConfFrom(path)
	if err != nil {
		t.Fatalf("ReadConfFrom failed: %v", err)
	}

	if config.Conf.HttpPort != 8181 {
		t.Errorf("Expected HttpPort 8181, got %d", config.Conf.HttpPort)
	}

	if config.Conf.DefaultMagazine != "frontpage" {
		t.Errorf("Expected DefaultMagazine 'frontpage', got '%s'", config.Conf.DefaultMagazine)
	}

	// A named path that does not exist is an error, not a silent fallback
	if _, err := ReadConfFrom(path + ".missing"); err == nil {
		t.Error("Expected error for missing explicit config path")
	}
}

func TestReadConfWithEnvOverrides(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  sslDomain: example.com
  withAp: false
  defaultMagazine: random
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	os.Setenv("MAMMUT_HOST", "192.168.1.1")
	os.Setenv("MAMMUT_HTTPPORT", "8080")
	os.Setenv("MAMMUT_SSLDOMAIN", "test.example.com")
	os.Setenv("MAMMUT_WITH_AP", "true")
	os.Setenv("MAMMUT_DEFAULT_MAGAZINE", "frontpage")
	defer func() {
		os.Unsetenv("MAMMUT_HOST")
		os.Unsetenv("MAMMUT_HTTPPORT")
		os.Unsetenv("MAMMUT_SSLDOMAIN")
		os.Unsetenv("MAMMUT_WITH_AP")
		os.Unsetenv("MAMMUT_DEFAULT_MAGAZINE")
	}()

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.Host != "192.168.1.1" {
		t.Errorf("Expected env override Host '192.168.1.1', got '%s'", config.Conf.Host)
	}

	if config.Conf.HttpPort != 8080 {
		t.Errorf("Expected env override HttpPort 8080, got %d", config.Conf.HttpPort)
	}

	if config.Conf.SslDomain != "test.example.com" {
		t.Errorf("Expected env override SslDomain 'test.example.com', got '%s'", config.Conf.SslDomain)
	}

	if !config.Conf.WithAp {
		t.Error("Expected env override WithAp to be true")
	}

	if config.Conf.DefaultMagazine != "frontpage" {
		t.Errorf("Expected env override DefaultMagazine 'frontpage', got '%s'", config.Conf.DefaultMagazine)
	}
}
