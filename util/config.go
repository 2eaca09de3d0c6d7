package util

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const Name = "mammut"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host            string
		HttpPort        int    `yaml:"httpPort"`
		SslDomain       string `yaml:"sslDomain"`
		WithAp          bool   `yaml:"withAp"`
		Closed          bool   `yaml:"closed"`
		NodeName        string `yaml:"nodeName"`
		NodeDescription string `yaml:"nodeDescription"`
		DefaultMagazine string `yaml:"defaultMagazine"`
		WithJournald    bool   `yaml:"withJournald"`
		WithPprof       bool   `yaml:"withPprof"`
	}
}

func ReadConf() (*AppConfig, error) {

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	return parseConf(buf)
}

// ReadConfFrom reads configuration from an explicit path. Unlike ReadConf
// there is no fallback to the embedded defaults: a path the operator named
// must exist.
func ReadConfFrom(configPath string) (*AppConfig, error) {
	buf, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}
	return parseConf(buf)
}

func parseConf(buf []byte) (*AppConfig, error) {

	c := &AppConfig{}

	err := yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("MAMMUT_HOST")
	envHttpPort := os.Getenv("MAMMUT_HTTPPORT")
	envSslDomain := os.Getenv("MAMMUT_SSLDOMAIN")
	envWithAp := os.Getenv("MAMMUT_WITH_AP")
	envClosed := os.Getenv("MAMMUT_CLOSED")
	envNodeName := os.Getenv("MAMMUT_NODENAME")
	envNodeDescription := os.Getenv("MAMMUT_NODEDESCRIPTION")
	envDefaultMagazine := os.Getenv("MAMMUT_DEFAULT_MAGAZINE")
	envWithJournald := os.Getenv("MAMMUT_WITH_JOURNALD")
	envWithPprof := os.Getenv("MAMMUT_WITH_PPROF")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envSslDomain != "" {
		c.Conf.SslDomain = envSslDomain
	}

	if envWithAp == "true" {
		c.Conf.WithAp = true
	}

	if envClosed == "true" {
		c.Conf.Closed = true
	}

	if envNodeName != "" {
		c.Conf.NodeName = envNodeName
	}

	if envNodeDescription != "" {
		c.Conf.NodeDescription = envNodeDescription
	}

	if envDefaultMagazine != "" {
		c.Conf.DefaultMagazine = envDefaultMagazine
	}

	if envWithJournald == "true" {
		c.Conf.WithJournald = true
	}

	if envWithPprof == "true" {
		c.Conf.WithPprof = true
	}

	return c, nil
}
