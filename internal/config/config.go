package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AI engine modes.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // postgres | mysql
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		Mode           string `yaml:"mode"` // mock | live
		OpenAIKey      string `yaml:"openAIKey"`
		ExtractModel   string `yaml:"extractModel"`
		InterpretModel string `yaml:"interpretModel"`
	} `yaml:"ai"`
}

// Load reads config.yaml and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.AI.Mode == "" {
		cfg.AI.Mode = ModeMock
	}
	if cfg.AI.Mode != ModeMock && cfg.AI.Mode != ModeLive {
		return nil, fmt.Errorf("invalid ai.mode %q (want mock or live)", cfg.AI.Mode)
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	return &cfg, nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// MySQLDSN builds the go-sql-driver connection string. clientFoundRows makes
// RowsAffected report matched rows, so a status update that leaves the value
// unchanged is not mistaken for a missing row.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}
