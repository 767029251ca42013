package config

import "testing"

func TestCheckConfigEnvFields(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{
		Port:         "8080",
		DatabaseUrl:  "postgres://localhost/test",
		JwtSecretKey: "secret",
		AWSRegion:    "us-east-1",
		S3Bucket:     "bucket",
	}}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		t.Errorf("fully populated config rejected: %v", err)
	}

	// Optional AWS credentials may be empty (instance roles)
	cfg.EnvVars.AWSAccessKeyID = ""
	cfg.EnvVars.AWSSecretAccessKey = ""
	if err := cfg.CheckConfigEnvFields(); err != nil {
		t.Errorf("optional fields should not be required: %v", err)
	}

	cfg.EnvVars.JwtSecretKey = ""
	if err := cfg.CheckConfigEnvFields(); err == nil {
		t.Error("missing JwtSecretKey accepted")
	}
}
