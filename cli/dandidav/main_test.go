package main

import "testing"

func TestValidateCLIAcceptsHTTPURL(t *testing.T) {
	cli.APIURL = "https://api.dandiarchive.org/api"
	cli.Port = 8080
	if err := validateCLI(); err != nil {
		t.Errorf("validateCLI() error = %v, want nil", err)
	}
}

func TestValidateCLIRejectsNonHTTPScheme(t *testing.T) {
	cli.APIURL = "ftp://api.dandiarchive.org/api"
	cli.Port = 8080
	if err := validateCLI(); err == nil {
		t.Errorf("validateCLI() error = nil, want error for ftp scheme")
	}
}

func TestValidateCLIRejectsPortOutOfRange(t *testing.T) {
	cli.APIURL = "https://api.dandiarchive.org/api"
	cli.Port = -1
	if err := validateCLI(); err == nil {
		t.Errorf("validateCLI() error = nil, want error for negative port")
	}

	cli.Port = 70000
	if err := validateCLI(); err == nil {
		t.Errorf("validateCLI() error = nil, want error for port > 65535")
	}
}
