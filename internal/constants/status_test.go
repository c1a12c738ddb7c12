package constants

import (
	"errors"
	"testing"
)

func TestParseSubmissionStatus(t *testing.T) {
	cases := map[string]SubmissionStatus{
		"Open":      StatusOpen,
		"Submitted": StatusSubmitted,
		"Approved":  StatusApproved,
		"Rejected":  StatusRejected,
		"Expired":   StatusExpired,
	}

	for raw, want := range cases {
		got, err := ParseSubmissionStatus(raw)
		if err != nil {
			t.Errorf("%s: unexpected error %v", raw, err)
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", raw, want, got)
		}
	}
}

func TestParseSubmissionStatus_UnknownFailsLoudly(t *testing.T) {
	_, err := ParseSubmissionStatus("Reviewable")
	if err == nil {
		t.Fatal("expected an error for an unknown status")
	}

	var unknown *ErrUnknownStatus
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if unknown.Value != "Reviewable" {
		t.Errorf("expected the offending value to be carried, got %q", unknown.Value)
	}
}

func TestEnvironmentFromHost(t *testing.T) {
	if env := EnvironmentFromHost("https://workersandbox.example.com"); env != EnvSandbox {
		t.Errorf("expected sandbox, got %s", env)
	}
	if env := EnvironmentFromHost("https://marketplace.example.com"); env != EnvProduction {
		t.Errorf("expected production, got %s", env)
	}
}
