package constants

import (
	"fmt"
	"strings"
)

// SubmissionStatus is the internal status of a worker's submission. Only
// StatusApproved submissions are eligible for auditing.
type SubmissionStatus string

const (
	StatusOpen      SubmissionStatus = "open"
	StatusSubmitted SubmissionStatus = "submitted"
	StatusApproved  SubmissionStatus = "approved"
	StatusRejected  SubmissionStatus = "rejected"
	StatusError     SubmissionStatus = "error"
	StatusExpired   SubmissionStatus = "expired"
)

// ErrUnknownStatus reports a marketplace status string with no internal mapping.
type ErrUnknownStatus struct {
	Value string
}

func (e *ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown submission status %q", e.Value)
}

// ParseSubmissionStatus maps the marketplace's status strings onto the internal
// enum. Unrecognized input is an error, never a silent default.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	switch s {
	case "Open":
		return StatusOpen, nil
	case "Submitted":
		return StatusSubmitted, nil
	case "Approved":
		return StatusApproved, nil
	case "Rejected":
		return StatusRejected, nil
	case "Expired":
		return StatusExpired, nil
	default:
		return "", &ErrUnknownStatus{Value: s}
	}
}

// AuditStatus is the payment verdict of an audit.
type AuditStatus string

const (
	AuditUnpaid          AuditStatus = "unpaid"
	AuditPaid            AuditStatus = "paid"
	AuditNoPaymentNeeded AuditStatus = "no_payment_needed"
)

// Environment separates the marketplace's sandbox and production universes.
// They never share an estimate, an audit selection, or an idempotency token.
type Environment string

const (
	EnvSandbox    Environment = "sandbox"
	EnvProduction Environment = "production"
)

// Environments lists the passes a batch run performs, in order.
var Environments = []Environment{EnvSandbox, EnvProduction}

// EnvironmentFromHost classifies a marketplace host string.
func EnvironmentFromHost(host string) Environment {
	if strings.Contains(host, "sandbox") {
		return EnvSandbox
	}
	return EnvProduction
}
