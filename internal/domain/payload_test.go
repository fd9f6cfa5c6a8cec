package domain_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/sendstack/internal/domain"
)

func TestTransientPayload_Expired(t *testing.T) {
	exp := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := domain.TransientPayload{SessionKey: "cs_1", ExpiresAt: exp}

	if p.Expired(exp.Add(-time.Second)) {
		t.Error("should not be expired before ExpiresAt")
	}
	if !p.Expired(exp) {
		t.Error("should be expired at ExpiresAt")
	}
}

func TestIntakePayload_IsEmpty(t *testing.T) {
	if !(domain.IntakePayload{}).IsEmpty() {
		t.Error("zero payload should be empty")
	}
	if !(domain.IntakePayload{DNS: &domain.DNSCredentials{}}).IsEmpty() {
		t.Error("payload with zero credentials should be empty")
	}
	p := domain.IntakePayload{Accounts: []domain.AccountIdentity{{FirstName: "Jo"}}}
	if p.IsEmpty() {
		t.Error("payload with accounts should not be empty")
	}
}
