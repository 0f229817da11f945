package security

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, expiresAt, errGen := GenerateSessionToken("s3cret", "u-1", "chefe@pac.org", time.Hour)
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %s", expiresAt)
	}

	claims, errParse := ParseSessionToken("s3cret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.UserID != "u-1" || claims.Email != "chefe@pac.org" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, errWrong := ParseSessionToken("other", token); !errors.Is(errWrong, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errWrong)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, _, errGen := GenerateSessionToken("s3cret", "u-1", "a@b.c", -time.Minute)
	if errGen != nil {
		t.Fatalf("generate: %v", errGen)
	}
	if _, errParse := ParseSessionToken("s3cret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestStepUpTokenIsNotASessionAndViceVersa(t *testing.T) {
	stepUp, _, errGen := GenerateStepUpToken("s3cret", "u-1", time.Minute)
	if errGen != nil {
		t.Fatalf("generate step-up: %v", errGen)
	}
	claims, errParse := ParseStepUpToken("s3cret", stepUp)
	if errParse != nil {
		t.Fatalf("parse step-up: %v", errParse)
	}
	if claims.UserID != "u-1" {
		t.Fatalf("unexpected step-up subject %q", claims.UserID)
	}

	session, _, errSession := GenerateSessionToken("s3cret", "u-1", "a@b.c", time.Minute)
	if errSession != nil {
		t.Fatalf("generate session: %v", errSession)
	}
	if _, errAud := ParseStepUpToken("s3cret", session); !errors.Is(errAud, ErrInvalidToken) {
		t.Fatalf("expected session token to be rejected as step-up, got %v", errAud)
	}
	if _, errAud := ParseSessionToken("s3cret", stepUp); !errors.Is(errAud, ErrInvalidToken) {
		t.Fatalf("expected step-up token to be rejected as session, got %v", errAud)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, errHash := HashPassword("senha-forte")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if !CheckPassword(hash, "senha-forte") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "senha-fraca") {
		t.Fatal("expected mismatch")
	}
	if CheckPassword("", "anything") {
		t.Fatal("expected empty hash to fail")
	}
}
