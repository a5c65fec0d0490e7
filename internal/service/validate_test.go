package service

import (
	"strings"
	"testing"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateOK(t *testing.T) {
	if err := Validate(loginPayload{Username: "admin", Password: "longenough"}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	err := Validate(loginPayload{})
	if err == nil {
		t.Fatal("expected validation error for empty payload")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("got %d violations, want 2: %v", len(ve.Violations), ve.Violations)
	}

	msg := err.Error()
	if !strings.Contains(msg, "username is required") {
		t.Errorf("message %q missing username violation", msg)
	}
	if !strings.Contains(msg, "password is required") {
		t.Errorf("message %q missing password violation", msg)
	}
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	err := Validate(loginPayload{Username: "ab", Password: "longenough"})
	if err == nil {
		t.Fatal("expected validation error for short username")
	}
	msg := err.Error()
	if !strings.Contains(msg, "username must be at least 3 characters") {
		t.Errorf("got %q, want json-tag field name and min message", msg)
	}
	if strings.Contains(msg, "Username") {
		t.Errorf("message %q leaked the Go field name", msg)
	}
}

func TestValidateMaxLength(t *testing.T) {
	err := Validate(loginPayload{Username: strings.Repeat("x", 81), Password: "longenough"})
	if err == nil {
		t.Fatal("expected validation error for overlong username")
	}
	if !strings.Contains(err.Error(), "username must be at most 80 characters") {
		t.Errorf("got %q, want max message", err.Error())
	}
}
