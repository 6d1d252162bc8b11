package validation

import (
	"errors"
	"testing"

	"semaphore/dashboard/internal/result"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"notblank"`
	Phone    string `json:"phoneNumber" validate:"phone"`
	Internal string `json:"-"`
}

func TestStructValid(t *testing.T) {
	err := Struct(signup{Email: "ada@example.com", Password: "secret1", Username: "ada", Phone: "+33 6 12 34 56 78"})
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(signup{Email: "not-an-email", Password: "123", Username: "   ", Phone: "06-12"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", verr.Fields)
	}
	expect := map[string]string{
		"email":       "email must be a valid email address",
		"password":    "password must be at least 6 characters in length",
		"username":    "username cannot be blank",
		"phoneNumber": "phoneNumber must be at least 10 digits",
	}
	for field, msg := range expect {
		if got := verr.Message(field); got != msg {
			t.Fatalf("field %s expected %q, got %q", field, msg, got)
		}
	}
	if verr.ErrorCode() != result.CodeValidation {
		t.Fatalf("unexpected code %s", verr.ErrorCode())
	}
}

func TestValidationErrorBecomesEnvelope(t *testing.T) {
	err := Struct(signup{Email: "ada@example.com", Password: "secret1", Username: "", Phone: "0612345678"})
	res := result.Fail[struct{}](err)
	if res.Err().Code != result.CodeValidation {
		t.Fatalf("expected validation code, got %s", res.Err().Code)
	}
	if string(res.Err().Details) != `{"username":"username cannot be blank"}` {
		t.Fatalf("unexpected details %s", res.Err().Details)
	}
}

func TestStructRejectsNonStruct(t *testing.T) {
	err := Struct("nope")
	if err == nil {
		t.Fatalf("expected error for non-struct value")
	}
	var verr *Error
	if errors.As(err, &verr) {
		t.Fatalf("expected invalid validation error, got field errors")
	}
}
