package domain

import (
	"testing"
)

func TestValidationCollectsAllFailures(t *testing.T) {
	var v Validation
	v.Require("name", "")
	v.Require("email", "ok@example.com")
	v.Fail("phone", "must be 9-10 digits")

	err := v.Err()
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	fields := ve.Fields()
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].Field != "name" || fields[1].Field != "phone" {
		t.Errorf("fields = %v", fields)
	}
}

func TestValidationErrNilWhenClean(t *testing.T) {
	var v Validation
	v.Require("name", "fine")
	if err := v.Err(); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestValidationMergeFlattens(t *testing.T) {
	var inner Validation
	inner.Fail("start_time", "too early")
	inner.Fail("end_time", "too late")

	var outer Validation
	outer.Fail("type", "unknown")
	outer.Merge(inner.Err())

	ve, ok := AsValidation(outer.Err())
	if !ok {
		t.Fatal("expected validation error")
	}
	if len(ve.Fields()) != 3 {
		t.Errorf("got %d fields, want 3", len(ve.Fields()))
	}
}

func TestRequirePhone(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"", true}, // blank passes; pair with Require for mandatory fields
		{"0501234567", true},
		{"050-123-4567", true},
		{"03-1234567", true},
		{"123", false},
		{"05012345678901", false},
	}
	for _, tc := range cases {
		var v Validation
		v.RequirePhone("phone", tc.in)
		if got := v.Err() == nil; got != tc.ok {
			t.Errorf("RequirePhone(%q): valid = %v, want %v", tc.in, got, tc.ok)
		}
	}
}

func TestRequireNationalID(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"123456789", true},
		{"123-456-789", true},
		{"12345678", false},
		{"1234567890", false},
	}
	for _, tc := range cases {
		var v Validation
		v.RequireNationalID("id", tc.in)
		if got := v.Err() == nil; got != tc.ok {
			t.Errorf("RequireNationalID(%q): valid = %v, want %v", tc.in, got, tc.ok)
		}
	}
}
