package api

import (
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
)

var (
	contactNumberPattern = regexp.MustCompile(`^09\d{9}$`)
	contactEmailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	wordPattern          = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

const minCredentialLength = 8

// FieldErrors maps a request property to the first rule it broke.
type FieldErrors map[string]string

func (f FieldErrors) check(field string, failed bool, msg string) {
	if _, seen := f[field]; seen || !failed {
		return
	}
	f[field] = msg
}

func (f FieldErrors) required(field, value string) {
	f.check(field, value == "", "Missing required property: "+field)
}

func (f FieldErrors) err() FieldErrors {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Validate returns nil when r may be handed to registration.
func (r *RegisterRequest) Validate() FieldErrors {
	f := FieldErrors{}

	f.required("given_name", r.GivenName)
	if r.MiddleName != nil {
		f.required("middle_name", *r.MiddleName)
	}
	f.required("last_name", r.LastName)

	f.required("contact_number", r.ContactNumber)
	f.check("contact_number", !contactNumberPattern.MatchString(r.ContactNumber), "Invalid contact number")

	f.required("contact_email", r.ContactEmail)
	f.check("contact_email", !contactEmailPattern.MatchString(r.ContactEmail), "Invalid contact email")

	f.required("username", r.Username)
	f.check("username", utf8.RuneCountInString(r.Username) < minCredentialLength, "Username must be at least 8 characters")
	f.check("username", !wordPattern.MatchString(r.Username), "Username must only contain alphanumeric characters")

	f.required("password", r.Password)
	f.check("password", utf8.RuneCountInString(r.Password) < minCredentialLength, "Password must be at least 8 characters")
	f.check("password", !wordPattern.MatchString(r.Password), "Password must only contain alphanumeric characters")
	f.check("password", len(r.Password) > cryptox.MaxPasswordBytes, "Password must be at most 72 characters")

	f.required("profile_picture", r.ProfilePicture)
	return f.err()
}

func (r *SignInRequest) Validate() FieldErrors {
	f := FieldErrors{}
	f.required("username", r.Username)
	f.required("password", r.Password)
	return f.err()
}

// MiddleNameOrEmpty returns the optional middle name, "" when absent.
func (r *RegisterRequest) MiddleNameOrEmpty() string {
	if r.MiddleName == nil {
		return ""
	}
	return *r.MiddleName
}
