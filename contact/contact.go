package contact

import (
	"strings"

	"contactbook/errs"
)

var (
	ErrEmptyName       = errs.Errorf(errs.EINVALID, "name is required")
	ErrInvalidName     = errs.Errorf(errs.EINVALID, "name may only contain letters and spaces")
	ErrEmptyEmail      = errs.Errorf(errs.EINVALID, "email is required")
	ErrInvalidEmail    = errs.Errorf(errs.EINVALID, "invalid email")
	ErrContactNotFound = errs.Errorf(errs.ENOTFOUND, "contact not found")
)

// Contact is immutable once stored. ID is assigned by identity-keyed
// backends and stays zero for the flat-file backend.
type Contact struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewContact builds a Contact from raw form input. The name is trimmed and
// its whitespace runs collapsed, the email is trimmed, then both are
// validated.
func NewContact(name, email string) (Contact, error) {
	c := Contact{
		Name:  NormalizeWhitespace(strings.TrimSpace(name)),
		Email: strings.TrimSpace(email),
	}
	if err := c.Validate(); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// Validate reports whether c may be persisted or shown.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}

	if !IsValidName(c.Name) || c.Name != NormalizeWhitespace(strings.TrimSpace(c.Name)) {
		return ErrInvalidName
	}

	if strings.TrimSpace(c.Email) == "" {
		return ErrEmptyEmail
	}

	if !IsValidEmail(c.Email) {
		return ErrInvalidEmail
	}

	return nil
}

// IsStorageReadError reports whether err is a failure to load contacts.
func IsStorageReadError(err error) bool {
	return errs.ErrorCode(err) == errs.ESTORAGEREAD
}

// IsStorageWriteError reports whether err is a failed add or remove.
func IsStorageWriteError(err error) bool {
	return errs.ErrorCode(err) == errs.ESTORAGEWRITE
}

func storageReadError(err error) error {
	return errs.Wrapf(errs.ESTORAGEREAD, err, "cannot load contacts: %v", err)
}

func storageWriteError(op string, err error) error {
	return errs.Wrapf(errs.ESTORAGEWRITE, err, "cannot %s contact: %v", op, err)
}
