// Package tui implements the interactive contact screen: two filtered input
// fields, the contact list and a transient notification line.
package tui

import "contactbook/contact"

// contactsLoadedMsg carries the result of loading the stored contacts.
type contactsLoadedMsg struct {
	contacts []contact.Contact
	err      error
}

// contactAddedMsg carries the result of an add and the list after it.
type contactAddedMsg struct {
	stored   contact.Contact
	contacts []contact.Contact
	err      error
}

// contactRemovedMsg carries the result of a delete and the list after it.
type contactRemovedMsg struct {
	removed  contact.Contact
	contacts []contact.Contact
	err      error
}

// clearToastMsg hides the toast it was scheduled for. Later toasts carry a
// higher seq and are left alone.
type clearToastMsg struct {
	seq int
}
