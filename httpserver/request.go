package httpserver

import (
	"contactbook/contact"
)

type AddContactRequest struct {
	Name  string `json:"name" validate:"required,notblank,contactname"`
	Email string `json:"email" validate:"required,notblank,contactemail"`
}

func (r AddContactRequest) ToContact() contact.Contact {
	return contact.Contact{
		Name:  r.Name,
		Email: r.Email,
	}
}
