package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"contactbook/errs"
)

func (s *Server) RegisterContactRoutes(g *echo.Group) {
	g.GET("", s.handleListContacts)
	g.POST("", s.handleAddContact)
	g.DELETE("/:position", s.handleRemoveContact)
	g.POST("/reload", s.handleReloadContacts)
}

func (s *Server) handleAddContact(c echo.Context) error {
	var req AddContactRequest
	if err := c.Bind(&req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	stored, err := s.ContactService.AddContact(c.Request().Context(), req.ToContact())
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, stored)
}

func (s *Server) handleListContacts(c echo.Context) error {
	contacts, err := s.ContactService.ListContacts(c.Request().Context())
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, contacts)
}

// handleRemoveContact deletes by zero-based position in the listed order and
// returns the remaining contacts.
func (s *Server) handleRemoveContact(c echo.Context) error {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return errs.Errorf(errs.EINVALID, "position must be a number")
	}

	ctx := c.Request().Context()
	if err := s.ContactService.RemoveContact(ctx, position); err != nil {
		return err
	}

	contacts, err := s.ContactService.ListContacts(ctx)
	if err != nil {
		return err
	}
	return writeList(c, http.StatusOK, contacts)
}

func (s *Server) handleReloadContacts(c echo.Context) error {
	contacts, err := s.ContactService.LoadContacts(c.Request().Context())
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, contacts)
}
