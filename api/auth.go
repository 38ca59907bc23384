package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/forms"
	"recipebox/store"
)

type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *store.Profile `json:"user"`
	Error         string         `json:"error,omitempty"`
}

func (h *Handler) session() sessionResponse {
	s := h.auth.State()
	return sessionResponse{Authenticated: s.Authenticated(), User: s.User, Error: s.Error}
}

// invalidForm writes per-field messages for a FieldErrors value. It reports false for other errors.
func invalidForm(c *gin.Context, err error) bool {
	var fe forms.FieldErrors
	if !errors.As(err, &fe) {
		return false
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": fe})
	return true
}

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.session())
}

// Register validates the sign-up form, registers the account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var form forms.Registration
	if err := c.ShouldBindJSON(&form); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid registration form")
		return
	}
	if err := form.Validate(); err != nil {
		if !invalidForm(c, err) {
			errorJSON(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	err := h.auth.Register(c.Request.Context(), form.Account())
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		errorJSON(c, http.StatusConflict, store.MsgEmailTaken)
	case err != nil:
		storeFailed(c, "auth.register", err)
	default:
		c.JSON(http.StatusCreated, h.session())
	}
}

// Login signs in with an exact email and password match.
func (h *Handler) Login(c *gin.Context) {
	var form forms.Credentials
	if err := c.ShouldBindJSON(&form); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid login form")
		return
	}
	if err := form.Validate(); err != nil {
		if !invalidForm(c, err) {
			errorJSON(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	err := h.auth.Login(c.Request.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		errorJSON(c, http.StatusUnauthorized, store.MsgInvalidCredentials)
	case err != nil:
		storeFailed(c, "auth.login", err)
	default:
		c.JSON(http.StatusOK, h.session())
	}
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		storeFailed(c, "auth.logout", err)
		return
	}
	c.JSON(http.StatusOK, h.session())
}
