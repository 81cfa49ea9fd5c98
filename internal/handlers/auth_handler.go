package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=attendee organizer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	user, err := h.Accounts.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			helpers.RespondWithError(c, http.StatusConflict, services.MessageOf(err))
			return
		}
		helpers.RespondWithServiceError(c, err, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    user,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"role":  session.Role,
		"user": gin.H{
			"id":           session.User.ID,
			"name":         session.User.Name,
			"email":        session.User.Email,
			"role":         session.User.Role,
			"organizer_id": session.User.OrganizerID,
		},
	})
}
