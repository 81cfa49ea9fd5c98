package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Error retrieving profile.")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), userID, services.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to update profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

func (h *Handler) UpgradeToOrganizer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Accounts.UpgradeToOrganizer(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to upgrade account.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account upgraded to organizer.",
		"user":    user,
	})
}
