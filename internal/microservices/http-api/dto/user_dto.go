package dto

import (
	"time"

	"animeschedule/internal/microservices/http-api/models"
)

type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	TimeZone  string     `json:"timezone"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// UpdateSettingsRequest: payload for PUT /users/me/settings
type UpdateSettingsRequest struct {
	TimeZone string `json:"timezone" binding:"required"`
}

func FromUserModel(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		TimeZone:  u.TimeZone,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
