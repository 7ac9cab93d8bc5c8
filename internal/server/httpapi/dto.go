package httpapi

import (
	"time"

	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/services"
)

type registerRequest struct {
	Login       string `json:"login"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Affiliation string `json:"affiliation"`
	TeamID      string `json:"team_id"`
	Mode        string `json:"mode"`
	// Picture is base64 in JSON.
	Picture []byte `json:"picture"`
}

func (r registerRequest) toService() services.RegisterRequest {
	return services.RegisterRequest{
		Login:       r.Login,
		Password:    r.Password,
		DisplayName: r.DisplayName,
		Affiliation: r.Affiliation,
		TeamID:      r.TeamID,
		Mode:        r.Mode,
		Picture:     r.Picture,
	}
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is a user without credentials.
type userResponse struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Affiliation string    `json:"affiliation"`
	TeamID      string    `json:"team_id"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Login:       u.Login,
		DisplayName: u.DisplayName,
		Affiliation: u.Affiliation,
		TeamID:      u.TeamID,
		Mode:        u.Mode,
		CreatedAt:   u.CreatedAt,
	}
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

type projectRequest struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	RepoLink    string `json:"repo_link"`
}

func (r projectRequest) toFields() services.ProjectFields {
	return services.ProjectFields(r)
}
