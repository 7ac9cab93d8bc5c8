package models

import "time"

type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	RepoLink    string    `json:"repo_link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectPatch is a partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Category    *string `json:"category,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Link        *string `json:"link,omitempty"`
	RepoLink    *string `json:"repo_link,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Category == nil && p.SubCategory == nil && p.Name == nil &&
		p.Description == nil && p.Link == nil && p.RepoLink == nil
}

// Apply merges the non-nil fields of p into project.
func (p ProjectPatch) Apply(project *Project) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&project.Category, p.Category)
	set(&project.SubCategory, p.SubCategory)
	set(&project.Name, p.Name)
	set(&project.Description, p.Description)
	set(&project.Link, p.Link)
	set(&project.RepoLink, p.RepoLink)
}
