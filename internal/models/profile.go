package models

import "gorm.io/gorm"

// Profile represents a user's professional profile.
type Profile struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	Name        string `gorm:"size:50"`
	Title       string `gorm:"size:100"`
	Description string `gorm:"size:300"`
	Github      string `gorm:"size:39"`
	Linkedin    string `gorm:"size:255"`
	Website     string `gorm:"size:255"`
	WorldID     string `gorm:"size:255"`

	// Privacy settings. Both default to open.
	AllowConnections bool `gorm:"not null;default:true"`
	AllowSearch      bool `gorm:"not null;default:true"`
}

// Complete reports whether the conversational profile flow has been finished
// at least once. Username and email exist from registration; the flow fills
// the professional fields starting with the display name.
func (p *Profile) Complete() bool {
	return p.Name != ""
}

// Summary is the public subset of a profile attached to connection listings.
type Summary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Title    string `json:"title"`
}

// Summary returns the public summary of the profile.
func (p *Profile) Summary() Summary {
	return Summary{
		ID:       p.ID,
		Username: p.Username,
		Name:     p.Name,
		Title:    p.Title,
	}
}
