package catalog

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator"
	"github.com/jo-hoe/pixweb/internal/content"
)

type Profile struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Bio      string `json:"bio" validate:"max=1000"`
	Location string `json:"location" validate:"max=100"`
	Website  string `json:"website" validate:"max=200"`
	JoinDate string `json:"joinDate"`
}

type ProfileImage struct {
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	UploadDate  string `json:"uploadDate"`
	Views       int    `json:"views"`
	Likes       int    `json:"likes"`
}

type ProfileStats struct {
	TotalImages int `json:"totalImages"`
	TotalViews  int `json:"totalViews"`
	TotalLikes  int `json:"totalLikes"`
	Followers   int `json:"followers"`
	Following   int `json:"following"`
}

var defaultProfile = Profile{
	Name:     "John Photographer",
	Email:    "john@example.com",
	Bio:      "Passionate photographer specializing in landscape and street photography. Love capturing the beauty of everyday moments.",
	Location: "New York, USA",
	Website:  "www.johnphotographer.com",
	JoinDate: "January 2024",
}

var profileImages = []ProfileImage{
	{ID: "1", Placeholder: "landscape", Title: "Mountain Sunset", Category: "Nature", UploadDate: "2024-03-15", Views: 245, Likes: 18},
	{ID: "2", Placeholder: "city", Title: "City Streets", Category: "Street", UploadDate: "2024-03-10", Views: 189, Likes: 12},
	{ID: "3", Placeholder: "portrait", Title: "Portrait Study", Category: "Portrait", UploadDate: "2024-03-05", Views: 156, Likes: 9},
	{ID: "4", Placeholder: "abstract", Title: "Abstract Colors", Category: "Abstract", UploadDate: "2024-02-28", Views: 203, Likes: 15},
}

func ProfileImages() []ProfileImage {
	return append([]ProfileImage(nil), profileImages...)
}

// Stats derives the totals from the given images; follower counts are fixed.
func Stats(images []ProfileImage) ProfileStats {
	stats := ProfileStats{
		TotalImages: len(images),
		Followers:   42,
		Following:   28,
	}
	for _, img := range images {
		stats.TotalViews += img.Views
		stats.TotalLikes += img.Likes
	}
	return stats
}

// ProfileStore keeps the single demo profile in memory.
type ProfileStore struct {
	mu       sync.RWMutex
	profile  Profile
	validate *validator.Validate
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profile:  defaultProfile,
		validate: validator.New(),
	}
}

func (s *ProfileStore) Get() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Update sanitizes and validates the editable fields. The join date cannot
// be changed. On error the stored profile is left as it was.
func (s *ProfileStore) Update(p Profile) (Profile, error) {
	p.Name = content.SanitizeText(p.Name)
	p.Email = content.SanitizeText(p.Email)
	p.Bio = content.SanitizeText(p.Bio)
	p.Location = content.SanitizeText(p.Location)
	p.Website = content.SanitizeText(p.Website)

	if err := s.validate.Struct(p); err != nil {
		return s.Get(), fmt.Errorf("invalid profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.JoinDate = s.profile.JoinDate
	s.profile = p
	return p, nil
}
