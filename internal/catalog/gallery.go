// Package catalog holds the hard-coded demo data shown by the site and the
// payment app.
package catalog

import "strings"

const AllCategories = "All"

var Categories = []string{AllCategories, "Nature", "Architecture", "Portrait", "Abstract", "Street", "Macro"}

type GalleryImage struct {
	ID           string `json:"id"`
	Placeholder  string `json:"placeholder"`
	Alt          string `json:"alt"`
	Title        string `json:"title"`
	Photographer string `json:"photographer"`
	Category     string `json:"category"`
}

var galleryImages = []GalleryImage{
	{ID: "1", Placeholder: "landscape", Alt: "Sample Image 1", Title: "Beautiful Landscape", Photographer: "John Doe", Category: "Nature"},
	{ID: "2", Placeholder: "city", Alt: "Sample Image 2", Title: "Urban Architecture", Photographer: "Jane Smith", Category: "Architecture"},
	{ID: "3", Placeholder: "portrait", Alt: "Sample Image 3", Title: "Portrait Study", Photographer: "Mike Johnson", Category: "Portrait"},
	{ID: "4", Placeholder: "abstract", Alt: "Sample Image 4", Title: "Abstract Art", Photographer: "Sarah Wilson", Category: "Abstract"},
	{ID: "5", Placeholder: "street", Alt: "Sample Image 5", Title: "Street Photography", Photographer: "Alex Brown", Category: "Street"},
	{ID: "6", Placeholder: "macro", Alt: "Sample Image 6", Title: "Macro Photography", Photographer: "Emily Davis", Category: "Macro"},
}

// Gallery returns the images of a category. An empty category or "All"
// returns every image; an unknown category returns none.
func Gallery(category string) []GalleryImage {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, AllCategories) {
		return append([]GalleryImage(nil), galleryImages...)
	}

	var out []GalleryImage
	for _, img := range galleryImages {
		if strings.EqualFold(img.Category, category) {
			out = append(out, img)
		}
	}
	return out
}

// NormalizeCategory maps user input onto a known category name.
func NormalizeCategory(category string) (string, bool) {
	category = strings.TrimSpace(category)
	if category == "" {
		return AllCategories, true
	}
	for _, c := range Categories {
		if strings.EqualFold(c, category) {
			return c, true
		}
	}
	return "", false
}
