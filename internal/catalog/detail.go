package catalog

type Photographer struct {
	Name              string `json:"name"`
	AvatarPlaceholder string `json:"avatarPlaceholder"`
	Bio               string `json:"bio"`
}

type CameraSettings struct {
	Aperture string `json:"aperture"`
	Shutter  string `json:"shutter"`
	ISO      string `json:"iso"`
	Focal    string `json:"focal"`
}

type ImageDetail struct {
	ID           string         `json:"id"`
	Placeholder  string         `json:"placeholder"`
	Alt          string         `json:"alt"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Photographer Photographer   `json:"photographer"`
	Category     string         `json:"category"`
	UploadDate   string         `json:"uploadDate"`
	Views        int            `json:"views"`
	Likes        int            `json:"likes"`
	Comments     int            `json:"comments"`
	Tags         []string       `json:"tags"`
	Camera       string         `json:"camera"`
	Lens         string         `json:"lens"`
	Settings     CameraSettings `json:"settings"`
}

var imageDetails = map[string]ImageDetail{
	"1": {
		ID:          "1",
		Placeholder: "landscape",
		Alt:         "Beautiful Landscape",
		Title:       "Mountain Sunset",
		Description: "A breathtaking sunset view from the mountain peak, capturing the golden hour with stunning natural beauty. This image was taken during a hiking expedition in the Rocky Mountains.",
		Photographer: Photographer{
			Name:              "John Doe",
			AvatarPlaceholder: "avatar",
			Bio:               "Professional landscape photographer with 10+ years of experience",
		},
		Category:   "Nature",
		UploadDate: "2024-03-15",
		Views:      245,
		Likes:      18,
		Comments:   5,
		Tags:       []string{"sunset", "mountain", "landscape", "nature", "golden hour"},
		Camera:     "Canon EOS R5",
		Lens:       "24-70mm f/2.8",
		Settings:   CameraSettings{Aperture: "f/8.0", Shutter: "1/125s", ISO: "ISO 200", Focal: "35mm"},
	},
	"2": {
		ID:          "2",
		Placeholder: "city",
		Alt:         "Urban Architecture",
		Title:       "City Streets",
		Description: "Modern urban architecture showcasing the intersection of contemporary design and city life. Captured during the blue hour for optimal lighting.",
		Photographer: Photographer{
			Name:              "Jane Smith",
			AvatarPlaceholder: "avatar",
			Bio:               "Urban photographer specializing in architectural photography",
		},
		Category:   "Architecture",
		UploadDate: "2024-03-10",
		Views:      189,
		Likes:      12,
		Comments:   3,
		Tags:       []string{"urban", "architecture", "city", "modern", "blue hour"},
		Camera:     "Sony A7 IV",
		Lens:       "16-35mm f/2.8",
		Settings:   CameraSettings{Aperture: "f/11", Shutter: "1/60s", ISO: "ISO 400", Focal: "24mm"},
	},
}

// ImageDetailByID returns a copy of the detail record; only ids "1" and "2"
// have one.
func ImageDetailByID(id string) (*ImageDetail, bool) {
	detail, ok := imageDetails[id]
	if !ok {
		return nil, false
	}
	detail.Tags = append([]string(nil), detail.Tags...)
	return &detail, true
}
