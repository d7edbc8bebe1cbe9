package catalog

import "github.com/jo-hoe/pixweb/internal/core"

// PaymentImage is an image sold through the payment app. Prices are in
// minor units of the payment currency.
type PaymentImage struct {
	ID           string     `json:"id"`
	Placeholder  string     `json:"placeholder"`
	Title        string     `json:"title"`
	Photographer string     `json:"photographer"`
	Price        core.Price `json:"priceMinor"`
	Description  string     `json:"description"`
}

type PaymentCollection struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Photographer string         `json:"photographer"`
	Images       []PaymentImage `json:"images"`
}

func (c *PaymentCollection) TotalPrice() core.Price {
	var total core.Price
	for _, img := range c.Images {
		total += img.Price
	}
	return total
}

// DefaultPaymentImageID is shown when the checkout link carries no id.
const DefaultPaymentImageID = "1"

var paymentImages = map[string]PaymentImage{
	"1": {ID: "1", Placeholder: "landscape", Title: "Beautiful Landscape", Photographer: "John Doe", Price: 250000,
		Description: "A stunning landscape photograph captured during golden hour"},
	"2": {ID: "2", Placeholder: "city", Title: "Urban Architecture", Photographer: "Jane Smith", Price: 300000,
		Description: "Modern city architecture with dramatic lighting"},
}

var paymentCollections = map[string]PaymentCollection{
	"abc123": {
		ID:           "abc123",
		Title:        "Nature & Urban Collection",
		Photographer: "John Doe",
		Images: []PaymentImage{
			{ID: "1", Placeholder: "landscape", Title: "Mountain Sunset", Photographer: "John Doe", Price: 250000,
				Description: "Breathtaking sunset over mountain peaks"},
			{ID: "2", Placeholder: "city", Title: "City Lights", Photographer: "John Doe", Price: 300000,
				Description: "Urban nightscape with vibrant city lights"},
		},
	},
}

func PaymentImageByID(id string) (*PaymentImage, bool) {
	img, ok := paymentImages[id]
	if !ok {
		return nil, false
	}
	return &img, true
}

func PaymentCollectionByID(id string) (*PaymentCollection, bool) {
	c, ok := paymentCollections[id]
	if !ok {
		return nil, false
	}
	c.Images = append([]PaymentImage(nil), c.Images...)
	return &c, true
}
