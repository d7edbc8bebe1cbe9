package core

import (
	"net/url"
	"strings"
	"time"

	"github.com/jo-hoe/pixweb/internal/backend/database"
)

const collectionKeyPrefix = "collection_"

// CollectionKey is the storage key of a collection.
func CollectionKey(id string) string {
	return collectionKeyPrefix + id
}

// CollectionImage is an image as frozen into a collection at link time.
type CollectionImage struct {
	ID          string `json:"id" validate:"required"`
	Preview     string `json:"preview"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Price       Price  `json:"priceMinor" validate:"min=0"`
}

type Collection struct {
	ID        string            `json:"id"`
	Images    []CollectionImage `json:"images"`
	Currency  string            `json:"currency"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Total is the sum of all image prices.
func (c *Collection) Total() Price {
	var total Price
	for _, img := range c.Images {
		total += img.Price
	}
	return total
}

func (c *Collection) Image(id string) (*CollectionImage, bool) {
	for i := range c.Images {
		if c.Images[i].ID == id {
			return &c.Images[i], true
		}
	}
	return nil, false
}

// Link is a shareable payment-app address for a collection.
type Link struct {
	CollectionID string `json:"collectionId"`
	URL          string `json:"url"`
	ImageCount   int    `json:"imageCount"`
}

// BuildLink points a single image at the payment app's checkout page and a
// larger collection at its collection page.
func BuildLink(paymentAppURL string, collection *Collection) string {
	base := strings.TrimRight(paymentAppURL, "/")
	if len(collection.Images) == 1 {
		img := collection.Images[0]
		return base + "/?id=" + url.QueryEscape(img.ID) +
			"&collection=" + url.QueryEscape(collection.ID) +
			"&price=" + url.QueryEscape(img.Price.String())
	}
	return base + "/collection/" + url.PathEscape(collection.ID)
}

func collectionImageFromDraft(img *database.Image) CollectionImage {
	return CollectionImage{
		ID:          img.ID,
		Preview:     img.Preview,
		Title:       img.Title,
		Description: img.Description,
		Category:    img.Category,
		Price:       Price(img.PriceMinor),
	}
}
