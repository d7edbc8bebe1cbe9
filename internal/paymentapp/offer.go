package paymentapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/jo-hoe/pixweb/internal/payment"
)

var errOfferNotFound = errors.New("offer not found")

// offer is what a checkout page sells: either a mock catalog entry or a
// collection generated on the upload page.
type offer struct {
	CollectionID string
	Title        string
	Photographer string
	Currency     string
	Items        []offerItem
}

type offerItem struct {
	payment.Item
	Description  string
	Photographer string
	PriceLabel   string
}

func (o *offer) paymentItems() []payment.Item {
	items := make([]payment.Item, len(o.Items))
	for i, item := range o.Items {
		items[i] = item.Item
	}
	return items
}

func (o *offer) total() core.Price {
	var total core.Price
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}

func placeholderURL(name string) string {
	return fmt.Sprintf("/placeholder/%s?w=800", name)
}

func catalogItem(img catalog.PaymentImage, currency string) offerItem {
	return offerItem{
		Item: payment.Item{
			ID:    img.ID,
			Title: img.Title,
			Image: placeholderURL(img.Placeholder),
			Price: img.Price,
		},
		Description:  img.Description,
		Photographer: img.Photographer,
		PriceLabel:   img.Price.Label(currency),
	}
}

func storedItem(img core.CollectionImage, currency string) offerItem {
	return offerItem{
		Item: payment.Item{
			ID:    img.ID,
			Title: img.Title,
			Image: img.Preview,
			Price: img.Price,
		},
		Description: img.Description,
		PriceLabel:  img.Price.Label(currency),
	}
}

// singleOffer resolves the image of a single-image checkout link. The mock
// catalog is consulted first; otherwise the image is looked up in the
// stored collection named by the link.
func (service *PaymentAppService) singleOffer(ctx context.Context, imageID, collectionID string) (*offer, error) {
	if imageID == "" {
		imageID = catalog.DefaultPaymentImageID
	}
	currency := service.config.PaymentCurrency

	if img, ok := catalog.PaymentImageByID(imageID); ok {
		return &offer{
			CollectionID: collectionID,
			Title:        img.Title,
			Photographer: img.Photographer,
			Currency:     currency,
			Items:        []offerItem{catalogItem(*img, currency)},
		}, nil
	}

	if collectionID == "" {
		return nil, errOfferNotFound
	}
	collection, err := service.coreService.GetCollection(ctx, collectionID)
	if errors.Is(err, core.ErrCollectionNotFound) {
		return nil, errOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	img, ok := collection.Image(imageID)
	if !ok {
		return nil, errOfferNotFound
	}
	return &offer{
		CollectionID: collection.ID,
		Title:        img.Title,
		Currency:     collection.Currency,
		Items:        []offerItem{storedItem(*img, collection.Currency)},
	}, nil
}

func (service *PaymentAppService) collectionOffer(ctx context.Context, collectionID string) (*offer, error) {
	currency := service.config.PaymentCurrency
	if c, ok := catalog.PaymentCollectionByID(collectionID); ok {
		o := &offer{
			CollectionID: c.ID,
			Title:        c.Title,
			Photographer: c.Photographer,
			Currency:     currency,
		}
		for _, img := range c.Images {
			o.Items = append(o.Items, catalogItem(img, currency))
		}
		return o, nil
	}

	collection, err := service.coreService.GetCollection(ctx, collectionID)
	if errors.Is(err, core.ErrCollectionNotFound) {
		return nil, errOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	o := &offer{
		CollectionID: collection.ID,
		Title:        "Image Collection",
		Currency:     collection.Currency,
	}
	for _, img := range collection.Images {
		o.Items = append(o.Items, storedItem(img, collection.Currency))
	}
	return o, nil
}
