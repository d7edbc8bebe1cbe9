// Package paymentapp serves the separately deployed mock checkout pages that
// links generated on the upload page point to.
package paymentapp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/jo-hoe/pixweb/internal/payment"
	"github.com/labstack/echo/v4"
)

const pollInterval = 500

type PaymentAppService struct {
	config       *core.ServiceConfig
	coreService  *core.CoreService
	checkout     *payment.Checkout
	placeholders *catalog.Placeholders
}

func NewPaymentAppService(config *core.ServiceConfig, coreService *core.CoreService, checkout *payment.Checkout, placeholders *catalog.Placeholders) *PaymentAppService {
	return &PaymentAppService{
		config:       config,
		coreService:  coreService,
		checkout:     checkout,
		placeholders: placeholders,
	}
}

func (service *PaymentAppService) SetRoutes(e *echo.Echo) error {
	renderer, err := newRenderer()
	if err != nil {
		return fmt.Errorf("failed to load payment app templates: %w", err)
	}
	e.Renderer = renderer

	e.GET("/", service.singleHandler)
	e.GET("/collection/:id", service.collectionHandler)
	e.POST("/htmx/collection/:id/summary", service.htmxSummaryHandler)
	e.POST("/htmx/checkout", service.htmxCheckoutHandler)
	e.GET("/htmx/checkout/:session", service.htmxCheckoutStatusHandler)
	e.GET("/placeholder/:name", service.placeholderHandler)
	return nil
}

func (service *PaymentAppService) singleHandler(ctx echo.Context) error {
	imageID := ctx.QueryParam("id")
	collectionID := ctx.QueryParam("collection")

	o, err := service.singleOffer(ctx.Request().Context(), imageID, collectionID)
	if errors.Is(err, errOfferNotFound) {
		return ctx.Render(http.StatusNotFound, "not_found.html", notFoundData{
			page:    page{Title: "Not Found"},
			Heading: "Image Not Found",
			Message: "The requested image could not be found.",
		})
	}
	if err != nil {
		slog.Error("singleHandler: failed to resolve image",
			"status", http.StatusInternalServerError, "image_id", imageID, "collection_id", collectionID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load image")
	}
	if price := ctx.QueryParam("price"); price != "" && price != o.Items[0].Price.String() {
		slog.Debug("singleHandler: link price differs from catalog price",
			"image_id", o.Items[0].ID, "link_price", price, "price", o.Items[0].Price.String())
	}

	return ctx.Render(http.StatusOK, "single.html", singleData{
		page:  page{Title: o.Title},
		Offer: o,
		Item:  o.Items[0],
	})
}

func (service *PaymentAppService) collectionHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	o, err := service.collectionOffer(ctx.Request().Context(), id)
	if errors.Is(err, errOfferNotFound) {
		return ctx.Render(http.StatusNotFound, "not_found.html", notFoundData{
			page:    page{Title: "Not Found"},
			Heading: "Collection Not Found",
			Message: "The requested collection could not be found.",
		})
	}
	if err != nil {
		slog.Error("collectionHandler: failed to resolve collection",
			"status", http.StatusInternalServerError, "collection_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load collection")
	}

	return ctx.Render(http.StatusOK, "collection.html", collectionData{
		page:    page{Title: o.Title},
		Offer:   o,
		Total:   core.FormatAmount(o.total(), o.Currency),
		Summary: newSummary(o, nil),
	})
}

// htmxSummaryHandler re-renders the selection summary for the checked
// images.
func (service *PaymentAppService) htmxSummaryHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	o, err := service.collectionOffer(ctx.Request().Context(), id)
	if errors.Is(err, errOfferNotFound) {
		return ctx.String(http.StatusNotFound, "Collection not found")
	}
	if err != nil {
		slog.Error("htmxSummaryHandler: failed to resolve collection", "collection_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load collection")
	}

	selected, err := service.selectedItems(ctx, o)
	if err != nil {
		return ctx.String(http.StatusBadRequest, "Invalid selection")
	}
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "selection-summary", newSummary(o, selected))
}

func (service *PaymentAppService) selectedItems(ctx echo.Context, o *offer) ([]offerItem, error) {
	form, err := ctx.FormParams()
	if err != nil {
		return nil, err
	}
	selection := payment.NewSelection(o.paymentItems())
	selection.SelectAll(form["item"])

	var out []offerItem
	for _, item := range o.Items {
		if selection.IsSelected(item.ID) {
			out = append(out, item)
		}
	}
	return out, nil
}

// htmxCheckoutHandler opens a session for the requested items and starts
// the mock payment. Prices always come from the offer, never from the form.
func (service *PaymentAppService) htmxCheckoutHandler(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	collectionID := ctx.FormValue("collection")

	var o *offer
	var err error
	switch ctx.FormValue("kind") {
	case "single":
		o, err = service.singleOffer(reqCtx, ctx.FormValue("item"), collectionID)
	case "collection":
		o, err = service.collectionOffer(reqCtx, collectionID)
	default:
		return ctx.String(http.StatusBadRequest, "Invalid checkout request")
	}
	if errors.Is(err, errOfferNotFound) {
		return ctx.String(http.StatusNotFound, "Offer not found")
	}
	if err != nil {
		slog.Error("htmxCheckoutHandler: failed to resolve offer", "collection_id", collectionID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to start checkout")
	}

	items := o.Items
	if ctx.FormValue("kind") == "collection" {
		if items, err = service.selectedItems(ctx, o); err != nil {
			return ctx.String(http.StatusBadRequest, "Invalid selection")
		}
	}
	selected := make([]payment.Item, len(items))
	for i, item := range items {
		selected[i] = item.Item
	}

	session, err := service.checkout.Open(o.CollectionID, selected, o.Currency)
	if errors.Is(err, payment.ErrNothingSelected) {
		return ctx.Render(http.StatusOK, "alert", alertView{Kind: "error", Message: "Please select at least one image."})
	}
	if err == nil {
		session, err = service.checkout.Start(session.ID)
	}
	if err != nil {
		slog.Error("htmxCheckoutHandler: failed to start payment", "collection_id", o.CollectionID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to start checkout")
	}

	slog.Info("mock payment started", "session_id", session.ID, "items", len(session.Items), "total_minor", int64(session.Total()))
	return service.renderStatus(ctx, session)
}

func (service *PaymentAppService) htmxCheckoutStatusHandler(ctx echo.Context) error {
	session, err := service.checkout.Get(ctx.Param("session"))
	if errors.Is(err, payment.ErrSessionNotFound) {
		return ctx.String(http.StatusNotFound, "Checkout session not found")
	}
	if err != nil {
		return ctx.String(http.StatusInternalServerError, "Failed to load checkout session")
	}
	return service.renderStatus(ctx, session)
}

func (service *PaymentAppService) renderStatus(ctx echo.Context, session *payment.Session) error {
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "checkout-status", statusView{
		Session:    session,
		Total:      core.FormatAmount(session.Total(), session.Currency),
		PollMillis: pollInterval,
	})
}

func (service *PaymentAppService) placeholderHandler(ctx echo.Context) error {
	width, err := strconv.Atoi(ctx.QueryParam("w"))
	if err != nil {
		width = 800
	}
	data, err := service.placeholders.PNG(ctx.Param("name"), width)
	if errors.Is(err, catalog.ErrUnknownPlaceholder) {
		return ctx.String(http.StatusNotFound, "Placeholder not found")
	}
	if err != nil {
		slog.Error("placeholderHandler: failed to render placeholder", "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render placeholder")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Blob(http.StatusOK, "image/png", data)
}
