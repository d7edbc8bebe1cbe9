package backend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/labstack/echo/v4"
)

type APIService struct {
	coreService *core.CoreService
}

type createCollectionRequest struct {
	Images   []core.CollectionImage `json:"images" validate:"required,min=1,dive"`
	Currency string                 `json:"currency" validate:"omitempty,len=3,alpha"`
}

type createCollectionResponse struct {
	Collection *core.Collection `json:"collection"`
	Link       *core.Link       `json:"link"`
}

type galleryResponse struct {
	Category string                 `json:"category"`
	Images   []catalog.GalleryImage `json:"images"`
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/api/collections", s.listCollectionsHandler)
	e.GET("/api/collections/:id", s.getCollectionHandler)
	e.POST("/api/collections", s.createCollectionHandler)
	e.GET("/api/gallery", s.galleryHandler)
}

func (s *APIService) listCollectionsHandler(ctx echo.Context) error {
	ids, err := s.coreService.ListCollectionIDs(ctx.Request().Context())
	if err != nil {
		slog.Error("listCollectionsHandler: failed to list collections", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list collections")
	}
	if ids == nil {
		ids = []string{}
	}
	return ctx.JSON(http.StatusOK, map[string][]string{"ids": ids})
}

func (s *APIService) getCollectionHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	collection, err := s.coreService.GetCollection(ctx.Request().Context(), id)
	if errors.Is(err, core.ErrCollectionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "collection not found")
	}
	if err != nil {
		slog.Error("getCollectionHandler: failed to load collection", "collection_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load collection")
	}
	return ctx.JSON(http.StatusOK, collection)
}

func (s *APIService) createCollectionHandler(ctx echo.Context) error {
	var req createCollectionRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "received malformed request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	collection, link, err := s.coreService.CreateCollection(ctx.Request().Context(), req.Images, req.Currency)
	if msg, ok := core.UserMessage(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	if err != nil {
		slog.Error("createCollectionHandler: failed to create collection", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create collection")
	}
	return ctx.JSON(http.StatusCreated, createCollectionResponse{Collection: collection, Link: link})
}

func (s *APIService) galleryHandler(ctx echo.Context) error {
	category, ok := catalog.NormalizeCategory(ctx.QueryParam("category"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	return ctx.JSON(http.StatusOK, galleryResponse{Category: category, Images: catalog.Gallery(category)})
}
