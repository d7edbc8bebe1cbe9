package frontend

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/content"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	draftCookieName = "pixweb_draft"
	draftCookieAge  = 30 * 24 * time.Hour
	mimePNG         = "image/png"
	// formOverhead covers multipart headers and the text fields of an upload.
	formOverhead = 64 << 10
)

type FrontendService struct {
	coreService  *core.CoreService
	config       *core.ServiceConfig
	profiles     *catalog.ProfileStore
	placeholders *catalog.Placeholders
	validator    *common.GenericEchoValidator
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService, placeholders *catalog.Placeholders) *FrontendService {
	return &FrontendService{
		coreService:  coreService,
		config:       config,
		profiles:     catalog.NewProfileStore(),
		placeholders: placeholders,
		validator:    common.NewEchoValidator(),
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) error {
	renderer, err := newRenderer()
	if err != nil {
		return fmt.Errorf("failed to load frontend templates: %w", err)
	}
	e.Renderer = renderer

	e.GET("/", service.homeHandler)
	e.GET("/about", service.aboutHandler)
	e.GET("/contact", service.contactHandler)
	e.POST("/contact", service.contactSubmitHandler)
	e.GET("/gallery", service.galleryHandler)
	e.GET("/gallery/:id", service.galleryDetailHandler)
	e.GET("/profile", service.profileHandler)
	e.POST("/profile", service.profileSaveHandler)
	e.GET("/htmx/profile/edit", service.htmxProfileEditHandler)

	e.GET("/upload", service.uploadHandler)
	e.POST("/htmx/upload/images", service.htmxUploadImagesHandler, middleware.BodyLimit(service.uploadBodyLimit()))
	e.DELETE("/htmx/upload/images/:id", service.htmxDeleteImageHandler)
	e.POST("/htmx/upload/images/:id/move", service.htmxMoveImageHandler)
	e.POST("/htmx/upload/link", service.htmxGenerateLinkHandler)

	e.GET("/collection/:id", service.collectionHandler)
	e.POST("/htmx/collection/:id/purchase", service.htmxPurchaseHandler)
	e.POST("/htmx/collection/:id/purchase/:imageId", service.htmxPurchaseHandler)

	e.GET("/placeholder/:name", service.placeholderHandler)
	e.GET("/icon.svg", service.iconHandler)
	return nil
}

func (service *FrontendService) homeHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "home.html", page{Title: "Home", Nav: "home"})
}

func (service *FrontendService) aboutHandler(ctx echo.Context) error {
	body, err := content.Page("about")
	if err != nil {
		slog.Error("aboutHandler: failed to render about page", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load page")
	}
	return ctx.Render(http.StatusOK, "about.html", aboutData{
		page: page{Title: "About", Nav: "about"},
		Body: body,
		Team: catalog.Team,
	})
}

func (service *FrontendService) contactHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "contact.html", contactData{
		page: page{Title: "Contact", Nav: "contact"},
		Info: catalog.ContactInfo,
		Form: contactFormView{Subjects: catalog.ContactSubjects},
	})
}

// contactSubmitHandler validates the message and answers with the form
// fragment: cleared with a thank-you note on success, prefilled with an
// error otherwise. Nothing is sent anywhere.
func (service *FrontendService) contactSubmitHandler(ctx echo.Context) error {
	form := contactForm{
		Name:    content.SanitizeText(ctx.FormValue("name")),
		Email:   strings.TrimSpace(ctx.FormValue("email")),
		Subject: strings.TrimSpace(ctx.FormValue("subject")),
		Message: content.SanitizeText(ctx.FormValue("message")),
	}
	view := contactFormView{Subjects: catalog.ContactSubjects}

	if err := service.validator.Validator.Struct(form); err != nil {
		slog.Debug("contactSubmitHandler: invalid contact form", "error", err)
		view.Values = form
		view.Alert = &alertView{Kind: "error", Message: "Please fill in all required fields with a valid email address."}
		return ctx.Render(http.StatusOK, "contact-form", view)
	}

	slog.Info("contact message received", "subject", form.Subject, "message_length", len(form.Message))
	view.Alert = &alertView{Kind: "success", Message: "Thank you for your message! We'll get back to you soon."}
	return ctx.Render(http.StatusOK, "contact-form", view)
}

func (service *FrontendService) galleryHandler(ctx echo.Context) error {
	requested := ctx.QueryParam("category")
	active, ok := catalog.NormalizeCategory(requested)
	var images []catalog.GalleryImage
	if ok {
		images = catalog.Gallery(active)
	}
	return ctx.Render(http.StatusOK, "gallery.html", galleryData{
		page:       page{Title: "Gallery", Nav: "gallery"},
		Categories: catalog.Categories,
		Active:     active,
		Images:     images,
	})
}

func (service *FrontendService) galleryDetailHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	detail, ok := catalog.ImageDetailByID(id)
	if !ok {
		slog.Warn("galleryDetailHandler: image not found", "status", http.StatusNotFound, "image_id", id)
		return ctx.Render(http.StatusNotFound, "not_found.html", notFoundData{
			page:      page{Title: "Not Found", Nav: "gallery"},
			Heading:   "Image Not Found",
			Message:   "The requested image could not be found.",
			Back:      "/gallery",
			BackLabel: "Back to Gallery",
		})
	}
	return ctx.Render(http.StatusOK, "gallery_detail.html", detailData{
		page:  page{Title: detail.Title, Nav: "gallery"},
		Image: detail,
	})
}

func (service *FrontendService) profilePage(card profileCard) profileData {
	images := catalog.ProfileImages()
	return profileData{
		page:   page{Title: "Profile", Nav: "profile"},
		Card:   card,
		Images: images,
		Stats:  catalog.Stats(images),
	}
}

func (service *FrontendService) profileHandler(ctx echo.Context) error {
	editing, _ := strconv.ParseBool(ctx.QueryParam("edit"))
	return ctx.Render(http.StatusOK, "profile.html", service.profilePage(profileCard{
		Profile: service.profiles.Get(),
		Editing: editing,
	}))
}

func (service *FrontendService) htmxProfileEditHandler(ctx echo.Context) error {
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "profile-card", profileCard{Profile: service.profiles.Get(), Editing: true})
}

func (service *FrontendService) profileSaveHandler(ctx echo.Context) error {
	submitted := catalog.Profile{
		Name:     ctx.FormValue("name"),
		Email:    ctx.FormValue("email"),
		Bio:      ctx.FormValue("bio"),
		Location: ctx.FormValue("location"),
		Website:  ctx.FormValue("website"),
	}

	updated, err := service.profiles.Update(submitted)
	if err != nil {
		slog.Debug("profileSaveHandler: rejected profile update", "error", err)
		submitted.JoinDate = updated.JoinDate
		return service.renderProfileCard(ctx, profileCard{
			Profile: submitted,
			Editing: true,
			Alert:   &alertView{Kind: "error", Message: "Please enter a name and a valid email address."},
		})
	}
	slog.Info("profile updated", "name", updated.Name)
	return service.renderProfileCard(ctx, profileCard{
		Profile: updated,
		Alert:   &alertView{Kind: "success", Message: "Profile saved."},
	})
}

// renderProfileCard answers htmx requests with the card fragment and plain
// form posts with the full page.
func (service *FrontendService) renderProfileCard(ctx echo.Context, card profileCard) error {
	if isHtmx(ctx) {
		return ctx.Render(http.StatusOK, "profile-card", card)
	}
	return ctx.Render(http.StatusOK, "profile.html", service.profilePage(card))
}

func (service *FrontendService) uploadHandler(ctx echo.Context) error {
	draftID := service.draftID(ctx)
	images, err := service.coreService.GetDraft(ctx.Request().Context(), draftID)
	if err != nil {
		slog.Error("uploadHandler: failed to load draft",
			"status", http.StatusInternalServerError, "draft_id", draftID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load draft")
	}

	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "upload.html", uploadData{
		page:       page{Title: "Upload", Nav: "upload"},
		Categories: uploadCategories(),
		Currency:   service.config.Currency,
		MaxMB:      service.config.MaxUploadBytes >> 20,
		MaxFiles:   service.config.MaxUploadFiles,
		Draft:      newDraftView(images, service.config.Currency, false),
	})
}

func (service *FrontendService) htmxUploadImagesHandler(ctx echo.Context) error {
	draftID := service.draftID(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		slog.Warn("htmxUploadImagesHandler: failed to parse multipart form",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read upload")
	}

	files := form.File["images"]
	if limit := service.config.MaxUploadFiles; limit > 0 && len(files) > limit {
		return service.renderUploadAlert(ctx, fmt.Sprintf("Please upload at most %d images at a time.", limit))
	}
	uploads := make([]core.Upload, 0, len(files))
	for _, file := range files {
		data, err := service.readUpload(file)
		if err != nil {
			if errors.Is(err, errUploadTooLarge) {
				return service.renderUploadAlert(ctx, fmt.Sprintf("%s is larger than %d MB.", file.Filename, service.config.MaxUploadBytes>>20))
			}
			slog.Error("htmxUploadImagesHandler: failed to read uploaded file",
				"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
			return ctx.String(http.StatusInternalServerError, "Failed to read uploaded file")
		}
		uploads = append(uploads, core.Upload{
			Data:        data,
			Title:       content.SanitizeText(ctx.FormValue("title")),
			Description: content.SanitizeText(ctx.FormValue("description")),
			Category:    strings.TrimSpace(ctx.FormValue("category")),
			Price:       ctx.FormValue("price"),
		})
	}

	added, err := service.coreService.AddImages(ctx.Request().Context(), draftID, uploads)
	if err != nil {
		if msg, ok := core.UserMessage(err); ok {
			return service.renderUploadAlert(ctx, msg)
		}
		slog.Error("htmxUploadImagesHandler: failed to add images",
			"status", http.StatusInternalServerError, "draft_id", draftID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to process uploaded images")
	}

	draft, err := service.draftView(ctx, draftID, true)
	if err != nil {
		return err
	}
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "upload-result", uploadResult{
		Alert: alertView{Kind: "success", Message: fmt.Sprintf("Added %d %s.", len(added), pluralize(len(added), "image", "images"))},
		Draft: draft,
	})
}

var errUploadTooLarge = errors.New("upload too large")

// uploadBodyLimit caps a whole upload request at MaxUploadFiles files of
// MaxUploadBytes each, so oversized requests are refused before echo spools
// them to disk. The value is in echo's size notation, rounded up to KB.
func (service *FrontendService) uploadBodyLimit() string {
	files := int64(service.config.MaxUploadFiles)
	if files <= 0 {
		files = 1
	}
	limit := service.config.MaxUploadBytes*files + formOverhead
	return fmt.Sprintf("%dK", (limit+1023)/1024)
}

func (service *FrontendService) readUpload(file *multipart.FileHeader) ([]byte, error) {
	limit := service.config.MaxUploadBytes
	if limit > 0 && file.Size > limit {
		return nil, errUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("readUpload: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	var reader io.Reader = src
	if limit > 0 {
		reader = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errUploadTooLarge
	}
	return data, nil
}

// renderUploadAlert reports a rejected upload. The draft is unchanged, so
// the list is not re-rendered.
func (service *FrontendService) renderUploadAlert(ctx echo.Context, message string) error {
	return ctx.Render(http.StatusOK, "upload-result", uploadResult{
		Alert: alertView{Kind: "error", Message: message},
	})
}

func (service *FrontendService) htmxDeleteImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	draftID := service.draftID(ctx)

	if err := service.coreService.DeleteDraftImage(ctx.Request().Context(), draftID, id); err != nil {
		slog.Error("htmxDeleteImageHandler: failed to delete image",
			"status", http.StatusInternalServerError, "image_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to delete image")
	}
	return service.renderDraftList(ctx, draftID)
}

func (service *FrontendService) htmxMoveImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	dir := strings.ToLower(strings.TrimSpace(ctx.QueryParam("dir")))
	if dir != "up" && dir != "down" {
		slog.Warn("htmxMoveImageHandler: invalid params", "id", id, "dir", dir)
		return ctx.String(http.StatusBadRequest, "Invalid parameters")
	}

	draftID := service.draftID(ctx)
	err := service.coreService.MoveDraftImage(ctx.Request().Context(), draftID, id, dir == "up")
	if errors.Is(err, core.ErrImageNotFound) {
		return ctx.String(http.StatusBadRequest, "Image not found")
	}
	if err != nil {
		slog.Error("htmxMoveImageHandler: failed to update order", "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to update order")
	}
	return service.renderDraftList(ctx, draftID)
}

func (service *FrontendService) htmxGenerateLinkHandler(ctx echo.Context) error {
	draftID := service.draftID(ctx)
	link, err := service.coreService.GenerateLink(ctx.Request().Context(), draftID)
	if err != nil {
		if msg, ok := core.UserMessage(err); ok {
			return ctx.Render(http.StatusOK, "link-result", linkResult{Alert: &alertView{Kind: "error", Message: msg}})
		}
		slog.Error("htmxGenerateLinkHandler: failed to generate link",
			"status", http.StatusInternalServerError, "draft_id", draftID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to generate link")
	}

	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "link-result", linkResult{Link: link})
}

func (service *FrontendService) collectionHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	collection, err := service.coreService.GetCollection(ctx.Request().Context(), id)
	if errors.Is(err, core.ErrCollectionNotFound) {
		return ctx.Render(http.StatusNotFound, "not_found.html", notFoundData{
			page:      page{Title: "Not Found", Nav: "upload"},
			Heading:   "Collection Not Found",
			Message:   "The collection you're looking for doesn't exist or has been removed.",
			Back:      "/upload",
			BackLabel: "Create New Collection",
		})
	}
	if err != nil {
		slog.Error("collectionHandler: failed to load collection",
			"status", http.StatusInternalServerError, "collection_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load collection")
	}
	return ctx.Render(http.StatusOK, "collection.html", newCollectionData(collection))
}

func (service *FrontendService) htmxPurchaseHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	collection, err := service.coreService.GetCollection(ctx.Request().Context(), id)
	if errors.Is(err, core.ErrCollectionNotFound) {
		return ctx.String(http.StatusNotFound, "Collection not found")
	}
	if err != nil {
		slog.Error("htmxPurchaseHandler: failed to load collection", "collection_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load collection")
	}

	message := service.coreService.PurchaseAll(collection)
	if imageID := ctx.Param("imageId"); imageID != "" {
		message, err = service.coreService.PurchaseImage(collection, imageID)
		if err != nil {
			return ctx.String(http.StatusNotFound, "Image not found")
		}
	}
	return ctx.Render(http.StatusOK, "alert", alertView{Kind: "info", Message: message})
}

func (service *FrontendService) placeholderHandler(ctx echo.Context) error {
	name := ctx.Param("name")
	width, err := strconv.Atoi(ctx.QueryParam("w"))
	if err != nil {
		width = 480
	}

	data, err := service.placeholders.PNG(name, width)
	if errors.Is(err, catalog.ErrUnknownPlaceholder) {
		return ctx.String(http.StatusNotFound, "Placeholder not found")
	}
	if err != nil {
		slog.Error("placeholderHandler: failed to render placeholder", "name", name, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render placeholder")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Blob(http.StatusOK, mimePNG, data)
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := templateFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

func (service *FrontendService) renderDraftList(ctx echo.Context, draftID string) error {
	draft, err := service.draftView(ctx, draftID, false)
	if err != nil {
		return err
	}
	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "draft-list", draft)
}

func (service *FrontendService) draftView(ctx echo.Context, draftID string, oob bool) (*draftView, error) {
	images, err := service.coreService.GetDraft(ctx.Request().Context(), draftID)
	if err != nil {
		slog.Error("failed to list draft images", "draft_id", draftID, "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to list images")
	}
	view := newDraftView(images, service.config.Currency, oob)
	return &view, nil
}

// draftID returns the visitor's draft id, issuing a new cookie on first use.
func (service *FrontendService) draftID(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(draftCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	ctx.SetCookie(&http.Cookie{
		Name:     draftCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(draftCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func isHtmx(ctx echo.Context) bool {
	return ctx.Request().Header.Get("HX-Request") == "true"
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
