package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/jo-hoe/pixweb/internal/backend/commands"
	"github.com/jo-hoe/pixweb/internal/backend/commandstructure"
	"github.com/jo-hoe/pixweb/internal/backend/database"
)

// Upload is a single file submitted on the upload page together with the
// metadata entered for it.
type Upload struct {
	Data        []byte
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Price       string
}

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	previews        *commands.PreviewRenderer
	validate        *validator.Validate
	now             func() time.Time
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}
	service, err := NewCoreServiceWithDatabase(config, databaseService)
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}
	return service, nil
}

// NewCoreServiceWithDatabase builds the service on an existing store.
func NewCoreServiceWithDatabase(config *ServiceConfig, databaseService database.DatabaseService) (*CoreService, error) {
	invoker, err := commandstructure.NewCommandInvokerFromConfig(commandstructure.DefaultRegistry, config.Commands)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview pipeline: %w", err)
	}
	slog.Info("preview pipeline configured", "commands", invoker.Names())

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		previews:        commands.NewPreviewRenderer(invoker, config.MaxUploadBytes, config.MaxUploadPixels),
		validate:        validator.New(),
		now:             time.Now,
	}, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// AddImages validates every upload and renders its preview before anything
// is written, so a single bad file leaves the draft unchanged.
func (service *CoreService) AddImages(ctx context.Context, draftID string, uploads []Upload) ([]*database.Image, error) {
	if len(uploads) == 0 {
		return nil, newValidationError("Please select at least one image.", ErrNoFiles)
	}

	images := make([]*database.Image, len(uploads))
	files := make([][]byte, len(uploads))
	for i := range uploads {
		upload := uploads[i]
		upload.Title = strings.TrimSpace(upload.Title)
		upload.Description = strings.TrimSpace(upload.Description)
		upload.Category = strings.TrimSpace(upload.Category)

		if err := service.validate.Struct(upload); err != nil {
			return nil, newValidationError("Please fill in title, description and category for every image.",
				fmt.Errorf("%w: %v", ErrMissingMetadata, err))
		}
		price, err := ParsePrice(upload.Price)
		if err != nil {
			return nil, newValidationError("Please enter a valid price (a number of at least 0 with up to two decimals).", err)
		}

		images[i] = &database.Image{
			Title:       upload.Title,
			Description: upload.Description,
			Category:    upload.Category,
			PriceMinor:  int64(price),
		}
		files[i] = upload.Data
	}

	previews, err := service.previews.RenderAll(files)
	if err != nil {
		var fileErr *commands.FileError
		if errors.As(err, &fileErr) {
			switch {
			case errors.Is(err, commands.ErrUnsupportedImage):
				return nil, newValidationError(fmt.Sprintf("File %d is not a supported image.", fileErr.Index+1), err)
			case errors.Is(err, commands.ErrImageTooLarge):
				return nil, newValidationError(fmt.Sprintf("File %d is larger than %d MB.", fileErr.Index+1, service.config.MaxUploadBytes>>20), err)
			case errors.Is(err, commands.ErrTooManyPixels):
				return nil, newValidationError(fmt.Sprintf("File %d is larger than %d megapixels.", fileErr.Index+1, service.config.MaxUploadPixels/1_000_000), err)
			}
		}
		slog.Error("AddImages: failed to render previews", "draft_id", draftID, "error", err)
		return nil, newValidationError("Could not read the uploaded image.", err)
	}
	for i := range images {
		images[i].Preview = previews[i]
	}

	if _, err := service.databaseService.CreateDraftImages(ctx, draftID, images); err != nil {
		return nil, fmt.Errorf("failed to store draft images: %w", err)
	}
	slog.Debug("draft images added", "draft_id", draftID, "count", len(images))
	return images, nil
}

func (service *CoreService) GetDraft(ctx context.Context, draftID string) ([]*database.Image, error) {
	images, err := service.databaseService.GetDraftImages(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return images, nil
}

func (service *CoreService) DeleteDraftImage(ctx context.Context, draftID, imageID string) error {
	if err := service.databaseService.DeleteDraftImage(ctx, draftID, imageID); err != nil {
		return fmt.Errorf("failed to delete draft image %s: %w", imageID, err)
	}
	return nil
}

// MoveDraftImage swaps an image with its neighbour. Moving the first image up
// or the last one down is a no-op.
func (service *CoreService) MoveDraftImage(ctx context.Context, draftID, imageID string, up bool) error {
	images, err := service.GetDraft(ctx, draftID)
	if err != nil {
		return err
	}

	order := make([]string, len(images))
	existing := make(map[string]string, len(images))
	for i, img := range images {
		order[i] = img.ID
		existing[img.ID] = img.Rank
	}

	moved, ok := database.Move(order, imageID, up)
	if !ok {
		return fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	updates := database.Reorder(existing, moved)
	if len(updates) == 0 {
		return nil
	}
	if err := service.databaseService.UpdateDraftImageRanks(ctx, draftID, updates); err != nil {
		return fmt.Errorf("failed to update draft order: %w", err)
	}
	return nil
}

func (service *CoreService) ClearDraft(ctx context.Context, draftID string) error {
	return service.databaseService.ClearDraft(ctx, draftID)
}

// GenerateLink freezes the current draft into a collection. The draft itself
// is kept so the user can continue editing and generate further links.
func (service *CoreService) GenerateLink(ctx context.Context, draftID string) (*Link, error) {
	images, err := service.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, newValidationError("Please add at least one image before generating a link.", ErrEmptyCollection)
	}

	collectionImages := make([]CollectionImage, len(images))
	for i, img := range images {
		collectionImages[i] = collectionImageFromDraft(img)
	}
	_, link, err := service.CreateCollection(ctx, collectionImages, service.config.Currency)
	return link, err
}

// CreateCollection stores images as a new collection. Currency defaults to
// the configured one.
func (service *CoreService) CreateCollection(ctx context.Context, images []CollectionImage, currency string) (*Collection, *Link, error) {
	if len(images) == 0 {
		return nil, nil, newValidationError("Please add at least one image before generating a link.", ErrEmptyCollection)
	}
	if currency == "" {
		currency = service.config.Currency
	}

	id, err := database.NewCollectionID()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate collection id: %w", err)
	}
	collection := &Collection{
		ID:        id,
		Images:    append([]CollectionImage(nil), images...),
		Currency:  strings.ToUpper(currency),
		CreatedAt: service.now().UTC(),
	}

	data, err := json.Marshal(collection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize collection: %w", err)
	}
	if err := service.databaseService.PutEntry(ctx, CollectionKey(id), data); err != nil {
		return nil, nil, fmt.Errorf("failed to store collection: %w", err)
	}

	link := &Link{
		CollectionID: id,
		URL:          BuildLink(service.config.PaymentAppURL, collection),
		ImageCount:   len(collection.Images),
	}
	slog.Info("collection created", "collection_id", id, "images", link.ImageCount, "total_minor", int64(collection.Total()))
	return collection, link, nil
}

func (service *CoreService) GetCollection(ctx context.Context, id string) (*Collection, error) {
	data, err := service.databaseService.GetEntry(ctx, CollectionKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", id, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}

	var collection Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", id, err)
	}
	if collection.ID == "" {
		collection.ID = id
	}
	return &collection, nil
}

// ListCollectionIDs returns the ids of all stored collections.
func (service *CoreService) ListCollectionIDs(ctx context.Context) ([]string, error) {
	keys, err := service.databaseService.ListEntryKeys(ctx, collectionKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = strings.TrimPrefix(key, collectionKeyPrefix)
	}
	return ids, nil
}

// PurchaseImage returns the message shown for the mock purchase of a single
// image.
func (service *CoreService) PurchaseImage(collection *Collection, imageID string) (string, error) {
	if _, ok := collection.Image(imageID); !ok {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	return fmt.Sprintf("Purchase functionality for image %s would be implemented here.", imageID), nil
}

// PurchaseAll returns the message shown for the mock purchase of a whole
// collection.
func (service *CoreService) PurchaseAll(collection *Collection) string {
	return fmt.Sprintf("Purchase all images for %s would be implemented here.",
		FormatAmount(collection.Total(), collection.Currency))
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString, config.Database.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
