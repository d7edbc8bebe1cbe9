package database

import "context"

type DatabaseService interface {
	CreateDatabase() error
	DoesDatabaseExist() bool
	Close() error

	// CreateDraftImages appends images to the end of a draft in a single write.
	// IDs and ranks are assigned by the store and returned in input order.
	CreateDraftImages(ctx context.Context, draftID string, images []*Image) ([]string, error)
	GetDraftImages(ctx context.Context, draftID string) ([]*Image, error)
	DeleteDraftImage(ctx context.Context, draftID string, id string) error
	UpdateDraftImageRanks(ctx context.Context, draftID string, ranks map[string]string) error
	ClearDraft(ctx context.Context, draftID string) error

	// PutEntry stores a flat text blob under key, replacing any previous value.
	PutEntry(ctx context.Context, key string, value []byte) error
	// GetEntry returns nil without error when the key does not exist.
	GetEntry(ctx context.Context, key string) ([]byte, error)
	ListEntryKeys(ctx context.Context, prefix string) ([]string, error)
}
