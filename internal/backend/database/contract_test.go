package database

import (
	"bytes"
	"testing"
)

func runStoreContract(t *testing.T, newStore func(t *testing.T) DatabaseService) {
	t.Run("CreateAndListDraftImagesInOrder", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		ids, err := ds.CreateDraftImages(ctx, "d1", []*Image{
			{Title: "first", Description: "a", Category: "Nature", Preview: "data:image/png;base64,AA=="},
			{Title: "second", Description: "b", Category: "Street", PriceMinor: 1250},
		})
		if err != nil {
			t.Fatalf("CreateDraftImages error: %v", err)
		}
		if len(ids) != 2 || ids[0] == "" || ids[1] == "" || ids[0] == ids[1] {
			t.Fatalf("expected two distinct ids, got %v", ids)
		}
		more, err := ds.CreateDraftImages(ctx, "d1", []*Image{{Title: "third", Description: "c", Category: "Macro"}})
		if err != nil {
			t.Fatalf("CreateDraftImages #2 error: %v", err)
		}

		images, err := ds.GetDraftImages(ctx, "d1")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		if len(images) != 3 {
			t.Fatalf("expected 3 images, got %d", len(images))
		}
		wantIDs := []string{ids[0], ids[1], more[0]}
		for i, img := range images {
			if img.ID != wantIDs[i] {
				t.Errorf("image[%d].ID = %q, want %q", i, img.ID, wantIDs[i])
			}
		}
		if images[1].PriceMinor != 1250 || images[1].Category != "Street" {
			t.Errorf("fields not round-tripped: %+v", images[1])
		}
		if images[0].Preview != "data:image/png;base64,AA==" {
			t.Errorf("preview not round-tripped: %q", images[0].Preview)
		}
		if images[0].CreatedAt.IsZero() {
			t.Errorf("expected CreatedAt to be set")
		}
	})

	t.Run("DraftsAreIsolated", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		if _, err := ds.CreateDraftImages(ctx, "a", []*Image{{Title: "x", Description: "y", Category: "z"}}); err != nil {
			t.Fatalf("CreateDraftImages error: %v", err)
		}
		images, err := ds.GetDraftImages(ctx, "b")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		if len(images) != 0 {
			t.Fatalf("expected empty draft b, got %d images", len(images))
		}
	})

	t.Run("DeleteDraftImage", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		ids, err := ds.CreateDraftImages(ctx, "d", []*Image{
			{Title: "a", Description: "a", Category: "a"},
			{Title: "b", Description: "b", Category: "b"},
		})
		if err != nil {
			t.Fatalf("CreateDraftImages error: %v", err)
		}
		if err := ds.DeleteDraftImage(ctx, "d", ids[0]); err != nil {
			t.Fatalf("DeleteDraftImage error: %v", err)
		}
		images, err := ds.GetDraftImages(ctx, "d")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		if len(images) != 1 || images[0].ID != ids[1] {
			t.Fatalf("expected only %q to remain, got %+v", ids[1], images)
		}
	})

	t.Run("UpdateDraftImageRanksReorders", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		ids, err := ds.CreateDraftImages(ctx, "d", []*Image{
			{Title: "a", Description: "a", Category: "a"},
			{Title: "b", Description: "b", Category: "b"},
			{Title: "c", Description: "c", Category: "c"},
		})
		if err != nil {
			t.Fatalf("CreateDraftImages error: %v", err)
		}
		images, err := ds.GetDraftImages(ctx, "d")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		existing := map[string]string{}
		for _, img := range images {
			existing[img.ID] = img.Rank
		}
		order := []string{ids[2], ids[0], ids[1]}
		if err := ds.UpdateDraftImageRanks(ctx, "d", Reorder(existing, order)); err != nil {
			t.Fatalf("UpdateDraftImageRanks error: %v", err)
		}

		images, err = ds.GetDraftImages(ctx, "d")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		for i, img := range images {
			if img.ID != order[i] {
				t.Fatalf("position %d: got %q, want %q", i, img.ID, order[i])
			}
		}
	})

	t.Run("ClearDraft", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		if _, err := ds.CreateDraftImages(ctx, "d", []*Image{{Title: "a", Description: "a", Category: "a"}}); err != nil {
			t.Fatalf("CreateDraftImages error: %v", err)
		}
		if err := ds.ClearDraft(ctx, "d"); err != nil {
			t.Fatalf("ClearDraft error: %v", err)
		}
		images, err := ds.GetDraftImages(ctx, "d")
		if err != nil {
			t.Fatalf("GetDraftImages error: %v", err)
		}
		if len(images) != 0 {
			t.Fatalf("expected empty draft after clear, got %d", len(images))
		}
	})

	t.Run("EntriesRoundTrip", func(t *testing.T) {
		ds := newStore(t)
		ctx := t.Context()

		missing, err := ds.GetEntry(ctx, "collection_missing")
		if err != nil {
			t.Fatalf("GetEntry(missing) error: %v", err)
		}
		if missing != nil {
			t.Fatalf("expected nil for missing entry, got %q", missing)
		}

		if err := ds.PutEntry(ctx, "collection_a", []byte(`[1]`)); err != nil {
			t.Fatalf("PutEntry error: %v", err)
		}
		if err := ds.PutEntry(ctx, "collection_a", []byte(`[1,2]`)); err != nil {
			t.Fatalf("PutEntry overwrite error: %v", err)
		}
		if err := ds.PutEntry(ctx, "collection_b", []byte(`[]`)); err != nil {
			t.Fatalf("PutEntry error: %v", err)
		}
		if err := ds.PutEntry(ctx, "other_c", []byte(`{}`)); err != nil {
			t.Fatalf("PutEntry error: %v", err)
		}

		got, err := ds.GetEntry(ctx, "collection_a")
		if err != nil {
			t.Fatalf("GetEntry error: %v", err)
		}
		if !bytes.Equal(got, []byte(`[1,2]`)) {
			t.Fatalf("GetEntry = %q, want %q", got, `[1,2]`)
		}

		keys, err := ds.ListEntryKeys(ctx, "collection_")
		if err != nil {
			t.Fatalf("ListEntryKeys error: %v", err)
		}
		if len(keys) != 2 || keys[0] != "collection_a" || keys[1] != "collection_b" {
			t.Fatalf("ListEntryKeys = %v, want [collection_a collection_b]", keys)
		}
	})
}
