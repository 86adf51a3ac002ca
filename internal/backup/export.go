package backup

import (
	"archive/zip"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// markRow is one (user, kind, target) association in marks.jsonl.
type markRow struct {
	UserID   string          `json:"user_id"`
	Kind     domain.MarkKind `json:"kind"`
	TargetID string          `json:"target_id"`
}

// exportArchive writes every entity to a zip at outputPath as JSON Lines,
// one file per entity kind, plus a manifest. The archive is written to a
// temp file and renamed on success.
func exportArchive(ctx context.Context, s *store.Store, outputPath, version string) (*EntityCounts, error) {
	tmpPath := outputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmpPath)
	defer f.Close()

	zw := zip.NewWriter(f)

	counts := EntityCounts{}

	userIDs, err := exportUsers(ctx, s, zw, &counts)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	if err := exportProfiles(ctx, s, zw, &counts); err != nil {
		return nil, fmt.Errorf("export profiles: %w", err)
	}
	if err := exportTags(ctx, s, zw, &counts); err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}
	if err := exportWordBooksAndCards(ctx, s, zw, &counts); err != nil {
		return nil, fmt.Errorf("export wordbooks: %w", err)
	}
	if err := exportMarks(ctx, s, zw, userIDs, &counts); err != nil {
		return nil, fmt.Errorf("export marks: %w", err)
	}

	manifest := Manifest{
		Version:       FormatVersion,
		CreatedAt:     time.Now().UTC(),
		ServerVersion: version,
		Counts:        counts,
	}
	if err := writeManifest(zw, &manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return nil, fmt.Errorf("finalize backup: %w", err)
	}

	return &counts, nil
}

func exportUsers(ctx context.Context, s *store.Store, zw *zip.Writer, counts *EntityCounts) ([]string, error) {
	w, err := zw.Create("users.jsonl")
	if err != nil {
		return nil, err
	}

	var ids []string
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, err
		}
		if err := writeLine(w, user); err != nil {
			return nil, err
		}
		ids = append(ids, user.ID)
		counts.Users++
	}
	return ids, nil
}

func exportProfiles(ctx context.Context, s *store.Store, zw *zip.Writer, counts *EntityCounts) error {
	w, err := zw.Create("profiles.jsonl")
	if err != nil {
		return err
	}

	for profile, err := range s.Profiles.List(ctx) {
		if err != nil {
			return err
		}
		if err := writeLine(w, profile); err != nil {
			return err
		}
		counts.Profiles++
	}
	return nil
}

func exportTags(ctx context.Context, s *store.Store, zw *zip.Writer, counts *EntityCounts) error {
	total, err := s.CountTags(ctx)
	if err != nil {
		return err
	}

	w, err := zw.Create("tags.jsonl")
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	tags, _, err := s.ListTags(ctx, "", domain.TagOrderNameAsc, total, 0)
	if err != nil {
		return err
	}
	for i := range tags {
		if err := writeLine(w, &tags[i]); err != nil {
			return err
		}
		counts.Tags++
	}
	return nil
}

func exportWordBooksAndCards(ctx context.Context, s *store.Store, zw *zip.Writer, counts *EntityCounts) error {
	books, _, err := s.ListWordBooks(ctx, nil, 0, 0)
	if err != nil {
		return err
	}

	bw, err := zw.Create("wordbooks.jsonl")
	if err != nil {
		return err
	}
	for _, wb := range books {
		if err := writeLine(bw, wb); err != nil {
			return err
		}
		counts.WordBooks++
	}

	cw, err := zw.Create("cards.jsonl")
	if err != nil {
		return err
	}
	for _, wb := range books {
		cards, err := s.ListCardsByWordBook(ctx, wb.ID)
		if err != nil {
			return err
		}
		for _, card := range cards {
			if err := writeLine(cw, card); err != nil {
				return err
			}
			counts.Cards++
		}
	}
	return nil
}

func exportMarks(ctx context.Context, s *store.Store, zw *zip.Writer, userIDs []string, counts *EntityCounts) error {
	w, err := zw.Create("marks.jsonl")
	if err != nil {
		return err
	}

	kinds := []domain.MarkKind{domain.MarkLike, domain.MarkBookmark, domain.MarkCardStar}
	for _, userID := range userIDs {
		for _, kind := range kinds {
			targetIDs, err := s.ListMarkedTargetIDs(ctx, kind, userID)
			if err != nil {
				return err
			}
			for _, targetID := range targetIDs {
				row := markRow{UserID: userID, Kind: kind, TargetID: targetID}
				if err := writeLine(w, &row); err != nil {
					return err
				}
				counts.Marks++
			}
		}
	}
	return nil
}

func writeManifest(zw *zip.Writer, m *Manifest) error {
	w, err := zw.Create("manifest.json")
	if err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
