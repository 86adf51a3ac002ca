package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/backup"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/stats",
		Summary:     "Platform stats",
		Description: "Returns platform-wide counts and the popular tag ranking, admin only",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user account and everything it owns, admin only",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminCreateBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups",
		Summary:     "Create backup",
		Description: "Exports all server data into a new archive, admin only",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Description: "Lists backup archives on disk, newest first, admin only",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/backups/{id}",
		Summary:     "Delete backup",
		Description: "Removes a backup archive, admin only",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteBackup)
}

// === DTOs ===

// AdminStatsResponse is the platform-wide counts dashboard.
type AdminStatsResponse struct {
	Users            int                `json:"users" doc:"Registered users"`
	WordBooks        int                `json:"wordbooks" doc:"Wordbooks, public and private"`
	PublicWordBooks  int                `json:"public_wordbooks" doc:"Publicly listed wordbooks"`
	PrivateWordBooks int                `json:"private_wordbooks" doc:"Owner-only wordbooks"`
	AIWordBooks      int                `json:"ai_wordbooks" doc:"AI-generated wordbooks"`
	Cards            int                `json:"cards" doc:"Cards across all wordbooks"`
	Tags             int                `json:"tags" doc:"Distinct tags"`
	Likes            int                `json:"likes" doc:"Wordbook likes"`
	Bookmarks        int                `json:"bookmarks" doc:"Wordbook bookmarks"`
	CardStars        int                `json:"card_stars" doc:"Card stars"`
	PopularTags      []TagUsageResponse `json:"popular_tags" doc:"Most used tags, descending"`
}

// AdminStatsOutput wraps the stats dashboard for Huma.
type AdminStatsOutput struct {
	Body AdminStatsResponse
}

// AdminDeleteUserInput identifies the account to delete.
type AdminDeleteUserInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// BackupResponse describes one backup archive.
type BackupResponse struct {
	ID        string    `json:"id" doc:"Backup ID"`
	Size      int64     `json:"size" doc:"Archive size in bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupCreatedResponse is the summary of a freshly created backup.
type BackupCreatedResponse struct {
	BackupResponse
	Counts backup.EntityCounts `json:"counts" doc:"Exported entity counts"`
}

// BackupCreatedOutput wraps the create-backup summary for Huma.
type BackupCreatedOutput struct {
	Body BackupCreatedResponse
}

// BackupListOutput wraps the backup listing for Huma.
type BackupListOutput struct {
	Body struct {
		Backups []BackupResponse `json:"backups"`
	}
}

// DeleteBackupInput identifies the archive to remove.
type DeleteBackupInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Backup ID"`
}

// === Handlers ===

func (s *Server) handleAdminStats(ctx context.Context, input *GetMyInput) (*AdminStatsOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Admin.Stats(ctx, viewer)
	if err != nil {
		return nil, err
	}

	resp := AdminStatsResponse{
		Users:            stats.Users,
		WordBooks:        stats.WordBooks,
		PublicWordBooks:  stats.PublicWordBooks,
		PrivateWordBooks: stats.PrivateWordBooks,
		AIWordBooks:      stats.AIWordBooks,
		Cards:            stats.Cards,
		Tags:             stats.Tags,
		Likes:            stats.Likes,
		Bookmarks:        stats.Bookmarks,
		CardStars:        stats.CardStars,
		PopularTags:      make([]TagUsageResponse, len(stats.PopularTags)),
	}
	for i, usage := range stats.PopularTags {
		resp.PopularTags[i] = TagUsageResponse{Tag: tagResponse(usage.Tag), Count: usage.Count}
	}

	return &AdminStatsOutput{Body: resp}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *AdminDeleteUserInput) (*MessageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "user deleted"}}, nil
}

func (s *Server) handleAdminCreateBackup(ctx context.Context, input *GetMyInput) (*BackupCreatedOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Admin.CreateBackup(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return &BackupCreatedOutput{Body: BackupCreatedResponse{
		BackupResponse: BackupResponse{
			ID:        result.ID,
			Size:      result.Size,
			CreatedAt: result.CreatedAt,
		},
		Counts: result.Counts,
	}}, nil
}

func (s *Server) handleAdminListBackups(ctx context.Context, input *GetMyInput) (*BackupListOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	backups, err := s.services.Admin.ListBackups(ctx, viewer)
	if err != nil {
		return nil, err
	}

	out := &BackupListOutput{}
	out.Body.Backups = make([]BackupResponse, len(backups))
	for i, b := range backups {
		out.Body.Backups[i] = BackupResponse{ID: b.ID, Size: b.Size, CreatedAt: b.CreatedAt}
	}
	return out, nil
}

func (s *Server) handleAdminDeleteBackup(ctx context.Context, input *DeleteBackupInput) (*MessageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteBackup(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "backup deleted"}}, nil
}
