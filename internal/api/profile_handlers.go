package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/http/response"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "My page",
		Description: "Returns the caller's dashboard: profile, wordbooks, bookmarks, starred cards",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/profile",
		Summary:     "My profile",
		Description: "Returns the caller's profile, creating defaults on first access",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPresetAvatar",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/avatar/preset",
		Summary:     "Set preset avatar",
		Description: "Selects one of the built-in avatar images",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPresetAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/avatar",
		Summary:     "Upload avatar",
		Description: "Uploads a custom avatar image",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBackgroundColor",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/background",
		Summary:     "Set background color",
		Description: "Selects a profile background color from the preset palette",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetBackgroundColor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/profile",
		Summary:     "User profile",
		Description: "Returns another user's public profile",
		Tags:        []string{"Profile"},
	}, s.handleGetUserProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "avatarOptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile/options",
		Summary:     "Profile options",
		Description: "Returns the preset avatars and background color palette",
		Tags:        []string{"Profile"},
	}, s.handleProfileOptions)
}

// === DTOs ===

// GetMyInput carries only the caller's credentials.
type GetMyInput struct {
	Authorization string `header:"Authorization"`
}

// AvatarResponse is a preset filename or a custom upload URL, never both.
type AvatarResponse struct {
	Kind      string `json:"kind" doc:"Avatar kind: empty, preset, or custom"`
	Preset    string `json:"preset,omitempty" doc:"Built-in avatar filename"`
	CustomURL string `json:"custom_url,omitempty" doc:"Uploaded avatar URL"`
}

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	UserID          string         `json:"user_id" doc:"Owning user ID"`
	Avatar          AvatarResponse `json:"avatar" doc:"Selected avatar"`
	BackgroundColor string         `json:"background_color" doc:"Profile background color"`
}

func profileResponse(profile *domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID: profile.UserID,
		Avatar: AvatarResponse{
			Kind:      string(profile.Avatar.Kind),
			Preset:    profile.Avatar.Preset,
			CustomURL: profile.Avatar.CustomURL,
		},
		BackgroundColor: profile.BackgroundColor,
	}
}

// ProfileOutput wraps a profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// UserResponse contains public user data.
type UserResponse struct {
	ID        string `json:"id" doc:"User ID"`
	Username  string `json:"username" doc:"Login name"`
	FirstName string `json:"first_name" doc:"Display first name"`
	LastName  string `json:"last_name,omitempty" doc:"Display last name"`
	Role      string `json:"role" doc:"User role"`
}

func userResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

// MyPageResponse is the caller's dashboard.
type MyPageResponse struct {
	User          UserResponse       `json:"user" doc:"The caller's account"`
	Profile       ProfileResponse    `json:"profile" doc:"The caller's profile"`
	WordBooks     []WordBookResponse `json:"wordbooks" doc:"Wordbooks owned by the caller"`
	Bookmarked    []WordBookResponse `json:"bookmarked" doc:"Bookmarked wordbooks"`
	StarredCards  []CardResponse     `json:"starred_cards" doc:"Starred cards"`
	LikesReceived int                `json:"likes_received" doc:"Likes collected across the caller's wordbooks"`
}

// MyPageOutput wraps the dashboard for Huma.
type MyPageOutput struct {
	Body MyPageResponse
}

// SetPresetAvatarRequest selects a built-in avatar.
type SetPresetAvatarRequest struct {
	Name string `json:"name" doc:"Preset avatar filename"`
}

// SetPresetAvatarInput wraps the preset selection for Huma.
type SetPresetAvatarInput struct {
	Authorization string `header:"Authorization"`
	Body          SetPresetAvatarRequest
}

// UploadAvatarInput carries the raw avatar image bytes.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization"`
	RawBody       []byte
}

// SetBackgroundColorRequest selects a background color.
type SetBackgroundColorRequest struct {
	Color string `json:"color" doc:"Hex color from the preset palette"`
}

// SetBackgroundColorInput wraps the color selection for Huma.
type SetBackgroundColorInput struct {
	Authorization string `header:"Authorization"`
	Body          SetBackgroundColorRequest
}

// GetUserProfileInput identifies the profile's owner.
type GetUserProfileInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ProfileOptionsOutput lists the selectable avatar and color presets.
type ProfileOptionsOutput struct {
	Body struct {
		PresetAvatars    []string `json:"preset_avatars" doc:"Built-in avatar filenames"`
		BackgroundColors []string `json:"background_colors" doc:"Selectable background colors"`
	}
}

// === Handlers ===

func (s *Server) handleGetMyPage(ctx context.Context, input *GetMyInput) (*MyPageOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Profile.MyPage(ctx, viewer)
	if err != nil {
		return nil, err
	}

	resp := MyPageResponse{
		User:          userResponse(page.User),
		Profile:       profileResponse(page.Profile),
		WordBooks:     wordBookResponses(page.WordBooks),
		Bookmarked:    wordBookResponses(page.Bookmarked),
		StarredCards:  make([]CardResponse, len(page.StarredCards)),
		LikesReceived: page.LikesReceived,
	}
	for i, card := range page.StarredCards {
		resp.StarredCards[i] = cardResponse(card)
	}

	return &MyPageOutput{Body: resp}, nil
}

func (s *Server) handleGetMyProfile(ctx context.Context, input *GetMyInput) (*ProfileOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleSetPresetAvatar(ctx context.Context, input *SetPresetAvatarInput) (*ProfileOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.SetPresetAvatar(ctx, viewer, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*ProfileOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UploadAvatar(ctx, viewer, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleSetBackgroundColor(ctx context.Context, input *SetBackgroundColorInput) (*ProfileOutput, error) {
	viewer, err := s.requireViewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.SetBackgroundColor(ctx, viewer, input.Body.Color)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleGetUserProfile(ctx context.Context, input *GetUserProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profile.GetProfileByUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profileResponse(profile)}, nil
}

func (s *Server) handleProfileOptions(ctx context.Context, _ *struct{}) (*ProfileOptionsOutput, error) {
	out := &ProfileOptionsOutput{}
	out.Body.PresetAvatars = domain.PresetAvatars
	out.Body.BackgroundColors = domain.BackgroundColors
	return out, nil
}

// handleUserAvatar serves the stored custom avatar bytes directly.
func (s *Server) handleUserAvatar(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.services.Profile.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Avatar not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
