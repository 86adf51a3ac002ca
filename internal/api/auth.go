package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/domain"
)

// viewerFromHeader resolves the Authorization header to a viewer.
// A missing header yields the anonymous viewer so public reads work
// unauthenticated; a present but invalid token is still rejected, never
// silently downgraded.
func (s *Server) viewerFromHeader(authHeader string) (domain.Viewer, error) {
	if authHeader == "" {
		return domain.Anonymous, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.Anonymous, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.verifier.Verify(parts[1])
	if err != nil {
		return domain.Anonymous, huma.Error401Unauthorized("Invalid or expired token")
	}
	return s.verifier.ViewerFor(claims), nil
}

// requireViewerFromHeader resolves the header and rejects anonymous
// callers, for the operations that only make sense signed in.
func (s *Server) requireViewerFromHeader(authHeader string) (domain.Viewer, error) {
	viewer, err := s.viewerFromHeader(authHeader)
	if err != nil {
		return domain.Anonymous, err
	}
	if !viewer.Authenticated {
		return domain.Anonymous, huma.Error401Unauthorized("Authentication required")
	}
	return viewer, nil
}
