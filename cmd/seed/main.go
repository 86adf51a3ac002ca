// Package main provides a tool to seed the database with sample study data.
//
// It creates a handful of users, tagged wordbooks with cards, and some
// likes and bookmarks, then prints access tokens for the created users so
// the API can be exercised immediately.
//
// Usage:
//
//	BASE_PATH=~/Wordbook go run ./cmd/seed
//	BASE_PATH=~/Wordbook go run ./cmd/seed --tokens  # Also print access tokens
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/id"
	"github.com/wordbookapp/wordbook-server/internal/identity"
	"github.com/wordbookapp/wordbook-server/internal/slug"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

var printTokens = flag.Bool("tokens", false, "Print access tokens for the seeded users")

type seedBook struct {
	title       string
	description string
	tags        []string
	public      bool
	cards       [][2]string
}

var sampleBooks = []seedBook{
	{
		title:       "TOEIC Frequent Words",
		description: "High-frequency vocabulary from past TOEIC reading sections",
		tags:        []string{"TOEIC", "Business English"},
		public:      true,
		cards: [][2]string{
			{"invoice", "a list of goods sent with a statement of the sum due"},
			{"itinerary", "a planned route or journey"},
			{"quarterly", "happening every three months"},
			{"refund", "a repayment of a sum of money"},
			{"warehouse", "a large building for storing goods"},
			{"negotiate", "to obtain or bring about by discussion"},
		},
	},
	{
		title:       "Entrance Exam Essentials",
		description: "Core words for university entrance exams",
		tags:        []string{"Entrance Exam"},
		public:      true,
		cards: [][2]string{
			{"abolish", "to formally put an end to"},
			{"coherent", "logical and consistent"},
			{"diminish", "to make or become less"},
			{"profound", "very great or intense"},
			{"tentative", "not certain or fixed"},
		},
	},
	{
		title:       "My Reading Notes",
		description: "Words collected while reading",
		tags:        nil,
		public:      false,
		cards: [][2]string{
			{"serendipity", "finding something good without looking for it"},
			{"ephemeral", "lasting for a very short time"},
			{"laconic", "using very few words"},
			{"ubiquitous", "present everywhere"},
		},
	},
}

func main() {
	flag.Parse()

	basePath := os.Getenv("BASE_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/Wordbook")
	}

	dataPath := filepath.Join(basePath, "data")
	fmt.Printf("Opening database at: %s\n", dataPath)

	s, err := store.New(dataPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := seedUsers(ctx, s)
	books := seedWordBooks(ctx, s, users)
	seedMarks(ctx, s, users, books)

	if *printTokens {
		key, err := identity.LoadOrGenerateKey(filepath.Join(basePath, "identity.key"))
		if err != nil {
			log.Fatalf("Failed to load identity key: %v", err)
		}
		verifier, err := identity.NewVerifier(key, nil)
		if err != nil {
			log.Fatalf("Failed to create verifier: %v", err)
		}
		fmt.Println("\nAccess tokens (24h):")
		for _, u := range users {
			fmt.Printf("  %-8s %s\n", u.Username, verifier.Issue(u, 24*time.Hour))
		}
	}

	fmt.Println("\nSeed complete.")
}

func seedUsers(ctx context.Context, s *store.Store) []*domain.User {
	specs := []struct {
		username  string
		firstName string
		role      domain.Role
	}{
		{"hanako", "Hanako", domain.RoleMember},
		{"taro", "Taro", domain.RoleMember},
		{"admin", "Admin", domain.RoleAdmin},
	}

	users := make([]*domain.User, 0, len(specs))
	for _, spec := range specs {
		if existing, err := s.GetUserByUsername(ctx, spec.username); err == nil {
			fmt.Printf("User %s already exists, skipping\n", spec.username)
			users = append(users, existing)
			continue
		}

		now := time.Now()
		user := &domain.User{
			ID:        id.MustGenerate("user"),
			Username:  spec.username,
			FirstName: spec.firstName,
			Role:      spec.role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Users.Create(ctx, user.ID, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", spec.username, err)
		}
		fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
		users = append(users, user)
	}
	return users
}

func seedWordBooks(ctx context.Context, s *store.Store, users []*domain.User) []*domain.WordBook {
	books := make([]*domain.WordBook, 0, len(sampleBooks))
	for i, spec := range sampleBooks {
		owner := users[i%2] // Alternate between the two member accounts.

		now := time.Now()
		wb := &domain.WordBook{
			ID:          id.MustGenerate("wb"),
			OwnerID:     owner.ID,
			Title:       spec.title,
			Description: spec.description,
			IsPublic:    spec.public,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateWordBook(ctx, wb); err != nil {
			log.Fatalf("Failed to create wordbook %q: %v", spec.title, err)
		}

		for _, pair := range spec.cards {
			card := &domain.WordCard{
				ID:         id.MustGenerate("card"),
				WordBookID: wb.ID,
				FrontText:  pair[0],
				BackText:   pair[1],
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := s.CreateCard(ctx, card); err != nil {
				log.Fatalf("Failed to create card %q: %v", pair[0], err)
			}
		}

		tagIDs := make([]string, 0, len(spec.tags))
		for _, raw := range spec.tags {
			name := slug.NormalizeName(raw)
			tag := &domain.Tag{
				ID:        id.MustGenerate("tag"),
				Name:      name,
				Slug:      slug.Make(name),
				CreatorID: owner.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			stored, _, err := s.FindOrCreateTagBySlug(ctx, tag)
			if err != nil {
				log.Fatalf("Failed to create tag %q: %v", raw, err)
			}
			tagIDs = append(tagIDs, stored.ID)
		}
		if len(tagIDs) > 0 {
			if err := s.SetWordBookTags(ctx, wb, tagIDs); err != nil {
				log.Fatalf("Failed to tag wordbook %q: %v", spec.title, err)
			}
		}

		fmt.Printf("Created wordbook %q (%d cards, %d tags)\n", spec.title, len(spec.cards), len(tagIDs))
		books = append(books, wb)
	}
	return books
}

func seedMarks(ctx context.Context, s *store.Store, users []*domain.User, books []*domain.WordBook) {
	for _, wb := range books {
		if !wb.IsPublic {
			continue
		}
		for _, user := range users {
			if user.ID == wb.OwnerID {
				continue
			}
			if _, err := s.ToggleMark(ctx, domain.MarkLike, user.ID, wb.ID); err != nil {
				log.Fatalf("Failed to like wordbook: %v", err)
			}
		}
	}
	fmt.Println("Created likes on public wordbooks")
}
