package blog

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"github.com/google/uuid"
)

const (
	// DefaultListLimit is used when ListTop is called without a positive limit.
	DefaultListLimit = 10
	maxListLimit     = 100

	// AnonymousAuthor signs replies from callers without a principal.
	AnonymousAuthor = "Anonymous"
)

type repository interface {
	ListTop(ctx context.Context, limit int) ([]models.BlogEntry, error)
	FindEntry(ctx context.Context, id uuid.UUID) (*models.BlogEntry, error)
	CreateEntry(ctx context.Context, entry *models.BlogEntry) (*models.BlogEntry, error)
	CreateResponse(ctx context.Context, response *models.BlogResponse) (*models.BlogResponse, error)
	EntryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ReplyInput is the body of POST /blog/{entryId}/replies.
type ReplyInput struct {
	Contents string `json:"contents" validate:"required,max=4000" msg_required:"Please enter a reply"`
}

// EntryInput is the body of POST /blog.
type EntryInput struct {
	Title    string `json:"title" validate:"required,max=200" msg_required:"Please enter a title"`
	Contents string `json:"contents" validate:"required,max=20000" msg_required:"Please enter the entry contents"`
}

type Service interface {
	ListTop(ctx context.Context, limit int) ([]models.BlogEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*models.BlogEntry, error)
	Reply(ctx context.Context, principal *auth.Principal, entryID uuid.UUID, input ReplyInput) (*models.BlogResponse, error)
	Create(ctx context.Context, principal *auth.Principal, input EntryInput) (*models.BlogEntry, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(r repository, now func() time.Time) (Service, error) {
	if r == nil {
		return nil, fmt.Errorf("blog repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: r, now: now}, nil
}

func (s *service) ListTop(ctx context.Context, limit int) ([]models.BlogEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := s.repo.ListTop(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blog entries")
	}
	return entries, nil
}

func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*models.BlogEntry, error) {
	entry, err := s.repo.FindEntry(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog entry not found")
		}
		return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "load blog entry %s", id)
	}
	return entry, nil
}

// Reply stores an escaped response signed by the caller, or Anonymous.
func (s *service) Reply(ctx context.Context, principal *auth.Principal, entryID uuid.UUID, input ReplyInput) (*models.BlogResponse, error) {
	input.Contents = strings.TrimSpace(input.Contents)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	exists, err := s.repo.EntryExists(ctx, entryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog entry")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog entry not found")
	}

	author := AnonymousAuthor
	if principal != nil && strings.TrimSpace(principal.Username) != "" {
		author = strings.TrimSpace(principal.Username)
	}

	response, err := s.repo.CreateResponse(ctx, &models.BlogResponse{
		BlogEntryID: entryID,
		Author:      html.EscapeString(author),
		Contents:    html.EscapeString(input.Contents),
		RespondedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blog response")
	}
	return response, nil
}

// Create publishes an entry. Callers without blog:create are rejected even
// when the route was not gated.
func (s *service) Create(ctx context.Context, principal *auth.Principal, input EntryInput) (*models.BlogEntry, error) {
	if principal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !principal.Has(auth.CapabilityBlogCreate) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Contents = strings.TrimSpace(input.Contents)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	entry, err := s.repo.CreateEntry(ctx, &models.BlogEntry{
		Title:    html.EscapeString(input.Title),
		Contents: html.EscapeString(input.Contents),
		Author:   html.EscapeString(principal.Username),
		PostedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blog entry")
	}
	return entry, nil
}
