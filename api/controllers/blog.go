package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	blogsvc "github.com/angelmondragon/storefront-backend/internal/blog"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type blogEntryResponse struct {
	ID        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	Contents  string                `json:"contents"`
	Author    string                `json:"author"`
	PostedAt  time.Time             `json:"posted_at"`
	Responses []blogResponsePayload `json:"responses,omitempty"`
}

type blogResponsePayload struct {
	ID          uuid.UUID `json:"id"`
	Author      string    `json:"author"`
	Contents    string    `json:"contents"`
	RespondedAt time.Time `json:"responded_at"`
}

// BlogList returns the newest entries.
func BlogList(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", blogsvc.DefaultListLimit, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListTop(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]blogEntryResponse, 0, len(entries))
		for i := range entries {
			out = append(out, newBlogEntryResponse(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// BlogEntry returns one entry with its replies.
func BlogEntry(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}

		entryID, err := parseEntryID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetEntry(r.Context(), entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBlogEntryResponse(entry))
	}
}

// BlogReply posts a reader reply. Anonymous readers may reply.
func BlogReply(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}

		entryID, err := parseEntryID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input blogsvc.ReplyInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Reply(r.Context(), auth.PrincipalFromContext(r.Context()), entryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBlogResponsePayload(reply))
	}
}

// BlogCreate publishes an entry; routed behind the blog:create capability.
func BlogCreate(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blog service unavailable"))
			return
		}

		var input blogsvc.EntryInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Create(r.Context(), auth.PrincipalFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBlogEntryResponse(entry))
	}
}

func parseEntryID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blog entry id")
	}
	return id, nil
}

func newBlogEntryResponse(e *models.BlogEntry) blogEntryResponse {
	resp := blogEntryResponse{
		ID:       e.ID,
		Title:    e.Title,
		Contents: e.Contents,
		Author:   e.Author,
		PostedAt: e.PostedAt,
	}
	for i := range e.Responses {
		resp.Responses = append(resp.Responses, newBlogResponsePayload(&e.Responses[i]))
	}
	return resp
}

func newBlogResponsePayload(r *models.BlogResponse) blogResponsePayload {
	return blogResponsePayload{
		ID:          r.ID,
		Author:      r.Author,
		Contents:    r.Contents,
		RespondedAt: r.RespondedAt,
	}
}
