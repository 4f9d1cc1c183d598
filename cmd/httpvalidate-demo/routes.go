package main

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/httpvalidate/handler"
	"github.com/dmitrymomot/httpvalidate/pkg/clientip"
	"github.com/dmitrymomot/httpvalidate/pkg/httpserver"
	"github.com/dmitrymomot/httpvalidate/pkg/requestid"
	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

func newRouter(log *slog.Logger, cfg handler.Config, store *itemStore) http.Handler {
	route := func(opts ...handler.Option) []handler.Option {
		return append([]handler.Option{handler.WithConfig(cfg), handler.WithLogger(log)}, opts...)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware())

	r.Get("/healthz", httpserver.HealthHandler())
	r.Get("/search", handler.Validate(search, route(
		handler.WithQuery(searchQuerySchema),
		handler.WithResponse(searchResultSchema),
	)...))
	r.Get("/lookup", handler.Validate(lookup, route(
		handler.WithQuery(lookupSchema),
		handler.WithExcludeNone(),
	)...))
	r.Get("/items", handler.Validate(store.list, route(
		handler.WithQuery(itemFilterSchema),
		handler.WithResponse(itemSchema),
		handler.WithResponseMany(),
	)...))
	r.Post("/items", handler.Validate(store.create, route(
		handler.WithBody(newItemSchema),
		handler.WithRequestBodyMany(),
		handler.WithResponse(itemSchema),
		handler.WithResponseMany(),
		handler.WithSuccessStatus(http.StatusCreated),
	)...))
	r.Delete("/items/{id}", handler.Validate(store.delete, route()...))
	r.Post("/feedback", handler.Validate(feedback, route(
		handler.WithForm(feedbackSchema),
	)...))

	return r
}

func search(ctx handler.Context) (any, error) {
	q, _ := handler.Query[SearchQuery](ctx)
	return SearchResult{
		Term:  strings.ToLower(q.Term),
		Page:  q.Page,
		Tags:  q.Tags,
		Exact: q.Exact,
	}, nil
}

func lookup(ctx handler.Context) (any, error) {
	q, _ := handler.Query[schema.Record](ctx)
	return q, nil
}

func feedback(ctx handler.Context) (any, error) {
	f, _ := handler.Form[Feedback](ctx)
	slog.InfoContext(ctx, "feedback received", slog.Int("rating", f.Rating))
	return handler.EmptyWithStatus(http.StatusAccepted), nil
}

// itemStore keeps items in memory, in insertion order.
type itemStore struct {
	mu    sync.RWMutex
	items []Item
}

func newItemStore() *itemStore {
	return &itemStore{}
}

func (s *itemStore) create(ctx handler.Context) (any, error) {
	batch, ok := handler.BodyMany[NewItem](ctx)
	if !ok {
		return nil, handler.ErrBadRequest
	}

	created := make([]Item, 0, len(batch))
	for _, in := range batch {
		created = append(created, Item{
			ID:    uuid.NewString(),
			Name:  in.Name,
			Price: in.Price,
			Note:  in.Note,
		})
	}

	s.mu.Lock()
	s.items = append(s.items, created...)
	s.mu.Unlock()

	return created, nil
}

func (s *itemStore) list(ctx handler.Context) (any, error) {
	filter, _ := handler.Query[ItemFilter](ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if filter.MaxPrice != nil && item.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *itemStore) delete(ctx handler.Context) (any, error) {
	id := chi.URLParam(ctx.Request(), "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(item Item) bool { return item.ID == id })
	if idx < 0 {
		return nil, handler.ErrNotFound
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return handler.Empty(), nil
}
