package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/http/handler"
	"github.com/stormhead-org/backoffice/internal/middleware"
)

type Options struct {
	Logger  *zap.Logger
	Timeout time.Duration
	Limiter *middleware.RateLimiter
	Parser  middleware.AccessTokenParser
	Tokens  middleware.TokenVerifier
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(h *handler.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		chimiddleware.RequestID,
		middleware.NewRecoverMiddleware(opts.Logger),
		middleware.NewLoggingMiddleware(opts.Logger),
	)

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	root.Route("/api/v1", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(middleware.NewRateLimitMiddleware(opts.Limiter))
		}
		if opts.Timeout > 0 {
			r.Use(chimiddleware.Timeout(opts.Timeout))
		}
		r.Use(middleware.NewAuthorizationMiddleware(opts.Logger, opts.Parser, opts.Tokens))

		registerRoutes(r, h)
	})

	return root
}

func registerRoutes(r chi.Router, h *handler.Handlers) {
	// boards
	r.Get("/boards", h.ListBoards)
	r.Get("/boards/{uid}", h.GetBoard)
	r.With(middleware.RequireToken).Post("/boards", h.CreateBoard)
	r.With(middleware.RequireToken).Put("/boards/{uid}", h.UpdateBoard)
	r.With(middleware.RequireToken).Delete("/boards/{uid}", h.DeleteBoard)

	// posts
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{uid}", h.GetPost)
	r.With(middleware.RequireUser).Post("/posts", h.CreatePost)
	r.With(middleware.RequireUser).Post("/post-files", h.UploadPostFile)
	r.With(middleware.RequireToken).Patch("/posts/{uid}", h.UpdatePost)
	r.With(middleware.RequireToken).Delete("/posts/{uid}", h.DeletePost)
	registerCommentRoutes(r, "/posts", "/post-comments", h.PostComments)

	// todos
	r.Get("/todos", h.ListTodos)
	r.Get("/todos/{uid}", h.GetTodo)
	r.With(middleware.RequireUser).Post("/todos", h.CreateTodo)
	r.With(middleware.RequireToken).Put("/todos/{uid}", h.UpdateTodo)
	r.With(middleware.RequireToken).Delete("/todos/{uid}", h.DeleteTodo)
	registerCommentRoutes(r, "/todos", "/todo-comments", h.TodoComments)

	// shop
	r.Get("/shop-items", h.ListShopItems)
	r.Get("/shop-items/{uid}", h.GetShopItem)
	r.With(middleware.RequireToken).Post("/shop-items", h.CreateShopItem)
	r.With(middleware.RequireToken).Put("/shop-items/{uid}", h.UpdateShopItem)
	r.With(middleware.RequireToken).Delete("/shop-items/{uid}", h.DeleteShopItem)

	// tokens
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken)
		r.Get("/tokens", h.ListTokens)
		r.Get("/tokens/{uid}", h.GetToken)
		r.Post("/tokens", h.CreateToken)
		r.Patch("/tokens/{uid}", h.UpdateToken)
		r.Delete("/tokens/{uid}", h.DeleteToken)
	})
}

func registerCommentRoutes(r chi.Router, owners string, comments string, h *handler.CommentHandler) {
	r.Get(owners+"/{uid}/comments", h.List)
	r.With(middleware.RequireUser).Post(owners+"/{uid}/comments", h.Create)

	r.Get(comments+"/{uid}", h.Get)
	r.With(middleware.RequireUser).Patch(comments+"/{uid}", h.Update)
	r.Delete(comments+"/{uid}", h.Delete)
	r.With(middleware.RequireToken).Post(comments+"/bulk-delete", h.DeleteMany)
	r.With(middleware.RequireUser).Post(comments+"/{uid}/like", h.ToggleLike)
}
