package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/model"
	"github.com/movietime/ticket-booking/internal/queue"
	"github.com/movietime/ticket-booking/internal/repository"
)

// AdminHandler manages the movie catalog and show schedule.  All routes
// sit behind the ADMIN role middleware.
type AdminHandler struct {
	Movies *repository.MovieRepo
	Shows  *repository.ShowRepo
	Pub    *queue.Publisher
}

// NewAdminHandler constructs an AdminHandler.  Pub may be nil, in which
// case show.added events are skipped.
func NewAdminHandler(movies *repository.MovieRepo, shows *repository.ShowRepo, pub *queue.Publisher) *AdminHandler {
	if movies == nil || shows == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Movies: movies, Shows: shows, Pub: pub}
}

type createMovieReq struct {
	Title       string `json:"title"`
	DurationMin uint32 `json:"duration_min"`
	Genre       string `json:"genre"`
}

type createShowReq struct {
	MovieID     uint64 `json:"movie_id"`
	StartsAt    string `json:"starts_at"` // RFC3339
	PriceCents  uint32 `json:"price_cents"`
	SeatRows    uint32 `json:"seat_rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min must be positive"})
	}
	m := &model.Movie{Title: req.Title, DurationMin: req.DurationMin, Genre: strings.TrimSpace(req.Genre)}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
	}
	return c.JSON(http.StatusCreated, movieView{
		ID: m.ID, Title: m.Title, DurationMin: m.DurationMin, Genre: m.Genre,
	})
}

// CreateShow handles POST /v1/admin/shows.  It validates the movie and
// the seat geometry, persists the show and publishes a show.added event
// so subscribed users can be notified.  A publish failure does not fail
// the request; the show exists either way.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if req.SeatRows == 0 || req.SeatsPerRow == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_rows and seats_per_row must be positive"})
	}
	if req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
	}

	ctx := c.Request().Context()
	movie, err := h.Movies.GetByID(ctx, req.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}

	s := &model.Show{
		MovieID:     req.MovieID,
		StartsAt:    startsAt.UTC(),
		PriceCents:  req.PriceCents,
		SeatRows:    req.SeatRows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := h.Shows.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create show"})
	}

	if h.Pub != nil {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ev := queue.ShowAddedEvent{
			Type:       queue.EventShowAdded,
			MovieID:    movie.ID,
			MovieTitle: movie.Title,
			ShowID:     s.ID,
			StartsAt:   s.StartsAt.Format(time.RFC3339),
		}
		if err := h.Pub.PublishShowAdded(pubCtx, ev); err != nil {
			log.Printf("publish %s for show %d: %v", queue.EventShowAdded, s.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, showView{
		ID:          s.ID,
		MovieID:     s.MovieID,
		StartsAt:    s.StartsAt,
		PriceCents:  s.PriceCents,
		SeatRows:    s.SeatRows,
		SeatsPerRow: s.SeatsPerRow,
	})
}
