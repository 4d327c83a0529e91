package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietime/ticket-booking/internal/cache"
	"github.com/movietime/ticket-booking/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: the movie
// catalog, upcoming shows and per-show seat availability.
type PublicHandler struct {
	Movies *repository.MovieRepo
	Shows  *repository.ShowRepo
	Ledger *repository.LedgerRepo
	Cache  *cache.Seats
}

// NewPublicHandler constructs a PublicHandler.  Cache may be nil; seat
// availability then always hits the database.
func NewPublicHandler(movies *repository.MovieRepo, shows *repository.ShowRepo, ledger *repository.LedgerRepo, seatCache *cache.Seats) *PublicHandler {
	if movies == nil || shows == nil || ledger == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Movies: movies, Shows: shows, Ledger: ledger, Cache: seatCache}
}

type movieView struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	DurationMin uint32 `json:"duration_min"`
	Genre       string `json:"genre,omitempty"`
}

type showView struct {
	ID          uint64    `json:"id"`
	MovieID     uint64    `json:"movie_id"`
	StartsAt    time.Time `json:"starts_at"`
	PriceCents  uint32    `json:"price_cents"`
	SeatRows    uint32    `json:"seat_rows"`
	SeatsPerRow uint32    `json:"seats_per_row"`
}

// ListMovies handles GET /v1/movies.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
	}
	items := make([]movieView, 0, len(movies))
	for _, m := range movies {
		items = append(items, movieView{ID: m.ID, Title: m.Title, DurationMin: m.DurationMin, Genre: m.Genre})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListShows handles GET /v1/shows.  It returns shows that have not yet
// started, soonest first.
func (h *PublicHandler) ListShows(c echo.Context) error {
	shows, err := h.Shows.ListUpcoming(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	items := make([]showView, 0, len(shows))
	for _, s := range shows {
		items = append(items, showView{
			ID: s.ID, MovieID: s.MovieID, StartsAt: s.StartsAt,
			PriceCents: s.PriceCents, SeatRows: s.SeatRows, SeatsPerRow: s.SeatsPerRow,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ShowSeats handles GET /v1/shows/:id/seats.  It returns the show's
// seat geometry together with the currently occupied seat labels.  The
// occupied list is served from a short-lived cache when available; the
// reservation path invalidates it on every claim and release, so stale
// reads are bounded by the cache TTL and always re-checked atomically
// at reserve time.
func (h *PublicHandler) ShowSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	show, err := h.Shows.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}

	occupied, ok := h.Cache.Get(ctx, showID)
	if !ok {
		occupied, err = h.Ledger.OccupiedSeats(ctx, showID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat availability"})
		}
		h.Cache.Set(ctx, showID, occupied)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"show_id":       show.ID,
		"seat_rows":     show.SeatRows,
		"seats_per_row": show.SeatsPerRow,
		"price_cents":   show.PriceCents,
		"occupied":      occupied,
		"free_count":    show.TotalSeats() - uint32(len(occupied)),
	})
}
