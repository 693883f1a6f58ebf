// handlers/trophy_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"review-trophy-service/middleware"
	"review-trophy-service/models"
	"review-trophy-service/services"
	"review-trophy-service/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// TrophyView is the JSON shape of an awarded trophy.
type TrophyView struct {
	ID              uint      `json:"id"`
	TrophyType      string    `json:"trophy_type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	IconURL         string    `json:"icon_url"`
	Summary         string    `json:"summary"`
	ReviewRequestID int64     `json:"review_request_id"`
	UserID          int64     `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type trophyHandler struct {
	trophies *services.TrophyService
	icons    *utils.IconStore
	log      *zap.Logger
	printer  *message.Printer
}

func SetupTrophyRoutes(app *fiber.App, trophyService *services.TrophyService, icons *utils.IconStore, log *zap.Logger) {
	h := &trophyHandler{
		trophies: trophyService,
		icons:    icons,
		log:      log,
		printer:  message.NewPrinter(language.English),
	}

	// 🔓 Read-only routes — still behind Gateway auth
	app.Get("/trophy-kinds", h.listKinds)
	app.Get("/review-requests/:id/trophies", h.listForReviewRequest)
	app.Get("/users/:id/trophies", h.listForUser)

	// 🔐 Secured routes — require user context
	secured := app.Group("/s", middleware.UserContextMiddleware(log))
	secured.Post("/review-requests/:id/trophies", h.compute)
}

func (h *trophyHandler) listKinds(c *fiber.Ctx) error {
	kinds := h.trophies.Registry.Kinds()
	response := make([]fiber.Map, 0, len(kinds))
	for _, k := range kinds {
		response = append(response, fiber.Map{
			"id":          k.ID,
			"title":       k.Title,
			"description": k.Description,
			"icon_url":    h.icons.URL(k.IconURL),
		})
	}
	return c.JSON(response)
}

func (h *trophyHandler) listForReviewRequest(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid review request id"})
	}
	trophies, err := h.trophies.TrophiesForReviewRequest(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get trophies",
			"cause": err.Error(),
		})
	}
	return c.JSON(h.views(trophies))
}

func (h *trophyHandler) listForUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	trophies, err := h.trophies.TrophiesForUser(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get trophies",
			"cause": err.Error(),
		})
	}
	return c.JSON(h.views(trophies))
}

func (h *trophyHandler) compute(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid review request id"})
	}

	var req struct {
		UserID *int64 `json:"user_id"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
	}

	rr, err := h.trophies.GetReviewRequest(ctx, id)
	if err != nil {
		return lookupError(c, "review request", err)
	}

	user := &rr.Submitter
	if req.UserID != nil {
		if user, err = h.trophies.GetUser(ctx, *req.UserID); err != nil {
			return lookupError(c, "user", err)
		}
	}

	awarded, err := h.trophies.ComputeTrophies(ctx, rr, user)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReviewRequest) || errors.Is(err, services.ErrInvalidUser) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "cannot compute trophies",
				"cause": err.Error(),
			})
		}
		h.log.Error("trophy computation failed", zap.Int64("review_request_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "trophy computation failed",
			"cause": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"review_request_id": rr.ID,
		"user_id":           user.ID,
		"awarded":           h.views(awarded),
	})
}

func (h *trophyHandler) views(trophies []models.Trophy) []TrophyView {
	out := make([]TrophyView, 0, len(trophies))
	for _, t := range trophies {
		view := TrophyView{
			ID:              t.ID,
			TrophyType:      t.TrophyType,
			ReviewRequestID: t.ReviewRequestID,
			UserID:          t.UserID,
			CreatedAt:       t.CreatedAt,
		}
		// rows for kinds no longer registered are still listed, without metadata
		if kind, err := h.trophies.Registry.KindOf(t); err == nil {
			view.Title = kind.Title
			view.Description = kind.Description
			view.IconURL = h.icons.URL(kind.IconURL)
			view.Summary = h.printer.Sprintf("Review request #%d earned the %s", t.ReviewRequestID, kind.Title)
		}
		out = append(out, view)
	}
	return out
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func lookupError(c *fiber.Ctx, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "DB error fetching " + what,
		"cause": err.Error(),
	})
}
