// handlers/achievement_routes.go
package handlers

import (
	"strconv"
	"time"

	"job-tracker-system/middleware"
	"job-tracker-system/models"
	"job-tracker-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// applicationEventRequest is the mutation event the Application service
// forwards through the gateway on every create/update/delete.
type applicationEventRequest struct {
	EventType     string `json:"event_type" validate:"required,oneof=created updated deleted"`
	ApplicationID string `json:"application_id" validate:"required"`
	UserID        string `json:"user_id" validate:"required"`

	Company            string     `json:"company"`
	Position           string     `json:"position"`
	DateApplied        string     `json:"date_applied" validate:"required_unless=EventType deleted,omitempty,datetime=2006-01-02"`
	AppliedAt          *time.Time `json:"applied_at"`
	Status             string     `json:"status" validate:"omitempty,oneof=applied interview offer rejected"`
	JobType            string     `json:"job_type" validate:"omitempty,oneof=remote onsite hybrid"`
	AttachmentCategory string     `json:"attachment_category" validate:"omitempty,oneof=resume cover_letter portfolio"`
}

// goalEventRequest is the mutation event the Goal service forwards on every
// goal change.
type goalEventRequest struct {
	GoalID      string     `json:"goal_id" validate:"required"`
	UserID      string     `json:"user_id" validate:"required"`
	Period      string     `json:"period" validate:"required,oneof=weekly monthly total"`
	Target      int64      `json:"target" validate:"gte=0"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

func SetupAchievementRoutes(app *fiber.App, evalService *services.EvaluationService, catalogService *services.CatalogService, authClient *services.AuthServiceClient) {
	// Collaborator event intake: gateway-token protected (global middleware),
	// user identified by payload since these are service-to-service calls.
	events := app.Group("/events")

	events.Post("/application", func(c *fiber.Ctx) error {
		var req applicationEventRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON", "cause": err.Error(),
			})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid event payload", "cause": err.Error(),
			})
		}

		if req.EventType == "deleted" {
			if err := evalService.DeleteApplication(c.UserContext(), req.ApplicationID); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to remove application mirror", "cause": err.Error(),
				})
			}
		} else {
			dateApplied, err := time.ParseInLocation("2006-01-02", req.DateApplied, time.UTC)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid date_applied", "cause": err.Error(),
				})
			}
			app := models.ApplicationEvent{
				ExternalAppID:      req.ApplicationID,
				ExternalUserID:     req.UserID,
				Company:            req.Company,
				Position:           req.Position,
				DateApplied:        dateApplied,
				Status:             models.ApplicationStatus(req.Status),
				JobType:            models.JobType(req.JobType),
				AttachmentCategory: models.AttachmentCategory(req.AttachmentCategory),
			}
			if app.Status == "" {
				app.Status = models.StatusApplied
			}
			if req.AppliedAt != nil {
				app.AppliedAt = *req.AppliedAt
			} else {
				app.AppliedAt = dateApplied
			}
			if err := evalService.UpsertApplication(c.UserContext(), app); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upsert application mirror", "cause": err.Error(),
				})
			}
		}

		// Recompute runs async; the mutation path never blocks on evaluation.
		evalService.ScheduleRecompute(req.UserID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "recompute scheduled"})
	})

	events.Post("/goal", func(c *fiber.Ctx) error {
		var req goalEventRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON", "cause": err.Error(),
			})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid event payload", "cause": err.Error(),
			})
		}

		goal := models.Goal{
			ExternalGoalID: req.GoalID,
			ExternalUserID: req.UserID,
			Period:         models.GoalPeriod(req.Period),
			Target:         req.Target,
			Completed:      req.Completed,
			CompletedAt:    req.CompletedAt,
		}
		if err := evalService.UpsertGoal(c.UserContext(), goal); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upsert goal mirror", "cause": err.Error(),
			})
		}

		evalService.ScheduleRecompute(req.UserID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "recompute scheduled"})
	})

	// 🔐 Secured routes — require user context from gateway headers.
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snap, err := evalService.SnapshotFor(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load achievements", "cause": err.Error(),
			})
		}

		filter := services.AchievementFilter{
			Category: models.AchievementCategory(c.Query("category")),
			Tier:     models.AchievementTier(c.Query("tier")),
			Query:    c.Query("q"),
		}
		if raw := c.Query("unlocked"); raw != "" {
			unlocked, err := strconv.ParseBool(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid unlocked filter", "cause": err.Error(),
				})
			}
			filter.Unlocked = &unlocked
		}

		views := services.FilterAchievements(snap.Achievements, filter)
		return c.JSON(fiber.Map{
			"achievements": views,
			"total":        len(snap.Achievements),
			"matched":      len(views),
			"generated_at": snap.GeneratedAt,
		})
	})

	secured.Get("/user/level", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snap, err := evalService.SnapshotFor(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load level summary", "cause": err.Error(),
			})
		}
		return c.JSON(snap.Level)
	})

	secured.Get("/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snap, err := evalService.SnapshotFor(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load streak summary", "cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"daily_streak":          snap.Stats.DailyStreak,
			"longest_streak":        snap.Stats.LongestStreak,
			"last_application_date": snap.Stats.LastApplicationDate,
			"streak_start_date":     snap.Stats.StreakStartDate,
		})
	})

	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snap, err := evalService.SnapshotFor(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress", "cause": err.Error(),
			})
		}
		return c.JSON(snap)
	})

	// SSE stream authenticates by query token (EventSource cannot send the
	// gateway's user headers), so it sits outside the secured group.
	app.Get("/s/user/achievements/stream", middleware.SSEAuthMiddleware(authClient), evalService.StreamUnlocksSSE)

	// Admin endpoints
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	admin.Post("/rebuild", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON", "cause": err.Error(),
			})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request", "cause": err.Error(),
			})
		}

		snap, err := evalService.Recompute(c.UserContext(), req.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "rebuild failed", "cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "progress rebuilt from history",
			"user_id": req.UserID,
			"stats":   snap.Stats,
		})
	})

	admin.Get("/catalog", func(c *fiber.Ctx) error {
		if !catalogService.Enabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "achievement catalog unavailable this session",
			})
		}
		entries := catalogService.Entries()
		out := make([]fiber.Map, 0, len(entries))
		for _, e := range entries {
			out = append(out, fiber.Map{
				"id":           e.ID,
				"name":         e.Name,
				"description":  e.Description,
				"icon":         e.Icon,
				"category":     e.Category,
				"tier":         e.Tier,
				"rarity":       e.Rarity,
				"xp_reward":    e.XPReward,
				"requirements": len(e.Requirements),
			})
		}
		return c.JSON(out)
	})
}
