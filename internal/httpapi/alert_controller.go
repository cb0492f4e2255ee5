package httpapi

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/aegis-safety/backend/internal/alert"
	"github.com/aegis-safety/backend/internal/auth"
)

// userIDHeader is the identity header injected by the gateway filter; the
// gateway is the trust boundary, so the value is taken at face value.
const userIDHeader = "X-User-Id"

// AlertController serves the /api/alerts endpoints.
type AlertController struct {
	svc    *alert.Service
	logger auth.Logger
}

// NewAlertController builds the controller.
func NewAlertController(svc *alert.Service, logger auth.Logger) *AlertController {
	return &AlertController{svc: svc, logger: logger}
}

// RegisterRoutes mounts the alert endpoints on the router.
func (a *AlertController) RegisterRoutes(router fiber.Router) {
	router.Post("/", a.Create)
	// fixed paths go first so the :id parser cannot swallow them
	router.Get("/health", a.Health)
	router.Get("/active", a.ListActive)
	router.Get("/mine", a.ListMine)
	router.Get("/:id", a.Get)
	router.Patch("/:id/status", a.UpdateStatus)
	router.Post("/:id/escalate", a.Escalate)
}

// CreateAlertRequest is the alert creation payload.
type CreateAlertRequest struct {
	AlertType   string  `json:"alert_type"`
	Severity    string  `json:"severity"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address"`
}

// Validate runs the transport-level validation rules.
func (r CreateAlertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AlertType,
			validation.Required,
			validation.In(
				alert.TypeSOS, alert.TypeHarassment, alert.TypeAssault,
				alert.TypeStalking, alert.TypeMedicalEmergency, alert.TypeFire,
				alert.TypeAccident, alert.TypeSuspiciousActivity, alert.TypeOther,
			),
		),
		validation.Field(&r.Severity,
			validation.Required,
			validation.In(
				alert.SeverityLow, alert.SeverityMedium,
				alert.SeverityHigh, alert.SeverityCritical,
			),
		),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
	)
}

func (a *AlertController) Create(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, err)
	}

	payload := CreateAlertRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	record, err := a.svc.Create(c.Context(), alert.CreateInput{
		UserID:      userID,
		AlertType:   payload.AlertType,
		Severity:    payload.Severity,
		Title:       payload.Title,
		Description: payload.Description,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		Address:     payload.Address,
	})
	if err != nil {
		a.logger.Error("alert creation failed: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *AlertController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondValidation(c, err)
	}

	record, err := a.svc.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

func (a *AlertController) ListMine(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return respondError(c, err)
	}

	records, err := a.svc.ListByUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(records)
}

func (a *AlertController) ListActive(c *fiber.Ctx) error {
	records, err := a.svc.ListActive(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(records)
}

// UpdateStatusRequest is the status transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate runs the transport-level validation rules.
func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(
				alert.StatusAcknowledged, alert.StatusResponding,
				alert.StatusResolved, alert.StatusFalseAlarm, alert.StatusCancelled,
			),
		),
	)
}

func (a *AlertController) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondValidation(c, err)
	}

	actor, err := callerID(c)
	if err != nil {
		return respondError(c, err)
	}

	payload := UpdateStatusRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	record, err := a.svc.UpdateStatus(c.Context(), id, payload.Status, actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

func (a *AlertController) Escalate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondValidation(c, err)
	}

	record, err := a.svc.Escalate(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

func (a *AlertController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "UP",
		"service":   "alert-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, goerrors.New("missing caller identity", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryAuth, "invalid caller identity").
			WithCode(goerrors.CodeUnauthorized)
	}

	return id, nil
}
