package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/skycast/internal/common"
	"github.com/i474232898/skycast/internal/weather"
)

const appName = "skycast"

var validate = validator.New()

// User-facing messages of the sentinel errors.
const (
	msgNotFound         = "City not found."
	msgConnectivity     = "Connection failed."
	msgPermissionDenied = "Location permission denied."
)

// NewApp builds the Fiber app with the centralized error handler, the global
// middleware, the health endpoint and the API routes.
func NewApp(service *weather.Service, log *zap.SugaredLogger, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal error"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			} else {
				log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	if accessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	RegisterRoutes(app, service, log)
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, log *zap.SugaredLogger) {
	h := &handlers{service: service, log: log, now: time.Now}

	v1 := app.Group("/api/v1")
	v1.Get("/tips", h.tips)
	v1.Post("/profiles", h.createProfile)

	p := v1.Group("/profiles/:profile", h.requireProfile)
	p.Get("/settings", h.settings)
	p.Put("/unit", h.setUnit)
	p.Put("/theme", h.setTheme)
	p.Post("/favorites", h.toggleFavorite)
	p.Get("/search", h.search)
	p.Post("/locate", h.locate)
}

type handlers struct {
	service *weather.Service
	log     *zap.SugaredLogger
	now     func() time.Time
}

func (h *handlers) createProfile(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": uuid.NewString()})
}

func (h *handlers) requireProfile(c *fiber.Ctx) error {
	if err := validate.Var(c.Params("profile"), "required,uuid4"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "profile must be a UUID")
	}
	return c.Next()
}

func (h *handlers) settings(c *fiber.Ctx) error {
	s, err := h.service.Settings(c.UserContext(), c.Params("profile"))
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(s)
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=celsius fahrenheit"`
}

func (h *handlers) setUnit(c *fiber.Ctx) error {
	var req unitRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	unit, err := weather.ParseUnit(req.Unit)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s, err := h.service.SetUnit(c.UserContext(), c.Params("profile"), unit)
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(s)
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func (h *handlers) setTheme(c *fiber.Ctx) error {
	var req themeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	theme, err := weather.ParseTheme(req.Theme)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s, err := h.service.SetTheme(c.UserContext(), c.Params("profile"), theme)
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(s)
}

type favoriteRequest struct {
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (h *handlers) toggleFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	loc := weather.Location{
		Name:      req.Name,
		Country:   req.Country,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	s, err := h.service.ToggleFavorite(c.UserContext(), c.Params("profile"), loc)
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(s)
}

func (h *handlers) search(c *fiber.Ctx) error {
	res, err := h.service.Search(c.UserContext(), c.Params("profile"), c.Query("q"))
	if errors.Is(err, weather.ErrEmptyQuery) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(weather.BuildDashboard(res.Snapshot, res.Settings, h.now()))
}

// locateRequest carries either the position the browser obtained or the
// reason it could not obtain one.
type locateRequest struct {
	Latitude  *float64 `json:"lat" validate:"required_without=Error,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"lon" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Error     string   `json:"error"`
	Initial   bool     `json:"initial"`
}

func (r locateRequest) locator() weather.Locator {
	if r.Latitude != nil && r.Longitude != nil {
		return weather.Position{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	err := weather.ErrLocationUnavailable
	if common.HasAny(r.Error, "denied", "permission") {
		err = weather.ErrPermissionDenied
	}
	return weather.LocatorError{Err: err, Reason: r.Error}
}

func (h *handlers) locate(c *fiber.Ctx) error {
	var req locateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Detect(c.UserContext(), c.Params("profile"), req.locator(), req.Initial)
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(weather.BuildDashboard(res.Snapshot, res.Settings, h.now()))
}

type tipsQuery struct {
	Temperature float64 `query:"temp"`
	Humidity    float64 `query:"humidity" validate:"gte=0,lte=100"`
	WindSpeed   float64 `query:"wind" validate:"gte=0"`
	WeatherCode int     `query:"code" validate:"gte=0"`
}

func (h *handlers) tips(c *fiber.Ctx) error {
	var q tipsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	tips := weather.GenerateTips(weather.CurrentConditions{
		Temperature: q.Temperature,
		Humidity:    q.Humidity,
		WindSpeed:   q.WindSpeed,
		WeatherCode: q.WeatherCode,
	})
	return c.JSON(fiber.Map{"tips": tips})
}

func bindBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// serviceError maps the service's sentinel errors to HTTP errors.
func (h *handlers) serviceError(err error) error {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msgNotFound)
	case errors.Is(err, weather.ErrConnectivity):
		return fiber.NewError(fiber.StatusBadGateway, msgConnectivity)
	case errors.Is(err, weather.ErrPermissionDenied):
		return fiber.NewError(fiber.StatusForbidden, msgPermissionDenied)
	}
	h.log.Errorw("service call failed", "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}
