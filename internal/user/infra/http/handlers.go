package http

import (
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/cristianortiz/harvestBid/internal/user/application"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *application.Service
}

func NewUserHandler(users *application.Service) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(r fiber.Router) {
	g := r.Group("/users")
	g.Post("/", h.register)
	g.Put("/me", h.updateMe)
	g.Get("/:id", h.get)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var cmd application.RegisterUserDTO
	if err := httpserver.BindJSON(c, &cmd); err != nil {
		return err
	}
	u, err := h.users.Register(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *UserHandler) updateMe(c *fiber.Ctx) error {
	id, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	var p application.ProfileDTO
	if err := httpserver.BindJSON(c, &p); err != nil {
		return err
	}
	u, err := h.users.UpdateProfile(c.UserContext(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(u)
}
