package server

import (
	"bloglist/internal/models"
	"bloglist/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,name=string,password=string} true "Registration"
// @Success 200 {object} models.UserView
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewUserView(user))
}

// GetUsers handles GET /api/users
// @Summary List users
// @Description Every user with a summary of the blogs they own
// @Tags users
// @Produce json
// @Success 200 {array} models.UserView
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewUserViews(users))
}

// GetUser handles GET /api/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewUserView(user))
}
