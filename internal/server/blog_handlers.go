package server

import (
	"bloglist/internal/models"
	"bloglist/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBlogs handles GET /api/blogs
// @Summary List blogs
// @Description Every blog with its owner and comments, ordered by id
// @Tags blogs
// @Produce json
// @Success 200 {array} models.BlogView
// @Router /blogs [get]
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	blogs, err := s.blogService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewBlogViews(blogs))
}

// GetBlog handles GET /api/blogs/:id
// @Summary Get a blog
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} models.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewBlogView(blog))
}

// GetBlogStats handles GET /api/blogs/stats
// @Summary Blog statistics
// @Description Total likes, the favorite blog and the most prolific and most liked authors
// @Tags blogs
// @Produce json
// @Success 200 {object} listhelper.Stats
// @Router /blogs/stats [get]
func (s *Server) GetBlogStats(c *fiber.Ctx) error {
	stats, err := s.blogService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// CreateBlog handles POST /api/blogs
// @Summary Create a blog
// @Description The authenticated user becomes the owner. Missing or non-numeric likes default to 0.
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,author=string,url=string,likes=int} true "Blog"
// @Success 201 {object} models.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /blogs [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	user, err := s.currentUser(c, respondWriteError)
	if err != nil {
		return nil
	}

	var req struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		URL    string `json:"url"`
		Likes  any    `json:"likes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	blog, err := s.blogService.Create(c.UserContext(), service.CreateBlogInput{
		UserID: user.ID,
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		return respondWriteError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewBlogView(blog))
}

// AddComment handles POST /api/blogs/:id/comments
// @Summary Comment on a blog
// @Tags blogs
// @Accept json
// @Produce json
// @Param id path int true "Blog ID"
// @Param request body object{comment=string} true "Comment"
// @Success 201 {object} models.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/comments [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	blog, err := s.blogService.AddComment(c.UserContext(), service.AddCommentInput{BlogID: id, Comment: req.Comment})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewBlogView(blog))
}

// UpdateBlog handles PUT /api/blogs/:id
// @Summary Update a blog
// @Description Replaces the provided fields. Requires the owner's token only when REQUIRE_OWNER_ON_UPDATE is set.
// @Tags blogs
// @Accept json
// @Produce json
// @Param id path int true "Blog ID"
// @Param request body object{title=string,author=string,url=string,likes=int} true "Fields to replace"
// @Success 200 {object} models.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [put]
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var callerID uint
	if s.blogService.RequiresOwnerOnUpdate() {
		user, err := s.currentUser(c, respondError)
		if err != nil {
			return nil
		}
		callerID = user.ID
	}

	var req struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
		URL    *string `json:"url"`
		Likes  any     `json:"likes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	blog, err := s.blogService.Update(c.UserContext(), service.UpdateBlogInput{
		BlogID:   id,
		CallerID: callerID,
		Title:    req.Title,
		Author:   req.Author,
		URL:      req.URL,
		Likes:    req.Likes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewBlogView(blog))
}

// DeleteBlog handles DELETE /api/blogs/:id
// @Summary Delete a blog
// @Description Only the owner may delete a blog. Its comments are removed with it.
// @Tags blogs
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.currentUser(c, respondWriteError)
	if err != nil {
		return nil
	}

	if err := s.blogService.Delete(c.UserContext(), service.DeleteBlogInput{BlogID: id, CallerID: user.ID}); err != nil {
		return respondWriteError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
