package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateMeRequest struct {
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	Phone      *string  `json:"phone"`
	Profession *string  `json:"profession"`
	Country    *string  `json:"country"`
	ProfilePic *string  `json:"profile_pic"`
	Bio        *string  `json:"bio"`
	Website    *string  `json:"website"`
	Interests  []string `json:"interests"`
}

// GetMe handles GET /api/user/me
// @Summary Get my account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=AccountView}
// @Failure 401 {object} models.Envelope
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	view, err := s.accounts.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, accountView(view), "")
}

// UpdateMe handles PATCH /api/user/me
// @Summary Update my account
// @Description Only the fields present in the body are changed
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateMeRequest true "Account fields"
// @Success 200 {object} models.Envelope{data=AccountView}
// @Failure 400 {object} models.Envelope
// @Router /user/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req updateMeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	view, err := s.accounts.UpdateMe(c.UserContext(), middleware.UserID(c), service.UpdateAccountInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Profession: req.Profession,
		Country:    req.Country,
		ProfilePic: req.ProfilePic,
		Bio:        req.Bio,
		Website:    req.Website,
		Interests:  req.Interests,
	})
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, accountView(view), "Profile updated")
}

// GetFollowStatus handles GET /api/user/follow-unfollow?user=<uuid>
// @Summary Am I following a user
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param user query string true "Target user UUID"
// @Success 200 {object} models.Envelope{data=object{following=bool}}
// @Failure 404 {object} models.Envelope
// @Router /user/follow-unfollow [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	following, err := s.social.IsFollowing(c.UserContext(), middleware.UserID(c), c.Query("user"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, fiber.Map{"following": following}, "")
}

// FollowUnfollow handles POST /api/user/follow-unfollow
// @Summary Follow or unfollow a user
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{user=string,action=string} true "action is follow or unfollow"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /user/follow-unfollow [post]
func (s *Server) FollowUnfollow(c *fiber.Ctx) error {
	var req struct {
		User   string `json:"user"`
		Action string `json:"action"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, actor := c.UserContext(), middleware.UserID(c)
	switch req.Action {
	case "follow":
		if err := s.social.Follow(ctx, actor, req.User); err != nil {
			return fail(c, err)
		}
		return respondOK(c, nil, "You are now following this user")
	case "unfollow":
		if err := s.social.Unfollow(ctx, actor, req.User); err != nil {
			return fail(c, err)
		}
		return respondOK(c, nil, "You have unfollowed this user")
	default:
		return fail(c, models.NewFieldError("action", "Must be follow or unfollow."))
	}
}

// ListPeople handles GET /api/people
// @Summary List verified users
// @Tags social
// @Produce json
// @Param name query string false "First or last name contains"
// @Param country query string false "Country"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope{data=PageView[UserSummary]}
// @Router /people [get]
func (s *Server) ListPeople(c *fiber.Ctx) error {
	list, err := s.social.ListPeople(c.UserContext(), repository.PeopleFilter{
		Name:    c.Query("name"),
		Country: c.Query("country"),
	}, parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, summaryOf), "")
}

// GetPerson handles GET /api/people/:uuid
// @Summary Get a user's public profile
// @Tags social
// @Produce json
// @Param uuid path string true "User UUID"
// @Success 200 {object} models.Envelope{data=PersonView}
// @Failure 404 {object} models.Envelope
// @Router /people/{uuid} [get]
func (s *Server) GetPerson(c *fiber.Ctx) error {
	person, err := s.social.GetPerson(c.UserContext(), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, PersonView{
		UserSummary: *userSummary(&person.User),
		Profile:     profileView(person.Profile),
	}, "")
}

// ListFollowers handles GET /api/followers/:uuid
// @Summary List a user's followers
// @Tags social
// @Produce json
// @Param uuid path string true "User UUID"
// @Success 200 {object} models.Envelope{data=PageView[UserSummary]}
// @Failure 404 {object} models.Envelope
// @Router /followers/{uuid} [get]
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	list, err := s.social.Followers(c.UserContext(), c.Params("uuid"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, summaryOf), "")
}

// ListFollowing handles GET /api/following/:uuid
// @Summary List the users a user follows
// @Tags social
// @Produce json
// @Param uuid path string true "User UUID"
// @Success 200 {object} models.Envelope{data=PageView[UserSummary]}
// @Failure 404 {object} models.Envelope
// @Router /following/{uuid} [get]
func (s *Server) ListFollowing(c *fiber.Ctx) error {
	list, err := s.social.Following(c.UserContext(), c.Params("uuid"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, summaryOf), "")
}

func summaryOf(u *models.User) UserSummary {
	return *userSummary(u)
}
