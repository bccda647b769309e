// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/user-service/internal/core"
	"github.com/carterperez-dev/templates/user-service/internal/middleware"
)

const maxCreateBody = 1 << 16

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the user endpoints. GET /user/{userID} sits behind
// the authenticator only when protectLookup is set.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	protectLookup bool,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireAdmin).Post("/create_user", h.CreateUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminOrUser)
			r.Get("/list_users", h.ListUsers)
			r.Get("/list_users/", h.ListUsers)
			r.Get("/permissions", h.ListPermissions)
		})
	})

	if protectLookup {
		r.With(authenticator).Get("/user/{userID}", h.GetUser)
		return
	}
	r.Get("/user/{userID}", h.GetUser)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.UnprocessableEntity(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			core.JSONError(w, core.DuplicateError("email"))
		case errors.Is(err, ErrUsernameTaken):
			core.JSONError(w, core.DuplicateError("username"))
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("user"))
		case errors.Is(err, core.ErrPasswordTooLong):
			core.UnprocessableEntity(w, fmt.Sprintf(
				"password must be at most %d bytes", core.MaxPasswordBytes,
			))
		case errors.Is(err, core.ErrInvalidInput):
			core.UnprocessableEntity(w, "unknown permission id")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		core.UnprocessableEntity(w, "user id must be an integer")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, err := parseIntQuery(r, "skip", 0)
	if err != nil {
		core.UnprocessableEntity(w, err.Error())
		return
	}

	limit, err := parseIntQuery(r, "limit", defaultListLimit)
	if err != nil {
		core.UnprocessableEntity(w, err.Error())
		return
	}

	params := ListUsersParams{
		Skip:    skip,
		Limit:   limit,
		Name:    q.Get("name"),
		Surname: q.Get("surname"),
		Email:   q.Get("email"),
	}

	if err := h.validator.Struct(params); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	users, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if perms == nil {
		perms = []Permission{}
	}

	core.OK(w, perms)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}

	return parsed, nil
}
