package services

import (
	"context"
	"strings"

	"knowledge-base-api/models"
	"knowledge-base-api/repositories"

	"golang.org/x/crypto/bcrypt"
)

// Actor is the authenticated caller of a mutation.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type UserService interface {
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
	GetUser(ctx context.Context, id uint) (*models.UserDetail, error)
	UpdateUser(ctx context.Context, actor Actor, id uint, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	store      *repositories.Store
	bcryptCost int
}

func NewUserService(store *repositories.Store) UserService {
	return &userService{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.store.Users.ListWithArticleCounts(ctx)
	if err != nil {
		return nil, storeError("list users", err, "")
	}
	if users == nil {
		users = []models.UserListItem{}
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*models.UserDetail, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load user", err, "User not found")
	}

	articles, err := s.store.Articles.ListByAuthor(ctx, id)
	if err != nil {
		return nil, storeError("list user articles", err, "")
	}

	summaries := make([]models.UserArticleSummary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, models.UserArticleSummary{
			ID:        a.ID,
			Title:     a.Title,
			Category:  a.Category.Name,
			CreatedAt: a.CreatedAt,
		})
	}

	return &models.UserDetail{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		Articles:  summaries,
	}, nil
}

// UpdateUser applies a partial profile update. Callers may edit only their
// own profile unless they are admins, and only admins may change roles.
func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uint, req models.UpdateUserRequest) (*models.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, models.ErrorForbidden{Message: "You can only update your own profile"}
	}
	if req.Role != nil && !actor.IsAdmin() {
		return nil, models.ErrorForbidden{Message: "Only admins can change roles"}
	}

	var updated *models.User
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.GetByID(ctx, id)
		if err != nil {
			return storeError("load user", err, "User not found")
		}

		if req.Username != nil {
			username := strings.TrimSpace(*req.Username)
			if username == "" {
				return models.Invalid("Username cannot be empty")
			}
			existing, err := tx.Users.GetByUsername(ctx, username)
			if err == nil && existing.ID != id {
				return models.ErrorConflict{Message: "Username already taken"}
			}
			if err != nil && !isNotFound(err) {
				return storeError("check username", err, "")
			}
			user.Username = username
		}

		if req.Email != nil {
			email := strings.TrimSpace(*req.Email)
			if email == "" {
				return models.Invalid("Email cannot be empty")
			}
			existing, err := tx.Users.GetByEmail(ctx, email)
			if err == nil && existing.ID != id {
				return models.ErrorConflict{Message: "Email already taken"}
			}
			if err != nil && !isNotFound(err) {
				return storeError("check email", err, "")
			}
			user.Email = email
		}

		if req.Password != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
			if err != nil {
				return storeError("hash password", err, "")
			}
			user.Password = string(hashed)
		}

		if req.Role != nil {
			user.Role = *req.Role
		}

		if err := tx.Users.Update(ctx, user); err != nil {
			return storeError("update user", err, "")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user's articles (with their tag links and
// feedback), detaches the user's remaining feedback, then the user.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetByID(ctx, id); err != nil {
			return storeError("load user", err, "User not found")
		}

		articleIDs, err := tx.Articles.IDsByAuthor(ctx, id)
		if err != nil {
			return storeError("list user articles", err, "")
		}
		if err := deleteArticles(ctx, tx, articleIDs...); err != nil {
			return err
		}

		if err := tx.Feedback.DetachUser(ctx, id); err != nil {
			return storeError("detach user feedback", err, "")
		}

		if err := tx.Users.Delete(ctx, id); err != nil {
			return storeError("delete user", err, "")
		}
		return nil
	})
}
