package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/monitoring"
	"socialhub/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// UserService handles account registration, login and account edits.
type UserService struct {
	repo repository.UserRepository
	log  *logrus.Entry
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
		log:  logger.For("UserService"),
	}
}

// Register validates the sign-up payload and creates the user together with
// its empty profile. Field problems are reported as a *model.ValidationError.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	verr := &model.ValidationError{}

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		verr.Add("username", msgRequired)
	case tooLong(username, model.MaxUsernameLength):
		verr.Add("username", msgMaxLength(model.MaxUsernameLength))
	case !usernamePattern.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if req.Password == "" {
		verr.Add("password", msgRequired)
	}
	if req.Password2 == "" {
		verr.Add("password2", msgRequired)
	}
	if !validEmail(req.Email) {
		verr.Add("email", msgInvalidEmail)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if req.Password != req.Password2 {
		return nil, model.NewValidationError("password", "Password fields didn't match.")
	}

	user := &model.User{
		Username:  username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	for _, msg := range ValidatePassword(req.Password, user) {
		verr.Add("password", msg)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, usernameTaken()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHashed = string(hashedPassword)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	monitoring.RegisterSuccess.Inc()
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

func usernameTaken() error {
	return model.NewValidationError("username", "A user with that username already exists.")
}

// Login authenticates by username and password. Unknown users, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		monitoring.LoginFailure.WithLabelValues("wrong_password").Inc()
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		monitoring.LoginFailure.WithLabelValues("inactive").Inc()
		return nil, model.ErrInvalidCredentials
	}

	monitoring.LoginSuccess.Inc()
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of users ordered by id.
func (s *UserService) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]model.User, int, error) {
	users, count, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Update changes the editable account fields. Only the account owner may
// update it; a full update (partial=false) resets omitted fields to empty.
func (s *UserService) Update(ctx context.Context, actorID, id int64, req *model.UpdateUserRequest, partial bool) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID != actorID {
		return nil, model.ErrForbidden
	}

	if !partial {
		user.Email, user.FirstName, user.LastName = "", "", ""
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if !validEmail(user.Email) {
		return nil, model.NewValidationError("email", msgInvalidEmail)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account and, through cascades, everything it owns.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.ID != actorID {
		return model.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("User deleted")
	return nil
}
