package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"socialhub/internal/logger"
	"socialhub/internal/model"
	"socialhub/internal/monitoring"
	"socialhub/internal/queue"
	"socialhub/internal/repository"
)

// ProfileService owns profile edits and the follow graph between profile owners.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	emitter     *queue.Emitter
	log         *logrus.Entry
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	followRepo repository.FollowRepository,
	emitter *queue.Emitter,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		followRepo:  followRepo,
		emitter:     emitter,
		log:         logger.For("ProfileService"),
	}
}

func (s *ProfileService) List(ctx context.Context, page model.Page) ([]model.Profile, int, error) {
	profiles, count, err := s.profileRepo.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(page, count); err != nil {
		return nil, 0, err
	}
	return profiles, count, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// Create makes a profile for the requester. Registration already creates one,
// so this only succeeds after the original was deleted.
func (s *ProfileService) Create(ctx context.Context, actorID int64, req *model.CreateProfileRequest) (*model.Profile, error) {
	if tooLong(req.Bio, model.MaxBioLength) {
		return nil, model.NewValidationError("bio", msgMaxLength(model.MaxBioLength))
	}

	_, err := s.profileRepo.GetByUserID(ctx, actorID)
	if err == nil {
		return nil, model.ErrProfileExists
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, err
	}

	profile := &model.Profile{
		UserID:         actorID,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID)
}

// Update edits bio and picture. A full update (partial=false) clears omitted fields.
func (s *ProfileService) Update(ctx context.Context, actorID, id int64, req *model.UpdateProfileRequest, partial bool) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.UserID != actorID {
		return nil, model.ErrForbidden
	}

	if !partial {
		profile.Bio = ""
		profile.ProfilePicture = nil
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ProfilePicture != nil {
		profile.ProfilePicture = req.ProfilePicture
		if *req.ProfilePicture == "" {
			profile.ProfilePicture = nil
		}
	}

	if tooLong(profile.Bio, model.MaxBioLength) {
		return nil, model.NewValidationError("bio", msgMaxLength(model.MaxBioLength))
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, id)
}

func (s *ProfileService) Delete(ctx context.Context, actorID, id int64) error {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if profile.UserID != actorID {
		return model.ErrForbidden
	}
	return s.profileRepo.Delete(ctx, id)
}

// ToggleFollow follows the owner of profileID if the requester does not yet
// follow them, otherwise unfollows. Returns true when following afterwards.
func (s *ProfileService) ToggleFollow(ctx context.Context, actorID, profileID int64) (bool, error) {
	target, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	if target.UserID == actorID {
		return false, model.ErrCannotFollowSelf
	}

	following, err := s.followRepo.Toggle(ctx, actorID, target.UserID)
	if err != nil {
		return false, err
	}

	monitoring.RecordToggle("follow", following)
	s.emitter.Emit(ctx, queue.NewFollowEvent(actorID, target.UserID, following))
	s.log.WithFields(logrus.Fields{
		"follower_id":  actorID,
		"following_id": target.UserID,
		"following":    following,
	}).Debug("Follow toggled")
	return following, nil
}

// Followers lists the profiles of users following the owner of profileID.
func (s *ProfileService) Followers(ctx context.Context, profileID int64) ([]model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.ListFollowers(ctx, profile.UserID)
}

// Following lists the profiles of users the owner of profileID follows.
func (s *ProfileService) Following(ctx context.Context, profileID int64) ([]model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.ListFollowing(ctx, profile.UserID)
}
