package service

import (
	"context"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// Person is a public account with its profile.
type Person struct {
	User    models.User
	Profile *models.Profile
}

// SocialService owns the people directory and the follow graph.
type SocialService struct {
	store *repository.Store
	bus   *events.Bus
}

func NewSocialService(store *repository.Store, bus *events.Bus) *SocialService {
	return &SocialService{store: store, bus: bus}
}

// ListPeople returns verified accounts matching filter.
func (s *SocialService) ListPeople(ctx context.Context, filter repository.PeopleFilter, page Page) (*List[models.User], error) {
	page = page.Normalize()
	users, total, err := s.store.Users.ListVerified(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.User]{Items: users, Total: total, Page: page}, nil
}

// GetPerson returns a verified account by public id.
func (s *SocialService) GetPerson(ctx context.Context, ref string) (*Person, error) {
	user, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Person{User: *user, Profile: profile}, nil
}

// Followers lists the accounts following ref.
func (s *SocialService) Followers(ctx context.Context, ref string, page Page) (*List[models.User], error) {
	return s.edges(ctx, ref, page, s.store.Profiles.Followers)
}

// Following lists the accounts ref follows.
func (s *SocialService) Following(ctx context.Context, ref string, page Page) (*List[models.User], error) {
	return s.edges(ctx, ref, page, s.store.Profiles.Following)
}

func (s *SocialService) edges(
	ctx context.Context,
	ref string,
	page Page,
	fetch func(context.Context, *models.Profile, int, int) ([]models.User, int64, error),
) (*List[models.User], error) {
	user, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	users, total, err := fetch(ctx, profile, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.User]{Items: users, Total: total, Page: page}, nil
}

// Follow makes actorID follow the account ref.
func (s *SocialService) Follow(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "social.Follow")
	defer func() { observability.EndSpan(span, err) }()

	actor, target, err := s.pair(ctx, actorID, ref)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		actorProfile, targetProfile, err := profiles(ctx, tx, actor.ID, target.ID)
		if err != nil {
			return err
		}
		following, err := tx.Profiles.IsFollowing(ctx, actorProfile, target.ID)
		if err != nil {
			return err
		}
		if following {
			return models.ErrAlreadyFollowing
		}
		return tx.Profiles.AddFollow(ctx, actorProfile, targetProfile)
	})
	if err != nil {
		if isDuplicate(err) {
			return models.ErrAlreadyFollowing
		}
		return err
	}

	s.bus.Publish(ctx, events.UserFollowed{Actor: *actor, Target: *target})
	return nil
}

// Unfollow removes the follow edge from actorID to ref.
func (s *SocialService) Unfollow(ctx context.Context, actorID uint, ref string) error {
	actor, target, err := s.pair(ctx, actorID, ref)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		actorProfile, targetProfile, err := profiles(ctx, tx, actor.ID, target.ID)
		if err != nil {
			return err
		}
		removed, err := tx.Profiles.RemoveFollow(ctx, actorProfile, targetProfile)
		if err != nil {
			return err
		}
		if !removed {
			return models.ErrAlreadyUnfollowed
		}
		return nil
	})
}

// IsFollowing reports whether actorID follows ref.
func (s *SocialService) IsFollowing(ctx context.Context, actorID uint, ref string) (bool, error) {
	target, err := s.lookup(ctx, ref)
	if err != nil {
		return false, err
	}
	actorProfile, err := s.store.Profiles.GetByUserID(ctx, actorID)
	if err != nil {
		return false, err
	}
	return s.store.Profiles.IsFollowing(ctx, actorProfile, target.ID)
}

func (s *SocialService) pair(ctx context.Context, actorID uint, ref string) (*models.User, *models.User, error) {
	target, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if target.ID == actorID {
		return nil, nil, models.ErrCannotFollowSelf
	}
	actor, err := s.store.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return actor, target, nil
}

// lookup resolves a public id to a verified account. Unverified accounts are not
// part of the directory.
func (s *SocialService) lookup(ctx context.Context, ref string) (*models.User, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("User", ref)
	}
	user, err := s.store.Users.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, models.NewNotFoundError("User", ref)
	}
	return user, nil
}

func profiles(ctx context.Context, tx *repository.Store, actorID, targetID uint) (*models.Profile, *models.Profile, error) {
	a, err := tx.Profiles.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	t, err := tx.Profiles.GetByUserID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return a, t, nil
}
