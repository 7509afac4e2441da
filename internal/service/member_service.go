package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/internal/repository"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

type memberRepository interface {
	List(ctx context.Context, filter repository.MemberFilter) ([]models.SchoolMember, error)
	Add(ctx context.Context, member *models.SchoolMember) error
	Remove(ctx context.Context, schoolID, memberID string) error
}

type memberUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MemberService manages school membership. Admins may only manage their own school.
type MemberService struct {
	members memberRepository
	users   memberUserLookup
	logger  *zap.Logger
}

// NewMemberService constructs a member service.
func NewMemberService(members memberRepository, users memberUserLookup, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{members: members, users: users, logger: logger}
}

// List returns the members of a school.
func (s *MemberService) List(ctx context.Context, actor *models.Identity, query dto.ListMembersQuery) ([]models.SchoolMember, error) {
	if err := ensureSameSchool(actor, query.SchoolID); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, repository.MemberFilter{SchoolID: query.SchoolID, Role: query.Role})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list members")
	}
	if members == nil {
		members = []models.SchoolMember{}
	}
	return members, nil
}

// Add enrols an existing user into the school.
func (s *MemberService) Add(ctx context.Context, actor *models.Identity, req dto.AddMemberRequest) (*models.SchoolMember, error) {
	schoolID := req.Query.SchoolID
	if err := ensureSameSchool(actor, schoolID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, req.Body.UserID)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}

	member := &models.SchoolMember{
		SchoolID: schoolID,
		UserID:   user.ID,
		Role:     models.UserRole(req.Body.Role),
		FullName: user.FullName,
		Email:    user.Email,
	}
	if err := s.members.Add(ctx, member); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user is already a member of this school")
		}
		return nil, appErrors.Internal(err, "failed to add member")
	}
	s.logger.Info("member added",
		zap.String("school_id", schoolID),
		zap.String("user_id", user.ID),
		zap.String("role", req.Body.Role),
		zap.String("actor", actor.SubjectID),
	)
	return member, nil
}

// Remove deletes a membership.
func (s *MemberService) Remove(ctx context.Context, actor *models.Identity, params dto.RemoveMemberParams) error {
	if err := ensureSameSchool(actor, params.SchoolID); err != nil {
		return err
	}
	if err := s.members.Remove(ctx, params.SchoolID, params.MemberID); err != nil {
		return lookupError(err, "member not found", "failed to remove member")
	}
	return nil
}

func ensureSameSchool(actor *models.Identity, schoolID string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.SchoolID != schoolID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot manage another school")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
