package service

import (
	"context"
	"strings"
	"time"

	"github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/auth/password"
	"github.com/orbitcrm/orbitcrm/internal/auth/token"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Cfg  config.Config
	Repo domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	issuer *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		repo:   p.Repo,
		issuer: token.NewIssuer(p.Cfg.AuthJWTSecret, p.Cfg.AuthTokenTTL),
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	db := tenantctx.DB(ctx, s.db)
	user, err := s.repo.FindUserByEmail(ctx, db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.LoginResponse{}, domain.ErrInactiveUser
	}

	signed, err := s.issuer.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return domain.LoginResponse{}, err
	}

	s.log.Info("user login", zap.String("user_id", user.ID.String()))
	return domain.LoginResponse{Token: signed, User: *user}, nil
}

func (s *Service) Authenticate(ctx context.Context, raw string) (domain.Principal, error) {
	userID, err := s.issuer.Parse(raw)
	if err != nil {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	db := tenantctx.DB(ctx, s.db)
	user, err := s.repo.FindUserByID(ctx, db, userID)
	if err != nil {
		return domain.Principal{}, err
	}
	if user == nil || !user.IsActive {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	return domain.Principal{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		RoleName: roleName,
	}, nil
}
