package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/opennoc/fiberplant/internal/config"
	"github.com/opennoc/fiberplant/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	GenID  *snowflake.Node
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	secret   []byte
	tokenTTL int64
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		secret:   []byte(p.Config.AuthJWTSecret),
		tokenTTL: int64(p.Config.AuthTokenTTL.Seconds()),
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}
	if !req.Role.Valid() {
		return domain.User{}, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrUsernameTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if user == nil {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.LoginResult{}, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := domain.Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.LoginResult{}, err
	}

	return domain.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.tokenTTL,
		User:      *user,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) VerifyToken(token string) (*domain.Claims, error) {
	if token == "" || len(s.secret) == 0 {
		return nil, domain.ErrInvalidToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &domain.Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}
	if claims.ExpiresAt != nil && s.clock.Now().After(claims.ExpiresAt.Time) {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
