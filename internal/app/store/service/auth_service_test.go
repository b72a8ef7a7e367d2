package service

import (
	"context"
	"testing"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/repository"
	"homenest/internal/app/store/repository/mocks"
	"homenest/internal/app/store/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testJWTManager() *util.JWTManager {
	return util.NewJWTManager("test-secret", time.Hour)
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewAuthService(userRepo, testJWTManager())
	ctx := context.Background()

	var created *entity.User
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.User)
		}).Return(nil)

	resp, err := svc.Register(ctx, &entity.RegisterRequest{
		Name:     "Asha Perera",
		Email:    "asha@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.RoleUser, resp.User.Role)
	// Пароль хранится только как bcrypt-хэш
	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.True(t, util.CheckPassword(created.PasswordHash, "secret123"))
	// created_at пишется в pgx-репозиторий как есть, сервис обязан его заполнить
	assert.False(t, created.CreatedAt.IsZero())
}

func TestRegister_EmailTaken(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewAuthService(userRepo, testJWTManager())
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.Anything).Return(repository.ErrEmailTaken)

	_, err := svc.Register(ctx, &entity.RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "secret123",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	jwtManager := testJWTManager()
	svc := NewAuthService(userRepo, jwtManager)
	ctx := context.Background()

	hash, err := util.HashPassword("secret123")
	require.NoError(t, err)

	user := &entity.User{
		ID: uuid.New(), Name: "Asha", Email: "asha@example.com",
		PasswordHash: hash, Role: entity.RoleUser,
	}
	userRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	resp, err := svc.Login(ctx, &entity.LoginRequest{Email: "asha@example.com", Password: "secret123"})

	require.NoError(t, err)
	claims, err := jwtManager.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewAuthService(userRepo, testJWTManager())
	ctx := context.Background()

	hash, err := util.HashPassword("secret123")
	require.NoError(t, err)

	userRepo.On("GetByEmail", ctx, "asha@example.com").
		Return(&entity.User{ID: uuid.New(), Email: "asha@example.com", PasswordHash: hash}, nil)

	_, err = svc.Login(ctx, &entity.LoginRequest{Email: "asha@example.com", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// Неизвестный email дает ту же ошибку, что и неверный пароль
func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewAuthService(userRepo, testJWTManager())
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, &entity.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_EmailAndRoleUntouched(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewAuthService(userRepo, testJWTManager())
	ctx := context.Background()
	userID := uuid.New()

	existing := &entity.User{
		ID: userID, Name: "Asha", Email: "asha@example.com", Role: entity.RoleUser,
	}
	userRepo.On("GetByID", ctx, userID).Return(existing, nil)

	var saved *entity.User
	userRepo.On("Update", ctx, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*entity.User)
		}).Return(nil)

	_, err := svc.UpdateProfile(ctx, userID, &entity.UpdateProfileRequest{
		Name: "Asha P", Phone: "0771234567",
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha P", saved.Name)
	assert.Equal(t, "0771234567", saved.Phone)
	assert.Equal(t, "asha@example.com", saved.Email)
	assert.Equal(t, entity.RoleUser, saved.Role)
}
