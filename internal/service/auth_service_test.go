package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipebox/internal/auth"
	"recipebox/internal/errors"
	"recipebox/internal/model"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func TestAuthService_IssueToken(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("testpass123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful issuance",
			email:    "test@example.com",
			password: "testpass123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsActive:     true,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(1), "test@example.com", mock.Anything).Return(nil)
			},
		},
		{
			name:     "email lookup is normalized",
			email:    "test@EXAMPLE.com",
			password: "testpass123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsActive:     true,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(1), "test@example.com", mock.Anything).Return(nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpass",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsActive:     true,
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "testpass123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			email:    "test@example.com",
			password: "testpass123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           1,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					IsActive:     false,
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, mockTokenStore)

			accessToken, refreshToken, user, err := svc.IssueToken(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(1, "test@example.com")
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(1), "test@example.com", nil)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		accessToken, err := svc.Refresh(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).
			Return(uint(0), "", assert.AnError)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		accessToken, err := svc.Refresh(context.Background(), refreshToken)

		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
		assert.Empty(t, accessToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
		accessToken, err := svc.Refresh(context.Background(), "not-a-token")

		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
		assert.Empty(t, accessToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(1, "test@example.com")
	assert.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
	assert.NoError(t, svc.Logout(context.Background(), refreshToken))
	mockTokenStore.AssertExpectations(t)
}
