package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	"github.com/allisson/iou/internal/auth/service"
	"github.com/allisson/iou/internal/auth/service/mocks"
)

func TestForwardAuthorization_Forward(t *testing.T) {
	identity := &mocks.MockIdentityClient{}
	forward := service.NewForwardAuthorization(identity)

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer aToken")

		capability, err := forward.Forward(req)
		require.NoError(t, err)
		assert.Equal(t, "Bearer aToken", capability.Header())
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := forward.Forward(req)
		assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
	})

	// Forward never contacts the identity provider.
	identity.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	identity.AssertNotCalled(t, "Party", mock.Anything, mock.Anything)
}

func TestForwardAuthorization_Party(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		identity := &mocks.MockIdentityClient{}
		forward := service.NewForwardAuthorization(identity)
		party := authDomain.UserParty("issuer", "issuer1")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer aToken")
		identity.On("Party", mock.Anything, "Bearer aToken").Return(party, nil).Once()

		got, err := forward.Party(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, party.Equal(got))
		identity.AssertExpectations(t)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		identity := &mocks.MockIdentityClient{}
		forward := service.NewForwardAuthorization(identity)

		_, err := forward.Party(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
		identity.AssertNotCalled(t, "Party", mock.Anything, mock.Anything)
	})
}

func TestDecodeClaims(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		claims := authDomain.Claims{
			PreferredUsername: "alice",
			Party:             []string{"issuer"},
			RealmAccess:       authDomain.RealmAccess{Roles: []string{"user"}},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice-id",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated-key"))
		require.NoError(t, err)

		decoded, err := service.DecodeClaims(signed)
		require.NoError(t, err)
		assert.Equal(t, "alice", decoded.PreferredUsername)
		assert.Equal(t, []string{"issuer"}, decoded.Party)
		assert.Equal(t, []string{"user"}, decoded.RealmAccess.Roles)
		assert.Equal(t, "alice-id", decoded.Subject)
	})

	t.Run("Error_NotAJWT", func(t *testing.T) {
		_, err := service.DecodeClaims("123.access.456")
		assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
	})
}
