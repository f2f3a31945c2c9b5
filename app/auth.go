package app

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid or expired token")
	errForbidden    = errors.New("not allowed for this role")
)

type identityKey struct{}

// accessClaims is the payload of the access tokens this server accepts.
type accessClaims struct {
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 access token for the identity.
func SignToken(secret string, id models.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: id.AccountID,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}

func parseToken(secret, raw string) (models.Identity, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Identity{}, err
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return models.Identity{}, errInvalidToken
	}
	return models.Identity{AccountID: claims.UserID, Role: claims.Role}, nil
}

// IdentityFrom returns the caller placed on the context by authenticate.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}

func (ctrl *controller) authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				ctrl.reject(w, http.StatusUnauthorized, errMissingToken)
				return
			}

			id, err := parseToken(secret, raw)
			if err != nil {
				ctrl.log.Sugar().Debugw("Rejected token", "err", err)
				ctrl.reject(w, http.StatusUnauthorized, errInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (ctrl *controller) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				ctrl.reject(w, http.StatusUnauthorized, errMissingToken)
				return
			}
			if !slices.Contains(roles, id.Role) {
				ctrl.reject(w, http.StatusForbidden, errForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
