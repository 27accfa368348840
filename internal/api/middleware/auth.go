package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/traintrack/checkin-api/internal/api/handler/v1/response"
	"github.com/traintrack/checkin-api/internal/domain"
	"github.com/traintrack/checkin-api/internal/pkg/jwthelper"
)

const (
	CtxKeyUserID   = "user_id"
	CtxKeyUserRole = "user_role"
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("missing bearer token")))

			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))

			return
		}

		ctx.Set(CtxKeyUserID, claims.UserID)
		ctx.Set(CtxKeyUserRole, claims.Role)
		ctx.Next()
	}
}

// RequireAdmin must run after VerifyJWT.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString(CtxKeyUserRole) != domain.RoleAdmin {
			response.RenderErr(ctx, response.ErrForbidden(errors.New("administrator access required")))

			return
		}

		ctx.Next()
	}
}
