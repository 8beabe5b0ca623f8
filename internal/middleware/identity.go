package middleware

import (
	"strings"

	"tripcart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ownerContextKey  = "owner"
	guestTokenHeader = "X-Guest-Token"
)

type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Identity resolves the request to an Owner: a Bearer JWT yields a user, the
// X-Guest-Token header yields a guest, and with neither present a fresh guest
// token is minted and echoed back so anonymous carts survive across requests.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if tokenStr != "" {
				cl := &claims{}
				token, err := jwt.ParseWithClaims(tokenStr, cl, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return []byte(secret), nil
				})
				if err == nil && token.Valid && cl.UserID > 0 {
					c.Set(ownerContextKey, domain.UserOwner(cl.UserID))
					c.Next()
					return
				}
			}
			// fall through: an invalid token is treated as anonymous
		}

		guestID := strings.TrimSpace(c.GetHeader(guestTokenHeader))
		if guestID == "" {
			guestID = uuid.NewString()
			c.Header(guestTokenHeader, guestID)
		}
		c.Set(ownerContextKey, domain.GuestOwner(guestID))
		c.Next()
	}
}

// OwnerFrom extracts the resolved owner; ok is false when the identity
// middleware did not run for this route.
func OwnerFrom(c *gin.Context) (domain.Owner, bool) {
	v, exists := c.Get(ownerContextKey)
	if !exists {
		return domain.Owner{}, false
	}
	o, ok := v.(domain.Owner)
	if !ok || !o.Valid() {
		return domain.Owner{}, false
	}
	return o, true
}
