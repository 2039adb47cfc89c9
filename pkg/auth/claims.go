package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// AccessTokenPayload captures the data available when minting an admin JWT.
type AccessTokenPayload struct {
	Subject string
	Role    enums.AdminRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT accepted by the admin API.
type AccessTokenClaims struct {
	Role enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
