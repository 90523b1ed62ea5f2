package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims claims propios del token. El proveedor de identidad (fuera de este
// servicio) emite el token; aquí solo se genera para pruebas/seed y se parsea.
type Claims struct {
	UserID              string   `json:"uid"`
	CompanyID           string   `json:"cid,omitempty"`
	Role                string   `json:"role"`
	CompanyUserGroupIDs []string `json:"cugs,omitempty"`
	jwt.RegisteredClaims
}

// Generate crea un token HS256 firmado con los claims de identidad.
func Generate(secret, userID, companyID, role string, groupIDs []string, issuer string, expMinutes int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:              userID,
		CompanyID:           companyID,
		Role:                role,
		CompanyUserGroupIDs: groupIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("firmar token: %w", err)
	}
	return signed, nil
}

// Parse valida el token y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token inválido")
	}
	return claims, nil
}
