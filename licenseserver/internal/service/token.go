package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// Account tokens never expire; revoking access means changing the user's
// rank, which is read from the store on every use.
type accountClaims struct {
	jwt.RegisteredClaims
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := accountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accountClaims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", AuthError{Msg: "Invalid token"}
	}
	claims, ok := token.Claims.(*accountClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", AuthError{Msg: "Invalid token"}
	}
	return claims.Subject, nil
}
