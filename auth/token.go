package auth

import (
	"time"

	"oasis/config"

	"github.com/golang-jwt/jwt/v5"
)

type Role = string

const (
	RoleTeam  Role = "team"
	RoleAdmin Role = "admin"
)

type Claims struct {
	SubjectId int    `json:"subject_id"`
	Role      Role   `json:"role"`
	Exp       int64  `json:"exp"`
	Name      string `json:"name"`
}

func (claims *Claims) FromJWTClaims(jwtClaims jwt.Claims) {
	mapClaims := jwtClaims.(jwt.MapClaims)
	if subjectId, ok := mapClaims["subject_id"].(float64); ok {
		claims.SubjectId = int(subjectId)
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.Exp = int64(exp)
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
}

func (claims *Claims) Valid() error {
	if time.Now().Unix() > claims.Exp {
		return jwt.ErrTokenExpired
	}
	return nil
}

func CreateToken(subjectId int, role Role, name string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"subject_id": subjectId,
			"role":       role,
			"name":       name,
			"exp":        time.Now().Add(time.Hour * 24).Unix(),
		})

	tokenString, err := token.SignedString([]byte(config.Env().JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Env().JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}
	return token, nil
}
