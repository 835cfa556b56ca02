package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
)

// SigningMethod is the only algorithm accepted when signing and parsing tokens.
const SigningMethod = "HS256"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AccessToken is returned to a caller after a successful sign-in.
type AccessToken struct {
	AccessToken string `json:"accessToken"`
}

type Signer struct {
	key     []byte
	issuer  string
	ttl     time.Duration
	NowFunc func() time.Time // mockable
}

func NewSigner(conf *core.Config) *Signer {
	return &Signer{
		key:     []byte(conf.SecretKey),
		issuer:  conf.AppName,
		ttl:     conf.Server.JWTExpirationDelta,
		NowFunc: time.Now,
	}
}

func (s *Signer) SigningKey() []byte {
	return s.key
}

func (s *Signer) NewClaims(userID, email, role string) *Claims {
	now := s.NowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Email: email,
		Role:  role,
	}
}

// SignToken generates a signed JWT token string for the given identity.
func (s *Signer) SignToken(userID, email, role string) (string, error) {
	return s.Sign(s.NewClaims(userID, email, role))
}

func (s *Signer) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(SigningMethod), claims)
	ss, err := token.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != SigningMethod {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
