package auth

import "context"

// Verifier resolves a websocket access token to the user it was issued for.
type Verifier struct {
	JWT JWTService
}

// NewVerifier wraps svc.
func NewVerifier(svc JWTService) *Verifier {
	return &Verifier{JWT: svc}
}

// VerifyToken returns the user id carried by token.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (int64, error) {
	claims, err := v.JWT.ValidateToken(ctx, token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
