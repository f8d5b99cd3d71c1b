package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthportal-app/portal-client/internal/domain"
)

const roleClaim = "role"

var parser = jwt.NewParser()

// Decode extracts subject, role and expiry from credential without verifying it.
//
// It is a total function: any input yields either claims with a known role or a
// *DecodeError. An unrecognized signing algorithm is not an error here, since
// the payload was still readable.
func Decode(credential string) (domain.Claims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Claims{}, malformed(errors.New("empty credential"))
	}

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(credential, mc); err != nil {
		if !errors.Is(err, jwt.ErrTokenUnverifiable) {
			return domain.Claims{}, malformed(err)
		}
	}

	raw, ok := mc[roleClaim]
	if !ok || raw == nil {
		return domain.Claims{}, missingClaim(roleClaim, nil)
	}
	s, ok := raw.(string)
	if !ok {
		return domain.Claims{}, missingClaim(roleClaim, fmt.Errorf("want string, got %T", raw))
	}
	role, ok := domain.ParseRole(s)
	if !ok {
		return domain.Claims{}, missingClaim(roleClaim, fmt.Errorf("unknown role %q", s))
	}

	claims := domain.Claims{Role: role}

	// sub is informational; a non-string value is ignored rather than rejected.
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = domain.SubjectID(sub)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return domain.Claims{}, malformed(err)
	}
	if exp != nil {
		claims.Expiry = exp.UTC()
	}

	return claims, nil
}

// RoleOf is Decode reduced to the role, for callers that only route.
func RoleOf(credential string) (domain.Role, error) {
	c, err := Decode(credential)
	if err != nil {
		return "", err
	}
	return c.Role, nil
}
