package utils

import "golang.org/x/crypto/bcrypt"

// NormalizeCost clamps a configured bcrypt cost into the algorithm's
// accepted range. BCRYPT_COST comes from the environment, so zero or
// out-of-range values fall back to bcrypt's default instead of failing
// every registration.
func NormalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword returns the bcrypt hash of a plaintext password. The cost
// is normalized first; see NormalizeCost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), NormalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash against a plaintext candidate.
// bcrypt's comparison is constant time, so mismatches leak no timing
// information about the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
