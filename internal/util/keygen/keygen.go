package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	// saltAlphabet matches the character set of the WordPress secret-key API,
	// minus quote and backslash so values embed in single-quoted PHP strings.
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()-_ []{}<>~`+=,.;:/?|"
	saltLength   = 64
)

// SaltNames are the wp-config.php constants that receive generated values.
var SaltNames = []string{
	"AUTH_KEY",
	"SECURE_AUTH_KEY",
	"LOGGED_IN_KEY",
	"NONCE_KEY",
	"AUTH_SALT",
	"SECURE_AUTH_SALT",
	"LOGGED_IN_SALT",
	"NONCE_SALT",
}

// Salt is one wp-config.php secret.
type Salt struct {
	Name  string
	Value string
}

// GeneratePassword returns a random password of the given length drawn from
// an alphabet without visually ambiguous characters.
func GeneratePassword(length int) (string, error) {
	if length < 12 {
		return "", fmt.Errorf("password length %d is below the minimum of 12", length)
	}
	return randomString(passwordAlphabet, length)
}

// GenerateSalts returns a fresh value for every name in SaltNames.
func GenerateSalts() ([]Salt, error) {
	salts := make([]Salt, 0, len(SaltNames))
	for _, name := range SaltNames {
		v, err := randomString(saltAlphabet, saltLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", name, err)
		}
		salts = append(salts, Salt{Name: name, Value: v})
	}
	return salts, nil
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
