package oracle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/modes"
)

// ErrMalformedParams is returned when a key=value string cannot be parsed.
var ErrMalformedParams = errors.New("malformed param string")

// User is a decoded profile.
type User struct {
	Email string
	UID   int
	Role  string
}

// Encode returns the URI param string for u.
func (u User) Encode() string {
	return "email=" + u.Email + "&uid=" + strconv.Itoa(u.UID) + "&role=" + u.Role
}

// ProfileFor returns the encoded profile of a regular user with the given
// email. The metacharacters '=' and '&' are dropped from the email first so
// it cannot introduce fields of its own.
func ProfileFor(email string) string {
	cleaned := strings.NewReplacer("=", "", "&", "").Replace(email)
	return User{Email: cleaned, UID: 10, Role: "user"}.Encode()
}

// ParseParams splits "k1=v1&k2=v2" into a map. Every pair must contain
// exactly one '=' and a non-empty key.
func ParseParams(params string) (map[string]string, error) {
	kv := make(map[string]string)
	for _, pair := range strings.Split(params, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" || strings.Contains(v, "=") {
			return nil, fmt.Errorf("%w: %q", ErrMalformedParams, pair)
		}
		kv[k] = v
	}
	return kv, nil
}

// ParseUser decodes a profile string.
func ParseUser(params string) (User, error) {
	kv, err := ParseParams(params)
	if err != nil {
		return User{}, err
	}
	uid, err := strconv.Atoi(kv["uid"])
	if err != nil {
		return User{}, fmt.Errorf("%w: uid %q", ErrMalformedParams, kv["uid"])
	}
	return User{Email: kv["email"], UID: uid, Role: kv["role"]}, nil
}

// Profile encrypts user profiles in ECB mode under a hidden key. The
// attacker controls only the email address.
type Profile struct {
	key []byte
}

// NewProfile returns a Profile oracle with a random key.
func NewProfile() *Profile {
	return &Profile{key: matasano.RandomKey()}
}

// Encrypt treats email as an email address and returns the encrypted profile
// for it.
func (o *Profile) Encrypt(email []byte) ([]byte, error) {
	return modes.EcbEncrypt(o.key, []byte(ProfileFor(string(email))))
}

// Decrypt decrypts and parses an encrypted profile.
func (o *Profile) Decrypt(ct []byte) (User, error) {
	pt, err := modes.EcbDecrypt(o.key, ct)
	if err != nil {
		return User{}, err
	}
	return ParseUser(string(pt))
}

// Verify reports whether ct decrypts to a profile with the admin role.
func (o *Profile) Verify(ct []byte) (bool, error) {
	u, err := o.Decrypt(ct)
	if err != nil {
		return false, err
	}
	return u.Role == "admin", nil
}
