package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"

	"golang.org/x/crypto/argon2"
)

type HashAlgorithm string

const (
	Argon2id HashAlgorithm = "argon2id"
)

const saltLength = 16
const keyLength = 64

type HashedPassword struct {
	Algorithm  HashAlgorithm
	AlgoConfig string // arbitrary info describing the hash parameters (e.g. work factor)

	// To make it easier to handle varying implementations and encodings,
	// these fields will always store a form of the data that can be directly
	// stored in the database (usually base64-encoded or whatever).
	Salt string
	Hash string
}

func ParsePasswordString(s string) (HashedPassword, error) {
	pieces := strings.SplitN(s, "$", 4)
	if len(pieces) < 4 {
		return HashedPassword{}, oops.New(nil, "unrecognized password string format")
	}

	return HashedPassword{
		Algorithm:  HashAlgorithm(pieces[0]),
		AlgoConfig: pieces[1],
		Salt:       pieces[2],
		Hash:       pieces[3],
	}, nil
}

func (p HashedPassword) String() string {
	return fmt.Sprintf("%s$%s$%s$%s", p.Algorithm, p.AlgoConfig, p.Salt, p.Hash)
}

// True when the hash was made with a different algorithm or different
// parameters than HashPassword uses now.
func (p HashedPassword) IsOutdated() bool {
	return p.Algorithm != Argon2id || p.AlgoConfig != currentArgon2idConfig.String()
}

type Argon2idConfig struct {
	Time      uint32
	Memory    uint32
	Threads   uint8
	KeyLength uint32
}

func ParseArgon2idConfig(cfg string) (Argon2idConfig, error) {
	parts := strings.Split(cfg, ",")
	if len(parts) != 4 {
		return Argon2idConfig{}, oops.New(nil, "expected 4 parameters in Argon2id config, got %d", len(parts))
	}
	for _, part := range parts {
		if len(part) < 3 || part[1] != '=' {
			return Argon2idConfig{}, oops.New(nil, "malformed Argon2id parameter %q", part)
		}
	}

	t64, err := strconv.ParseUint(parts[0][2:], 10, 32)
	if err != nil {
		return Argon2idConfig{}, oops.New(err, "failed to parse time in Argon2id config")
	}

	m64, err := strconv.ParseUint(parts[1][2:], 10, 32)
	if err != nil {
		return Argon2idConfig{}, oops.New(err, "failed to parse memory in Argon2id config")
	}

	p64, err := strconv.ParseUint(parts[2][2:], 10, 8)
	if err != nil {
		return Argon2idConfig{}, oops.New(err, "failed to parse threads in Argon2id config")
	}

	l64, err := strconv.ParseUint(parts[3][2:], 10, 32)
	if err != nil {
		return Argon2idConfig{}, oops.New(err, "failed to parse key length in Argon2id config")
	}

	return Argon2idConfig{
		Time:      uint32(t64),
		Memory:    uint32(m64),
		Threads:   uint8(p64),
		KeyLength: uint32(l64),
	}, nil
}

func (c Argon2idConfig) String() string {
	return fmt.Sprintf("t=%v,m=%v,p=%v,l=%v", c.Time, c.Memory, c.Threads, c.KeyLength)
}

func CheckPassword(password string, hashedPassword HashedPassword) (bool, error) {
	switch hashedPassword.Algorithm {
	case Argon2id:
		cfg, err := ParseArgon2idConfig(hashedPassword.AlgoConfig)
		if err != nil {
			return false, err
		}

		salt, err := base64.StdEncoding.DecodeString(hashedPassword.Salt)
		if err != nil {
			return false, oops.New(err, "failed to decode salt")
		}
		expected, err := base64.StdEncoding.DecodeString(hashedPassword.Hash)
		if err != nil {
			return false, oops.New(err, "failed to decode hash")
		}

		newHash := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, cfg.KeyLength)
		return subtle.ConstantTimeCompare(newHash, expected) == 1, nil
	default:
		return false, oops.New(nil, "unrecognized password hash algorithm: %s", hashedPassword.Algorithm)
	}
}

// Follows the OWASP recommendations as of March 2021.
// https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html
var currentArgon2idConfig = Argon2idConfig{
	Time:      1,
	Memory:    40 * 1024, // this is in KiB for some reason
	Threads:   1,
	KeyLength: keyLength,
}

func HashPassword(password string) HashedPassword {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		panic(oops.New(err, "failed to generate password salt"))
	}
	saltEnc := base64.StdEncoding.EncodeToString(salt)

	cfg := currentArgon2idConfig
	key := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, cfg.KeyLength)
	keyEnc := base64.StdEncoding.EncodeToString(key)

	return HashedPassword{
		Algorithm:  Argon2id,
		AlgoConfig: cfg.String(),
		Salt:       saltEnc,
		Hash:       keyEnc,
	}
}

var ErrUserDoesNotExist = errors.New("user does not exist")

// Returned for both unknown usernames and wrong passwords, so the login form
// does not reveal which accounts exist.
var ErrBadCredentials = errors.New("incorrect username or password")

func UpdatePassword(ctx context.Context, conn db.ConnOrTx, username string, hp HashedPassword) error {
	tag, err := conn.Exec(ctx, "UPDATE club_user SET password = $1 WHERE username = $2", hp.String(), username)
	if err != nil {
		return oops.New(err, "failed to update password")
	} else if tag.RowsAffected() < 1 {
		return ErrUserDoesNotExist
	}

	return nil
}

func SetPassword(ctx context.Context, conn db.ConnOrTx, username string, password string) error {
	hp := HashPassword(password)
	return UpdatePassword(ctx, conn, username, hp)
}

/*
Checks a username and password against the database. On success the user's
last_login is updated and the user returned. Wrong passwords and unknown
users both produce ErrBadCredentials.

Passwords stored with an outdated hash are rehashed with the current
parameters. A failed rehash is logged and does not fail the login.
*/
func Authenticate(ctx context.Context, conn db.ConnOrTx, username, password string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Fetch user for login
		SELECT $columns
		FROM club_user
		WHERE LOWER(username) = LOWER($1)
		`,
		username,
	)
	if errors.Is(err, db.NotFound) {
		// Burn roughly the same time as a real check.
		CheckPassword(password, dummyPassword)
		return nil, ErrBadCredentials
	} else if err != nil {
		return nil, oops.New(err, "failed to look up user for login")
	}

	hashed, err := ParsePasswordString(user.Password)
	if err != nil {
		return nil, oops.New(err, "stored password for user %s is malformed", user.Username)
	}
	ok, err := CheckPassword(password, hashed)
	if err != nil {
		return nil, oops.New(err, "failed to check password")
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	if hashed.IsOutdated() {
		err := SetPassword(ctx, conn, user.Username, password)
		if err != nil {
			logging.ExtractLogger(ctx).Error().Err(err).Str("username", user.Username).Msg("failed to rehash outdated password")
		}
	}

	_, err = conn.Exec(ctx, "UPDATE club_user SET last_login = NOW() WHERE id = $1", user.ID)
	if err != nil {
		return nil, oops.New(err, "failed to update last login")
	}

	return user, nil
}

var dummyPassword = HashPassword("not a real password")
