package security

import "fmt"

type PasswordEncoder interface {
	GetPasswordHash(password string) (string, error)
	IsMatching(hash, password string) bool
}

const (
	EncoderBcrypt = "bcrypt"
	EncoderPBKDF2 = "pbkdf2"
)

type Options struct {
	Encoder         string
	PBKDF2Secret    string
	PBKDF2Iteration int
	PBKDF2KeyLength int
}

// NewPasswordEncoder selects the encoder named in opts. Empty means bcrypt.
func NewPasswordEncoder(opts Options) (PasswordEncoder, error) {
	switch opts.Encoder {
	case "", EncoderBcrypt:
		return NewBcryptEncoder(), nil
	case EncoderPBKDF2:
		return NewPBKDF2Encoder(opts.PBKDF2Secret, opts.PBKDF2Iteration, opts.PBKDF2KeyLength)
	default:
		return nil, fmt.Errorf("unknown password encoder %q", opts.Encoder)
	}
}
