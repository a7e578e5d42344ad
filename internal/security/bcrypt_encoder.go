package security

import "golang.org/x/crypto/bcrypt"

type BcryptEncoder struct {
	Cost int
}

func NewBcryptEncoder() *BcryptEncoder {
	return &BcryptEncoder{Cost: bcrypt.DefaultCost}
}

func (b BcryptEncoder) GetPasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptEncoder) IsMatching(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
