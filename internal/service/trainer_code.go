package service

import (
	"alcyxob/fitcoach/internal/repository"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	trainerCodePrefix   = "PT"
	trainerCodeAttempts = 10
)

var errTrainerCodeExhausted = errors.New("could not allocate a unique trainer code")

// randomTrainerCode returns PT followed by four random digits.
func randomTrainerCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", trainerCodePrefix, n.Int64()), nil
}

// uniqueTrainerCode draws codes until one is not taken by another trainer.
// The unique index on trainerCode still guards against a concurrent writer.
func uniqueTrainerCode(ctx context.Context, users repository.UserRepository, gen func() (string, error)) (string, error) {
	for i := 0; i < trainerCodeAttempts; i++ {
		code, err := gen()
		if err != nil {
			return "", err
		}
		_, err = users.GetByTrainerCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errTrainerCodeExhausted
}
