package pkg

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const GameCodeLength = 8

// Base58 alphabet without the look-alike symbols 0, O, I and l.
const gameCodeAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// GenerateGameCode - generates a human-shareable room code.
func GenerateGameCode() (string, error) {
	b := make([]byte, GameCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, GameCodeLength)
	for i, v := range b {
		code[i] = gameCodeAlphabet[int(v)%len(gameCodeAlphabet)]
	}

	return string(code), nil
}

// GenerateParticipantID - generates a new participant identity.
func GenerateParticipantID() string {
	return uuid.NewString()
}
