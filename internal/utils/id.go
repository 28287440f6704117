package utils

import "github.com/google/uuid"

func GenerateID() string {
	return uuid.New().String()
}

// IsValidID reports whether id is a UUID produced by GenerateID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
