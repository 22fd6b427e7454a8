package config

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

// NewFirestore uses application default credentials, or the emulator when
// FIRESTORE_EMULATOR_HOST is set.
func NewFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT environment variable is not set")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return client, nil
}
