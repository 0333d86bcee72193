package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreCollection holds one document per storage key.
const FirestoreCollection = "imobcontrol-portfolios"

// FirestoreStore keeps documents in Cloud Firestore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore connects through the Firebase Admin SDK.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: FirestoreCollection}, nil
}

type firestoreDoc struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Read implements Backend.
func (s *FirestoreStore) Read(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore document %q: %w", key, err)
	}
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode firestore document %q: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

// Write implements Backend.
func (s *FirestoreStore) Write(ctx context.Context, key string, data []byte) error {
	doc := firestoreDoc{Payload: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to set firestore document %q: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
