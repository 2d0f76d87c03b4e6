package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lumilearn/documentflow/internal/models"
	"github.com/lumilearn/documentflow/internal/services"
)

// NewFirestoreClient creates and returns a new Firestore client for the given
// project ID. It centralizes client creation for all functions.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreRecords implements the record store over Firestore: one flat
// documents collection keyed by auto-generated ids, plus a courses
// collection keyed by course id.
type FirestoreRecords struct {
	client    *firestore.Client
	documents string
	courses   string
}

// NewFirestoreRecords creates a FirestoreRecords over an existing client.
func NewFirestoreRecords(client *firestore.Client, documentsCollection, coursesCollection string) *FirestoreRecords {
	return &FirestoreRecords{
		client:    client,
		documents: documentsCollection,
		courses:   coursesCollection,
	}
}

func (s *FirestoreRecords) EnsureCourse(ctx context.Context, course *models.Course) error {
	_, err := s.client.Collection(s.courses).Doc(course.ID).Create(ctx, course)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create course %s: %w", course.ID, err)
	}
	return nil
}

func (s *FirestoreRecords) CreateDocument(ctx context.Context, doc *models.Document) (string, error) {
	docRef, _, err := s.client.Collection(s.documents).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document record: %w", err)
	}
	return docRef.ID, nil
}

func (s *FirestoreRecords) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	snap, err := s.client.Collection(s.documents).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, services.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return snapToDocument(snap)
}

func (s *FirestoreRecords) GetDocumentByPath(ctx context.Context, courseID, storagePath string) (*models.Document, error) {
	snaps, err := s.client.Collection(s.documents).
		Where("courseId", "==", courseID).
		Where("storagePath", "==", storagePath).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query document by path %s: %w", storagePath, err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snapToDocument(snaps[0])
}

func (s *FirestoreRecords) UpdateDocumentStatus(ctx context.Context, id string, docStatus models.Status, storagePath, errorDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: docStatus},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if storagePath != "" {
		updates = append(updates, firestore.Update{Path: "storagePath", Value: storagePath})
	}
	if errorDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errorDetails})
	}
	return s.update(ctx, id, updates)
}

func (s *FirestoreRecords) UpdateDocumentFields(ctx context.Context, id string, doc *models.Document) error {
	updates := []firestore.Update{
		{Path: "fileName", Value: doc.FileName},
		{Path: "mimeType", Value: doc.MimeType},
		{Path: "sizeBytes", Value: doc.SizeBytes},
		{Path: "storagePath", Value: doc.StoragePath},
		{Path: "status", Value: doc.Status},
		{Path: "errorDetails", Value: doc.ErrorDetails},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	return s.update(ctx, id, updates)
}

func (s *FirestoreRecords) update(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := s.client.Collection(s.documents).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return services.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update document %s: %w", id, err)
	}
	return nil
}

// DeleteDocument removes a record. Firestore deletes succeed for missing
// documents, which gives the idempotency the cleanup paths rely on.
func (s *FirestoreRecords) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.documents).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreRecords) ListDocumentsByCourse(ctx context.Context, courseID string) ([]*models.Document, error) {
	iter := s.client.Collection(s.documents).Where("courseId", "==", courseID).Documents(ctx)
	defer iter.Stop()

	var docs []*models.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents for course %s: %w", courseID, err)
		}
		doc, err := snapToDocument(snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func snapToDocument(snap *firestore.DocumentSnapshot) (*models.Document, error) {
	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
	}
	doc.ID = snap.Ref.ID
	return &doc, nil
}
