package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyassistant/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection is the Firestore collection records live in.
const Collection = "studyHistory"

// FirestoreStore keeps records as documents of the studyHistory collection.
type FirestoreStore struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

// NewFirestoreStore connects to the project's default database.
// credentialsFile may be empty to use application default credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, coll: client.Collection(Collection)}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// firestoreDoc is the stored document shape. JSON payloads are kept as
// native maps and arrays so they stay readable in the console.
type firestoreDoc struct {
	UserID         string      `firestore:"userId"`
	Timestamp      time.Time   `firestore:"timestamp"`
	Type           string      `firestore:"type"`
	FileName       string      `firestore:"fileName,omitempty"`
	Difficulty     string      `firestore:"difficulty"`
	Language       string      `firestore:"language"`
	Score          *int64      `firestore:"score,omitempty"`
	TotalQuestions *int64      `firestore:"totalQuestions,omitempty"`
	Percentage     *int64      `firestore:"percentage,omitempty"`
	Data           interface{} `firestore:"data"`
	FileURLs       []string    `firestore:"fileUrls"`
	AnalysisData   interface{} `firestore:"analysisData,omitempty"`
	QuizData       interface{} `firestore:"quizData,omitempty"`
}

func toInt64(p *int) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}

func fromInt64(p *int64) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

// native converts a JSON-encodable value into maps, slices and scalars.
func native(v interface{}) (interface{}, error) {
	raw, ok := v.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toFirestoreDoc(rec *Record) (*firestoreDoc, error) {
	data, err := native(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert data: %w", err)
	}
	doc := &firestoreDoc{
		UserID:         rec.UserID,
		Timestamp:      rec.Timestamp,
		Type:           string(rec.Type),
		FileName:       rec.FileName,
		Difficulty:     rec.Difficulty,
		Language:       rec.Language,
		Score:          toInt64(rec.Score),
		TotalQuestions: toInt64(rec.TotalQuestions),
		Percentage:     toInt64(rec.Percentage),
		Data:           data,
		FileURLs:       rec.FileURLs,
	}
	if doc.FileURLs == nil {
		doc.FileURLs = []string{}
	}
	if rec.AnalysisData != nil {
		if doc.AnalysisData, err = native(rec.AnalysisData); err != nil {
			return nil, fmt.Errorf("failed to convert analysis data: %w", err)
		}
	}
	if rec.QuizData != nil {
		if doc.QuizData, err = native(rec.QuizData); err != nil {
			return nil, fmt.Errorf("failed to convert quiz data: %w", err)
		}
	}
	return doc, nil
}

func fromFirestoreDoc(id string, doc *firestoreDoc) (*Record, error) {
	rec := &Record{
		ID:             id,
		UserID:         doc.UserID,
		Timestamp:      doc.Timestamp,
		Type:           Type(doc.Type),
		FileName:       doc.FileName,
		Difficulty:     doc.Difficulty,
		Language:       doc.Language,
		Score:          fromInt64(doc.Score),
		TotalQuestions: fromInt64(doc.TotalQuestions),
		Percentage:     fromInt64(doc.Percentage),
		FileURLs:       doc.FileURLs,
	}
	if rec.FileURLs == nil {
		rec.FileURLs = []string{}
	}

	var err error
	if rec.Data, err = json.Marshal(doc.Data); err != nil {
		return nil, fmt.Errorf("failed to convert data of %s: %w", id, err)
	}
	if doc.AnalysisData != nil {
		b, err := json.Marshal(doc.AnalysisData)
		if err == nil {
			rec.AnalysisData = new(models.AnalysisResult)
			err = json.Unmarshal(b, rec.AnalysisData)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to convert analysis data of %s: %w", id, err)
		}
	}
	if doc.QuizData != nil {
		b, err := json.Marshal(doc.QuizData)
		if err == nil {
			rec.QuizData = new(QuizData)
			err = json.Unmarshal(b, rec.QuizData)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to convert quiz data of %s: %w", id, err)
		}
	}
	return rec, nil
}

func (s *FirestoreStore) Create(ctx context.Context, rec *Record) (string, error) {
	doc, err := toFirestoreDoc(rec)
	if err != nil {
		return "", err
	}
	ref, _, err := s.coll.Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to add study history document: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	iter := s.coll.Where("userId", "==", userID).OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []Record
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query study history: %w", err)
		}
		rec, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// doc returns nil for ids that cannot name a document in the collection.
func (s *FirestoreStore) doc(id string) *firestore.DocumentRef {
	if id == "" || strings.Contains(id, "/") {
		return nil
	}
	return s.coll.Doc(id)
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*Record, error) {
	ref := s.doc(id)
	if ref == nil {
		return nil, ErrNotFound
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study history document: %w", err)
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	ref := s.doc(id)
	if ref == nil {
		return ErrNotFound
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete study history document: %w", err)
	}
	return nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*Record, error) {
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode study history document %s: %w", snap.Ref.ID, err)
	}
	return fromFirestoreDoc(snap.Ref.ID, &doc)
}
