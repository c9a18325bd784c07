package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/serde"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GeneratedExamCollection is the collection holding materialized generations.
const GeneratedExamCollection = "ExamEnvironmentGeneratedExam"

var (
	ErrEnvironmentNotConfigured = errors.New("environment database not configured")
	ErrInvalidExamID            = errors.New("invalid exam id")
)

// GenerationRepository reads generated exams from the per-environment
// databases. Documents are returned in wire format.
type GenerationRepository struct {
	databases map[model.Environment]*mongo.Database
}

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(databases map[model.Environment]*mongo.Database) *GenerationRepository {
	return &GenerationRepository{databases: databases}
}

// FindByExamID returns every generation of examID in env, oldest first.
func (r *GenerationRepository) FindByExamID(ctx context.Context, env model.Environment, examID string) ([]any, error) {
	coll, err := r.collection(env)
	if err != nil {
		return nil, err
	}

	oid, err := bson.ObjectIDFromHex(examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExamID, examID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{{Key: "examId", Value: oid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s generations: %w", env, err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s generations: %w", env, err)
	}

	out := make([]any, len(docs))
	for i, doc := range docs {
		out[i] = serde.FromBSON(doc)
	}
	return out, nil
}

// Ping checks that env's deployment is reachable.
func (r *GenerationRepository) Ping(ctx context.Context, env model.Environment) error {
	coll, err := r.collection(env)
	if err != nil {
		return err
	}
	return coll.Database().Client().Ping(ctx, nil)
}

func (r *GenerationRepository) collection(env model.Environment) (*mongo.Collection, error) {
	if _, err := model.ParseEnvironment(string(env)); err != nil {
		return nil, err
	}
	db, ok := r.databases[env]
	if !ok || db == nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotConfigured, env)
	}
	return db.Collection(GeneratedExamCollection), nil
}
