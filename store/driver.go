package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrVectorSearchNotSupported is returned by drivers that have no vector
// index. Callers fall back to text search when they see it.
var ErrVectorSearchNotSupported = errors.New("vector search is not supported by this driver")

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// MemoryRecord model related methods.
	CreateMemoryRecord(ctx context.Context, create *MemoryRecord) (*MemoryRecord, error)
	ListMemoryRecords(ctx context.Context, find *FindMemoryRecord) ([]*MemoryRecord, error)
	UpdateMemoryRecord(ctx context.Context, update *UpdateMemoryRecord) error
	DeleteMemoryRecord(ctx context.Context, delete *DeleteMemoryRecord) error

	// UpsertMemoryEmbedding stores the embedding vector for a record.
	// Drivers without vector support return ErrVectorSearchNotSupported.
	UpsertMemoryEmbedding(ctx context.Context, recordID int32, embedding []float32) error

	// SearchMemoriesByVector performs semantic search using vector similarity.
	// Returns records and their similarity scores.
	SearchMemoriesByVector(ctx context.Context, embedding []float32, limit int) ([]*MemoryRecord, []float32, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error
}
