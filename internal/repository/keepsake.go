package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrMemoryNotFound    = errors.New("memory not found")
)

type MilestoneRepository interface {
	Create(ctx context.Context, m *model.Milestone) error
	ByRoom(ctx context.Context, roomID string) ([]*model.Milestone, error)
	InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Milestone, error)
	Delete(ctx context.Context, roomID, id string) error
}

type milestoneRepository struct {
	db *sqlx.DB
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(ctx context.Context, m *model.Milestone) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO milestones (id, room_id, created_by, title, happened_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.RoomID, m.CreatedBy, m.Title, m.HappenedOn, m.CreatedAt)
	return err
}

func (r *milestoneRepository) ByRoom(ctx context.Context, roomID string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `SELECT * FROM milestones WHERE room_id = $1 ORDER BY happened_on DESC`
	err := r.db.SelectContext(ctx, &milestones, query, roomID)
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *milestoneRepository) InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `
		SELECT * FROM milestones
		WHERE room_id = $1 AND happened_on >= $2 AND happened_on <= $3
		ORDER BY happened_on DESC
	`
	err := r.db.SelectContext(ctx, &milestones, query, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *milestoneRepository) Delete(ctx context.Context, roomID, id string) error {
	ok, err := casUpdate(ctx, r.db, `DELETE FROM milestones WHERE id = $1 AND room_id = $2`, id, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMilestoneNotFound
	}
	return nil
}

type MemoryRepository interface {
	Create(ctx context.Context, m *model.Memory) error
	ByID(ctx context.Context, id string) (*model.Memory, error)
	ByRoom(ctx context.Context, roomID string) ([]*model.Memory, error)
	InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Memory, error)
	Delete(ctx context.Context, roomID, id string) error
}

type memoryRepository struct {
	db *sqlx.DB
}

func NewMemoryRepository(db *sqlx.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

func (r *memoryRepository) Create(ctx context.Context, m *model.Memory) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO memories (id, room_id, created_by, title, body, happened_on, photo_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.RoomID,
		m.CreatedBy,
		m.Title,
		m.Body,
		m.HappenedOn,
		m.PhotoKey,
		m.CreatedAt,
	)
	return err
}

func (r *memoryRepository) ByID(ctx context.Context, id string) (*model.Memory, error) {
	m := &model.Memory{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM memories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMemoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *memoryRepository) ByRoom(ctx context.Context, roomID string) ([]*model.Memory, error) {
	var memories []*model.Memory
	query := `SELECT * FROM memories WHERE room_id = $1 ORDER BY happened_on DESC, created_at DESC`
	err := r.db.SelectContext(ctx, &memories, query, roomID)
	if err != nil {
		return nil, err
	}
	return memories, nil
}

func (r *memoryRepository) InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Memory, error) {
	var memories []*model.Memory
	query := `
		SELECT * FROM memories
		WHERE room_id = $1 AND happened_on >= $2 AND happened_on <= $3
		ORDER BY happened_on DESC, created_at DESC
	`
	err := r.db.SelectContext(ctx, &memories, query, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return memories, nil
}

func (r *memoryRepository) Delete(ctx context.Context, roomID, id string) error {
	ok, err := casUpdate(ctx, r.db, `DELETE FROM memories WHERE id = $1 AND room_id = $2`, id, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemoryNotFound
	}
	return nil
}
