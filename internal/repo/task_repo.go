package repo

import (
	"context"
	"errors"

	dom "taskboard/internal/domain"
	"taskboard/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrDuplicate = errors.New("task already exists")
)

// TaskRepo mirrors the task store in durable storage.
type TaskRepo interface {
	List(ctx context.Context) ([]dom.Task, error)
	Insert(ctx context.Context, t dom.Task) error
	Update(ctx context.Context, t dom.Task) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

// List returns all tasks newest first.
func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	query := `
		SELECT id, title, description, priority, completed, created_at, seq
		FROM tasks ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		var t dom.Task
		var priority string
		var seq int64
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.Completed,
			&t.CreatedAt, &seq); err != nil {
			return nil, err
		}
		t.Priority = dom.Priority(priority)
		t.Seq = uint64(seq)
		list = append(list, t)
	}
	return list, rows.Err()
}

// Insert stores a new task. It returns ErrDuplicate if the id exists.
func (r *PGTaskRepo) Insert(ctx context.Context, t dom.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, priority, completed, created_at, seq)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, t.ID, t.Title, t.Description, string(t.Priority),
		t.Completed, t.CreatedAt, int64(t.Seq))
	if utils.IsPGUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update writes the editable fields of t.
func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, priority = $4 WHERE id = $1`,
		t.ID, t.Title, t.Description, string(t.Priority))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) SetCompleted(ctx context.Context, id string, completed bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
