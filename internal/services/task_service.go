package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhammedsuhaib/raheel-be/internal/models"
)

// TaskServiceProvider defines the interface for task services. Every
// operation is scoped to the owning user: a task owned by someone else is
// indistinguishable from a task that does not exist.
type TaskServiceProvider interface {
	ListByUser(userID string) ([]models.Task, error)
	GetByID(userID, id string) (models.Task, error)
	Create(userID, title, description string, priority models.Priority) (models.Task, error)
	Update(userID, id string, patch models.TaskPatch) (models.Task, error)
	Delete(userID, id string) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	db *sql.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB) *TaskService {
	return &TaskService{db: db}
}

const taskColumns = "id, title, description, completed, priority, user_id, created_at, updated_at"

func scanTask(scanner interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var desc sql.NullString
	err := scanner.Scan(
		&task.ID, &task.Title, &desc, &task.Completed, &task.Priority,
		&task.UserID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return task, err
	}
	task.Description = desc.String
	return task, nil
}

// ListByUser retrieves all tasks owned by a user, newest first.
func (s *TaskService) ListByUser(userID string) ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetByID retrieves a single task, scoped to its owner.
func (s *TaskService) GetByID(userID, id string) (models.Task, error) {
	row := s.db.QueryRow(
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?",
		id, userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// Create inserts a new task for the given user. The owner is always the
// authenticated caller; defaults are completed=false and priority=medium.
func (s *TaskService) Create(userID, title, description string, priority models.Priority) (models.Task, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(
		"INSERT INTO tasks(id, title, description, completed, priority, user_id, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.Title, task.Description, task.Completed, task.Priority,
		task.UserID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

// Update applies a patch to a task's mutable fields and refreshes
// updated_at. The owner and id never change. The single scoped statement
// makes a vanished or foreign row surface as ErrNotFound rather than a
// silent zero-row update.
func (s *TaskService) Update(userID, id string, patch models.TaskPatch) (models.Task, error) {
	res, err := s.db.Exec(
		"UPDATE tasks SET title = COALESCE(?, title), description = COALESCE(?, description), completed = COALESCE(?, completed), priority = COALESCE(?, priority), updated_at = ? WHERE id = ? AND user_id = ?",
		patch.Title, patch.Description, patch.Completed, patch.Priority, time.Now().UTC(),
		id, userID,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, ErrNotFound
	}
	return s.GetByID(userID, id)
}

// Delete removes a task, scoped to its owner. Returns ErrNotFound when the
// task is absent or owned by another user.
func (s *TaskService) Delete(userID, id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
