package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-service/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListStore persists lists and their embedded items.
// Item mutations are single statements against list_items, so concurrent writers to the same
// list never overwrite each other.
type ListStore struct {
	db *sqlx.DB
}

// NewListStore creates a new list store
func NewListStore(db *sqlx.DB) *ListStore {
	return &ListStore{db: db}
}

const listColumns = "id, owner_id, title, created_at, updated_at"

// GetOrCreate returns the list owned by ownerID, creating the default list on first access.
// The insert is a no-op when the owner already has a list, so concurrent first visits converge
// on a single list.
func (s *ListStore) GetOrCreate(ctx context.Context, ownerID string) (*models.List, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("get or create list: empty owner id")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lists (id, owner_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO NOTHING`,
		uuid.New().String(), ownerID, models.DefaultListTitle, now, now)
	if err != nil {
		return nil, fmt.Errorf("create default list: %w", err)
	}

	var list models.List
	err = s.db.GetContext(ctx, &list, "SELECT "+listColumns+" FROM lists WHERE owner_id = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("load list for owner: %w", err)
	}

	if err := s.loadItems(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get returns the list with its items, or ErrNotFound
func (s *ListStore) Get(ctx context.Context, listID string) (*models.List, error) {
	var list models.List
	err := s.db.GetContext(ctx, &list, "SELECT "+listColumns+" FROM lists WHERE id = ?", listID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	if err := s.loadItems(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *ListStore) loadItems(ctx context.Context, list *models.List) error {
	items := []models.Item{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT id, list_id, text, position, created_at FROM list_items WHERE list_id = ? ORDER BY position",
		list.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	list.Items = items
	return nil
}

// AddItem appends an item to the list owned by ownerID.
// Returns ErrNotFound when no such list exists for that owner.
func (s *ListStore) AddItem(ctx context.Context, listID, ownerID, text string) (*models.Item, error) {
	item := models.Item{
		ID:        uuid.New().String(),
		ListID:    listID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add item: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO list_items (id, list_id, text, position, created_at)
		SELECT ?, l.id, ?, COALESCE((SELECT MAX(position) FROM list_items WHERE list_id = l.id), 0) + 1, ?
		FROM lists l
		WHERE l.id = ? AND l.owner_id = ?`,
		item.ID, item.Text, item.CreatedAt, listID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.GetContext(ctx, &item.Position, "SELECT position FROM list_items WHERE id = ?", item.ID); err != nil {
		return nil, fmt.Errorf("read item position: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE lists SET updated_at = ? WHERE id = ?", item.CreatedAt, listID); err != nil {
		return nil, fmt.Errorf("touch list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes itemID from the list matched by owner and title.
// Title and item id are trimmed before matching. Returns ErrNotFound when no list matches and
// false when the list exists but holds no such item.
func (s *ListStore) DeleteItem(ctx context.Context, ownerID, title, itemID string) (bool, error) {
	var listID string
	err := s.db.GetContext(ctx, &listID,
		"SELECT id FROM lists WHERE owner_id = ? AND title = ?", ownerID, strings.TrimSpace(title))
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("find list by title: %w", err)
	}
	return s.deleteFromList(ctx, listID, itemID)
}

// DeleteItemByListID is DeleteItem keyed by list id instead of title
func (s *ListStore) DeleteItemByListID(ctx context.Context, ownerID, listID, itemID string) (bool, error) {
	var id string
	err := s.db.GetContext(ctx, &id,
		"SELECT id FROM lists WHERE id = ? AND owner_id = ?", strings.TrimSpace(listID), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("find list by id: %w", err)
	}
	return s.deleteFromList(ctx, id, itemID)
}

func (s *ListStore) deleteFromList(ctx context.Context, listID, itemID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM list_items WHERE id = ? AND list_id = ?", strings.TrimSpace(itemID), listID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE lists SET updated_at = ? WHERE id = ?", time.Now().UTC(), listID); err != nil {
		return true, fmt.Errorf("touch list: %w", err)
	}
	return true, nil
}
