package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

// Author identity and loves are stored as jsonb snapshots so forum
// content keeps the name and photo the author had when posting.

// ListCategories returns categories in display order.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]domain.ForumCategory, error) {
	query := `
		SELECT id, name, description, display_order, created_at
		FROM forum_categories ORDER BY display_order ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.ForumCategory
	for rows.Next() {
		var c domain.ForumCategory
		var description *string
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.Order, &c.CreatedAt); err != nil {
			return nil, err
		}
		if description != nil {
			c.Description = *description
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category.
func (r *PostgresRepository) CreateCategory(ctx context.Context, category domain.ForumCategory) error {
	query := `
		INSERT INTO forum_categories (id, name, description, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	return r.execWithRetry(ctx, query,
		category.ID, category.Name, category.Description, category.Order, category.CreatedAt,
	)
}

// DeleteCategory removes a category. Topics cascade at the schema level.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM forum_categories WHERE id = $1`, id)
}

// CreateTopic inserts a topic.
func (r *PostgresRepository) CreateTopic(ctx context.Context, topic domain.ForumTopic) error {
	query := `
		INSERT INTO forum_topics (id, category_id, title, content, author, image_url, pinned, locked, views, replies, loves, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	return r.execWithRetry(ctx, query,
		topic.ID, topic.CategoryID, topic.Title, topic.Content, topic.Author,
		topic.ImageURL, topic.Pinned, topic.Locked, topic.Views, topic.Replies,
		topic.Loves, topic.CreatedAt, topic.UpdatedAt,
	)
}

// GetTopic returns one topic, or nil when absent.
func (r *PostgresRepository) GetTopic(ctx context.Context, id uuid.UUID) (*domain.ForumTopic, error) {
	query := `
		SELECT id, category_id, title, content, author, image_url, pinned, locked, views, replies, loves, created_at, updated_at
		FROM forum_topics WHERE id = $1
	`
	topic, err := scanTopic(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return topic, err
}

// ListTopics returns a category's topics, pinned first, then by latest
// activity.
func (r *PostgresRepository) ListTopics(ctx context.Context, categoryID uuid.UUID) ([]domain.ForumTopic, error) {
	query := `
		SELECT id, category_id, title, content, author, image_url, pinned, locked, views, replies, loves, created_at, updated_at
		FROM forum_topics WHERE category_id = $1
		ORDER BY pinned DESC, updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []domain.ForumTopic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}
	return topics, rows.Err()
}

// UpsertTopic overwrites the full topic row, creating it if absent.
func (r *PostgresRepository) UpsertTopic(ctx context.Context, topic domain.ForumTopic) error {
	query := `
		INSERT INTO forum_topics (id, category_id, title, content, author, image_url, pinned, locked, views, replies, loves, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			author = EXCLUDED.author,
			image_url = EXCLUDED.image_url,
			pinned = EXCLUDED.pinned,
			locked = EXCLUDED.locked,
			replies = EXCLUDED.replies,
			loves = EXCLUDED.loves,
			updated_at = EXCLUDED.updated_at
	`
	// views deliberately not overwritten, IncrementTopicViews owns it
	return r.execWithRetry(ctx, query,
		topic.ID, topic.CategoryID, topic.Title, topic.Content, topic.Author,
		topic.ImageURL, topic.Pinned, topic.Locked, topic.Views, topic.Replies,
		topic.Loves, topic.CreatedAt, topic.UpdatedAt,
	)
}

// DeleteTopic removes a topic. Posts cascade at the schema level.
func (r *PostgresRepository) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM forum_topics WHERE id = $1`, id)
}

// IncrementTopicViews bumps the topic's view counter.
func (r *PostgresRepository) IncrementTopicViews(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `UPDATE forum_topics SET views = views + 1 WHERE id = $1`, id)
}

// CreatePost inserts a reply.
func (r *PostgresRepository) CreatePost(ctx context.Context, post domain.ForumPost) error {
	query := `
		INSERT INTO forum_posts (id, topic_id, content, author, image_url, loves, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return r.execWithRetry(ctx, query,
		post.ID, post.TopicID, post.Content, post.Author, post.ImageURL, post.Loves, post.CreatedAt,
	)
}

// ListPosts returns a topic's replies oldest first.
func (r *PostgresRepository) ListPosts(ctx context.Context, topicID uuid.UUID) ([]domain.ForumPost, error) {
	query := `
		SELECT id, topic_id, content, author, image_url, loves, created_at
		FROM forum_posts WHERE topic_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.ForumPost
	for rows.Next() {
		var p domain.ForumPost
		var imageURL *string
		if err := rows.Scan(&p.ID, &p.TopicID, &p.Content, &p.Author, &imageURL, &p.Loves, &p.CreatedAt); err != nil {
			return nil, err
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a single reply.
func (r *PostgresRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	return r.execWithRetry(ctx, `DELETE FROM forum_posts WHERE id = $1`, id)
}

func scanTopic(row pgx.Row) (*domain.ForumTopic, error) {
	var t domain.ForumTopic
	var imageURL *string

	err := row.Scan(
		&t.ID, &t.CategoryID, &t.Title, &t.Content, &t.Author,
		&imageURL, &t.Pinned, &t.Locked, &t.Views, &t.Replies,
		&t.Loves, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageURL != nil {
		t.ImageURL = *imageURL
	}
	return &t, nil
}
