package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthorRef is an author identity snapshot, denormalized at write time so
// forum content keeps the name and photo the author had when posting.
type AuthorRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	PhotoURL string    `json:"photo_url,omitempty"`
}

// ForumCategory groups topics on the community board.
type ForumCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForumTopic is a thread inside a category. Loves is keyed by user id.
type ForumTopic struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Author     AuthorRef       `json:"author"`
	ImageURL   string          `json:"image_url,omitempty"`
	Pinned     bool            `json:"pinned"`
	Locked     bool            `json:"locked"`
	Views      int             `json:"views"`
	Replies    int             `json:"replies"`
	Loves      map[string]bool `json:"loves,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ForumPost is a reply inside a topic.
type ForumPost struct {
	ID        uuid.UUID       `json:"id"`
	TopicID   uuid.UUID       `json:"topic_id"`
	Content   string          `json:"content"`
	Author    AuthorRef       `json:"author"`
	ImageURL  string          `json:"image_url,omitempty"`
	Loves     map[string]bool `json:"loves,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// LoveCount returns the number of users who loved the topic.
func (t ForumTopic) LoveCount() int {
	count := 0
	for _, loved := range t.Loves {
		if loved {
			count++
		}
	}
	return count
}
