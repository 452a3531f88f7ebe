package models

import "time"

// DefaultNewsLimit is the page size used when a news listing does not ask for one.
const DefaultNewsLimit = 20

// News represents a single news article.
type News struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title" validate:"required"`
	Description   string    `json:"description" bson:"description" validate:"required"`
	Content       string    `json:"content" bson:"content" validate:"required"`
	Source        string    `json:"source" bson:"source" validate:"required"`
	Author        string    `json:"author" bson:"author"`
	Category      string    `json:"category" bson:"category" validate:"required,oneof=technology business sports entertainment health politics science world"`
	Language      string    `json:"language" bson:"language" validate:"omitempty,oneof=en hi ta fr es de"`
	ImageURL      string    `json:"image_url" bson:"image_url"`
	ArticleURL    string    `json:"article_url" bson:"article_url"`
	PublishedDate time.Time `json:"published_date" bson:"published_date"`
	CreatedBy     string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// ApplyDefaults fills the optional article fields the same way the portal
// always has: unknown author, English language, a stock image and a dead link.
func (n *News) ApplyDefaults() {
	if n.Author == "" {
		n.Author = "Unknown"
	}
	if n.Language == "" {
		n.Language = "en"
	}
	if n.ImageURL == "" {
		n.ImageURL = "https://source.unsplash.com/800x400/?news"
	}
	if n.ArticleURL == "" {
		n.ArticleURL = "#"
	}
	if n.PublishedDate.IsZero() {
		n.PublishedDate = time.Now()
	}
}

// NewsFilter narrows a news listing. Zero values mean "no constraint".
type NewsFilter struct {
	Language string
	Category string
	Limit    int
}
