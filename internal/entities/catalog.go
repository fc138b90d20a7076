package entities

import "time"

type Author struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name        string `gorm:"index;size:256;not null" bson:"name" json:"name"`
	AccessLevel int    `gorm:"index;not null" bson:"access_level" json:"access_level"`
	Timestamps  `bson:",inline"`
}

func (a *Author) GetID() string       { return a.ID }
func (a *Author) SetID(id string)     { a.ID = id }
func (a *Author) GetAccessLevel() int { return a.AccessLevel }
func (a *Author) DisplayName() string { return a.Name }

type Series struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name        string `gorm:"index;size:256;not null" bson:"name" json:"name"`
	AccessLevel int    `gorm:"index;not null" bson:"access_level" json:"access_level"`
	Timestamps  `bson:",inline"`
}

func (Series) TableName() string {
	return "series"
}

func (s *Series) GetID() string       { return s.ID }
func (s *Series) SetID(id string)     { s.ID = id }
func (s *Series) GetAccessLevel() int { return s.AccessLevel }
func (s *Series) DisplayName() string { return s.Name }

type Tag struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name        string `gorm:"index;size:100;not null" bson:"name" json:"name"`
	AccessLevel int    `gorm:"index;not null" bson:"access_level" json:"access_level"`
	Timestamps  `bson:",inline"`
}

func (t *Tag) GetID() string       { return t.ID }
func (t *Tag) SetID(id string)     { t.ID = id }
func (t *Tag) GetAccessLevel() int { return t.AccessLevel }
func (t *Tag) DisplayName() string { return t.Name }

// Book is the central catalog record. AuthorID, SeriesID and TagIDs are the
// stored references; Author, Series and Tags are populated on read.
type Book struct {
	ID             string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Title          string    `gorm:"index;size:512;not null" bson:"title" json:"title"`
	AuthorID       string    `gorm:"index;size:36;not null" bson:"author_id" json:"author_id"`
	Author         *Author   `gorm:"foreignKey:AuthorID" bson:"-" json:"author,omitempty"`
	PublishDate    time.Time `bson:"publish_date" json:"publish_date"`
	WordCount      int       `bson:"word_count" json:"word_count"`
	Description    string    `gorm:"type:text" bson:"description" json:"description"`
	AccessLevel    int       `gorm:"index;not null" bson:"access_level" json:"access_level"`
	SeriesID       *string   `gorm:"index;size:36" bson:"series_id,omitempty" json:"series_id,omitempty"`
	Series         *Series   `gorm:"foreignKey:SeriesID" bson:"-" json:"series,omitempty"`
	SeriesIndex    float64   `bson:"series_index" json:"series_index"`
	Tags           []Tag     `gorm:"many2many:book_tags;" bson:"-" json:"tags,omitempty"`
	TagIDs         []string  `gorm:"-" bson:"tag_ids" json:"tag_ids,omitempty"`
	CoverImage     []byte    `bson:"cover_image,omitempty" json:"-"`
	CoverImageType string    `gorm:"size:32" bson:"cover_image_type,omitempty" json:"cover_image_type,omitempty"`
	Timestamps     `bson:",inline"`
}

func (b *Book) GetID() string       { return b.ID }
func (b *Book) SetID(id string)     { b.ID = id }
func (b *Book) GetAccessLevel() int { return b.AccessLevel }
func (b *Book) DisplayName() string { return b.Title }

// HasCover reports whether an embedded cover image is stored for the book.
func (b *Book) HasCover() bool {
	return b.CoverImageType != ""
}

// HasTag reports whether the book references the tag with the given ID.
func (b *Book) HasTag(id string) bool {
	for _, tagID := range b.TagIDs {
		if tagID == id {
			return true
		}
	}
	return false
}

// SeriesRef returns the referenced series ID or an empty string.
func (b *Book) SeriesRef() string {
	if b.SeriesID == nil {
		return ""
	}
	return *b.SeriesID
}

// SyncTagIDs rebuilds TagIDs from the populated Tags slice.
func (b *Book) SyncTagIDs() {
	b.TagIDs = make([]string, 0, len(b.Tags))
	for _, tag := range b.Tags {
		b.TagIDs = append(b.TagIDs, tag.ID)
	}
}
