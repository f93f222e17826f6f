package models

import "time"

// postPreviewLen is the number of characters of the text a post renders as its short form.
const postPreviewLen = 15

// Post is a text entry by an author, optionally attached to a group and an image.
type Post struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`
	// PubDate is set once on insert and never updated afterwards.
	PubDate  time.Time `gorm:"autoCreateTime;<-:create;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the path of the uploaded file relative to the media root, empty when absent.
	Image string `gorm:"size:255;not null;default:''" json:"image,omitempty"`
}

// String returns the first characters of the post text.
func (p Post) String() string {
	return Truncate(p.Text, postPreviewLen)
}

// Truncate returns the first n characters of s, counted in runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
