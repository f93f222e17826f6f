package models

// Group is a named community that posts may optionally belong to.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

// TableName keeps the plural table name explicit since "group" is reserved in SQL.
func (Group) TableName() string {
	return "groups"
}

func (g Group) String() string {
	return g.Title
}
