package models

// Request type sysnames. Each maps to a top-level category and selects the
// attribute sub-record created together with the request.
const (
	CategoryAccommodation = "accommodation"
	CategoryTransport     = "transport"
	CategoryEntertainment = "entertainment"
)

// Category is a node in the service category tree. The tree is two levels
// deep in practice: top-level categories with a nil parent and leaf
// categories pointing at them.
type Category struct {
	BaseModel

	ParentID *string   `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Category `gorm:"foreignKey:ParentID" json:"-"`

	// Sysname is the stable type key used to resolve categories from
	// request types; it never changes once assigned.
	Sysname string `gorm:"type:varchar(64);uniqueIndex;not null" json:"sysname"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c != nil && c.ParentID == nil
}
