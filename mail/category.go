package mail

import (
	"slices"

	"github.com/hupe1980/meshcore/errors"
)

// Category tags what a package carries.
type Category string

// Known categories.
const (
	CategoryMessage   Category = "message"
	CategoryTool      Category = "tool"
	CategoryModel     Category = "model"
	CategoryNode      Category = "node"
	CategoryNodeList  Category = "node_list"
	CategoryNodeID    Category = "node_id"
	CategoryStart     Category = "start"
	CategoryEnd       Category = "end"
	CategoryCondition Category = "condition"
	CategorySignal    Category = "signal"
	CategoryRequest   Category = "request"
	CategoryResponse  Category = "response"
)

var categories = []Category{
	CategoryMessage, CategoryTool, CategoryModel, CategoryNode, CategoryNodeList, CategoryNodeID,
	CategoryStart, CategoryEnd, CategoryCondition, CategorySignal, CategoryRequest, CategoryResponse,
}

// Categories returns every known category.
func Categories() []Category { return slices.Clone(categories) }

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return slices.Contains(categories, c) }

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// ParseCategory converts a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", errors.WrapSentinel(ErrInvalidPackage, "unknown category %q", s)
	}
	return c, nil
}
