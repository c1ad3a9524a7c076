// Package filter describes ad-hoc list filters passed from the API to repositories.
package filter

// ComparisonType is the comparison applied by a filter item.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	Contains       ComparisonType = "contains" // ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is a single filter condition.
type Item struct {
	Field    string         `json:"field"` // snake_case column
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Valid reports whether the operator is known.
func (c ComparisonType) Valid() bool {
	switch c {
	case Equal, NotEqual, LessOrEqual, GreaterOrEqual, InList, Contains, IsNull, IsNotNull:
		return true
	}
	return false
}
