package product

// Category is a closed set of product categories. The zero value is
// CategoryUnknown. Categories cross the wire and the database as their
// symbolic names, never as ordinals.
type Category int32

const (
	CategoryUnknown Category = iota
	CategoryCloths
	CategoryFood
	CategoryTools
	CategoryHousewares
	CategoryAutomotive
)

var categoryNames = map[Category]string{
	CategoryUnknown:    "UNKNOWN",
	CategoryCloths:     "CLOTHS",
	CategoryFood:       "FOOD",
	CategoryTools:      "TOOLS",
	CategoryHousewares: "HOUSEWARES",
	CategoryAutomotive: "AUTOMOTIVE",
}

var categoriesByName = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for c, name := range categoryNames {
		m[name] = c
	}
	return m
}()

// String returns the symbolic name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryUnknown]
}

// ParseCategory maps a symbolic name to its Category. An unrecognized name
// is a ValidationError, not a silent fallback to CategoryUnknown.
func ParseCategory(name string) (Category, error) {
	if c, ok := categoriesByName[name]; ok {
		return c, nil
	}
	return CategoryUnknown, &ValidationError{
		Field:  "category",
		Reason: "unknown category " + name,
	}
}
