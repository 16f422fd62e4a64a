package model

// Product is a single catalog entry.
type Product struct {
	ID       int64
	Name     string
	Category string
	Color    string
	Size     string
	ImageURL string
	Price    float64
}

// ProductFilter narrows a product listing. Empty fields are not applied.
type ProductFilter struct {
	Category string
	Color    string
	Size     string
}

// IsEmpty reports whether no filter field is set.
func (f ProductFilter) IsEmpty() bool {
	return f.Category == "" && f.Color == "" && f.Size == ""
}

// InsertResult describes a completed insert of one or more products.
// IDs are in the same order as the products that were submitted.
type InsertResult struct {
	IDs          []int64
	AffectedRows int64
}
