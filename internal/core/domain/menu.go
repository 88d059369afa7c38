package domain

// Category labels a menu item. Items always carry one of the concrete
// categories; CategoryAll exists only for client-side filtering and is
// never persisted on an item.
type Category string

const (
	CategorySoupNoodle Category = "soup-noodle"
	CategoryRiceNoodle Category = "rice-noodle"
	CategoryAppetizer  Category = "appetizer"
	CategoryBeverage   Category = "beverage"

	CategoryAll Category = "all"
)

// Categories returns the persistable categories in menu display order.
func Categories() []Category {
	return []Category{
		CategorySoupNoodle,
		CategoryRiceNoodle,
		CategoryAppetizer,
		CategoryBeverage,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategorySoupNoodle, CategoryRiceNoodle, CategoryAppetizer, CategoryBeverage:
		return true
	}
	return false
}

// MenuItem is a dish or drink on the menu. Name is the primary
// (Vietnamese) name, NameEn the secondary language. Price is in the
// smallest currency unit (VND has no subunit). The ID is assigned by
// whichever store created the item and never changes afterwards.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	NameEn      string   `json:"nameEn"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    Category `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Available   bool     `json:"available"`
}
