// Package seed carries the default Pho Viet menu and loads it through
// whichever store backend is active.
package seed

import (
	"context"
	"fmt"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/port"
)

// MenuItems returns the default menu. Prices are VND.
func MenuItems() []domain.MenuItem {
	return []domain.MenuItem{
		{Name: "Phở bò tái", NameEn: "Rare Beef Pho", Description: "Phở bò truyền thống với thịt bò tái mềm", Price: 65000, Category: domain.CategorySoupNoodle, ImageURL: "/images/pho-bo-tai.jpg", Available: true},
		{Name: "Phở bò chín", NameEn: "Well-done Beef Pho", Description: "Phở với thịt bò nạm chín thơm", Price: 65000, Category: domain.CategorySoupNoodle, ImageURL: "/images/pho-bo-chin.jpg", Available: true},
		{Name: "Phở gà", NameEn: "Chicken Pho", Description: "Phở gà ta thanh ngọt", Price: 60000, Category: domain.CategorySoupNoodle, ImageURL: "/images/pho-ga.jpg", Available: true},
		{Name: "Phở đặc biệt", NameEn: "Special Pho", Description: "Phở đầy đủ tái, nạm, gầu, gân", Price: 75000, Category: domain.CategorySoupNoodle, ImageURL: "/images/pho-dac-biet.jpg", Available: true},
		{Name: "Bún bò Huế", NameEn: "Hue Style Beef Noodle", Description: "Bún bò Huế cay nồng đậm đà", Price: 70000, Category: domain.CategoryRiceNoodle, ImageURL: "/images/bun-bo-hue.jpg", Available: true},
		{Name: "Bún chả Hà Nội", NameEn: "Hanoi Grilled Pork Noodle", Description: "Bún chả nướng than hoa", Price: 65000, Category: domain.CategoryRiceNoodle, ImageURL: "/images/bun-cha.jpg", Available: true},
		{Name: "Bún thịt nướng", NameEn: "Grilled Pork Vermicelli", Description: "Bún thịt nướng chả giò", Price: 60000, Category: domain.CategoryRiceNoodle, ImageURL: "/images/bun-thit-nuong.jpg", Available: true},
		{Name: "Gỏi cuốn", NameEn: "Fresh Spring Rolls", Description: "Gỏi cuốn tôm thịt (2 cuốn)", Price: 45000, Category: domain.CategoryAppetizer, ImageURL: "/images/goi-cuon.jpg", Available: true},
		{Name: "Chả giò", NameEn: "Fried Spring Rolls", Description: "Chả giò chiên giòn (4 cuốn)", Price: 50000, Category: domain.CategoryAppetizer, ImageURL: "/images/cha-gio.jpg", Available: true},
		{Name: "Trà đá", NameEn: "Iced Tea", Description: "Trà đá miễn phí refill", Price: 10000, Category: domain.CategoryBeverage, ImageURL: "/images/tra-da.jpg", Available: true},
		{Name: "Cà phê sữa đá", NameEn: "Vietnamese Iced Coffee", Description: "Cà phê phin sữa đặc", Price: 25000, Category: domain.CategoryBeverage, ImageURL: "/images/ca-phe-sua-da.jpg", Available: true},
		{Name: "Nước chanh", NameEn: "Fresh Lemonade", Description: "Nước chanh tươi", Price: 20000, Category: domain.CategoryBeverage, ImageURL: "/images/nuoc-chanh.jpg", Available: true},
	}
}

// Load creates every default item through store. Run it once to
// initialize an empty backend; ids are assigned by the store.
func Load(ctx context.Context, store port.MenuStore) error {
	for _, item := range MenuItems() {
		if _, err := store.CreateMenuItem(ctx, item); err != nil {
			return fmt.Errorf("seed %q: %w", item.Name, err)
		}
	}
	return nil
}
