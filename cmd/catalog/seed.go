package main

import (
	"context"
	"fmt"
	"time"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type productSeed struct {
	name        string
	description string
	price       float64
	stock       int
	features    []string
}

var demoProducts = []productSeed{
	{"MacBook Pro 14", "Apple laptop for professional workloads with a Liquid Retina XDR display.", 1999.00, 12, []string{"M3 Pro chip", "18GB RAM", "512GB SSD", "14-inch display"}},
	{"MacBook Air 13", "Thin and light everyday laptop with all-day battery life.", 1099.00, 25, []string{"M3 chip", "8GB RAM", "256GB SSD", "Fanless design"}},
	{"Dell XPS 15", "Premium Windows laptop with an OLED touch display.", 1799.99, 8, []string{"Intel Core i7", "16GB RAM", "1TB SSD", "OLED touch screen"}},
	{"Lenovo ThinkPad X1 Carbon", "Business ultrabook with a durable carbon-fibre chassis.", 1649.00, 15, []string{"Intel Core i7", "16GB RAM", "512GB SSD", "Fingerprint reader"}},
	{"ASUS ROG Zephyrus G14", "Compact gaming laptop with a dedicated GPU.", 1499.99, 5, []string{"AMD Ryzen 9", "RTX 4060", "16GB RAM", "120Hz display"}},
	{"Acer Aspire 5", "Affordable laptop for students and home use.", 549.99, 40, []string{"Intel Core i5", "8GB RAM", "512GB SSD"}},
	{"Logitech MX Master 3S", "Ergonomic wireless mouse with quiet clicks.", 99.99, 60, []string{"8K DPI sensor", "USB-C charging", "Multi-device"}},
	{"Keychron K2", "Compact wireless mechanical keyboard.", 89.00, 35, []string{"Hot-swappable switches", "Bluetooth 5.1", "Mac and Windows layouts"}},
	{"Dell UltraSharp U2723QE", "27-inch 4K monitor with USB-C hub.", 579.99, 10, []string{"4K IPS panel", "90W USB-C", "Height adjustable"}},
	{"Sony WH-1000XM5", "Wireless noise-cancelling headphones.", 399.99, 20, []string{"Active noise cancelling", "30-hour battery", "Multipoint Bluetooth"}},
	{"Anker 737 Power Bank", "24,000mAh portable charger that can power a laptop.", 149.99, 0, []string{"140W output", "Smart display", "USB-C PD"}},
	{"Samsung T7 Shield", "Rugged portable SSD.", 129.99, 50, []string{"1TB", "USB 3.2 Gen 2", "IP65 rated"}},
}

// seedProducts inserts the demo catalog into an empty products table and
// returns how many rows were written.
func seedProducts(ctx context.Context, factory unitofwork.RepositoryFactory) (int, error) {
	uow := factory.NewUnitOfWork(ctx)

	existing, err := uow.ProductRepository().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	now := time.Now()
	products := make([]*entity.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		products = append(products, &entity.Product{
			Id:          uuid.New(),
			Name:        p.name,
			Description: p.description,
			Price:       p.price,
			Stock:       p.stock,
			Features:    p.features,
			CreatedAt:   now,
		})
	}

	if err := uow.ProductRepository().CreateBulk(ctx, products); err != nil {
		return 0, fmt.Errorf("insert products: %w", err)
	}
	return len(products), nil
}
