package catalogstub

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/productreview/internal/domain"
)

type seedReview struct {
	name    string
	rating  int
	comment string
	helpful int
	age     time.Duration
}

type seedProduct struct {
	name        string
	description string
	category    string
	price       string
	image       string
	summary     string
	reviews     []seedReview
}

const day = 24 * time.Hour

var seedCatalog = []seedProduct{
	{
		name:        "Aurora Noise-Cancelling Headphones",
		description: "Over-ear wireless headphones with adaptive noise cancelling and 30 hour battery life.",
		category:    domain.CategoryAudio,
		price:       "249.99",
		image:       "https://images.example.com/aurora-headphones.jpg",
		summary:     "Reviewers praise the noise cancelling and comfort; a few mention a tight fit for larger heads.",
		reviews: []seedReview{
			{"Maya", 5, "Best noise cancelling I have tried at this price.", 12, 3 * day},
			{"Tom", 4, "Great sound, slightly tight after a few hours.", 4, 10 * day},
			{"Priya", 5, "Battery lasts all week on my commute.", 7, 40 * day},
		},
	},
	{
		name:        "Pulse True Wireless Earbuds",
		description: "Compact earbuds with transparency mode and wireless charging case.",
		category:    domain.CategoryAudio,
		price:       "129.00",
		image:       "https://images.example.com/pulse-earbuds.jpg",
		reviews: []seedReview{
			{"Leo", 4, "Small, light and they stay in during runs.", 2, 5 * day},
			{"", 3, "Case scratches easily.", 0, 12 * day},
		},
	},
	{
		name:        "Bookshelf Speaker Pair",
		description: "Powered bookshelf speakers with optical input and Bluetooth.",
		category:    domain.CategoryAudio,
		price:       "179.50",
	},
	{
		name:        "Stratus 14 Ultrabook",
		description: "14 inch laptop with a 2.8K display, 16GB memory and 1TB SSD.",
		category:    domain.CategoryLaptops,
		price:       "1299.00",
		image:       "https://images.example.com/stratus-14.jpg",
		summary:     "Owners like the display and battery; the webcam is a common complaint.",
		reviews: []seedReview{
			{"Ana", 5, "Screen is gorgeous and it runs cool.", 9, 2 * day},
			{"Chris", 4, "Fast machine, webcam is mediocre.", 3, 15 * day},
			{"Jordan", 2, "Trackpad stopped clicking after a month.", 6, 70 * day},
		},
	},
	{
		name:        "Forge 16 Gaming Laptop",
		description: "16 inch gaming laptop with a 240Hz panel and dedicated graphics.",
		category:    domain.CategoryLaptops,
		price:       "1899.99",
		image:       "https://images.example.com/forge-16.jpg",
		reviews: []seedReview{
			{"Sam", 5, "Runs everything on high settings.", 5, 1 * day},
			{"Riley", 3, "Fans are loud under load.", 1, 20 * day},
		},
	},
	{
		name:        "Slate 11 Tablet",
		description: "11 inch tablet with stylus support and all-day battery.",
		category:    domain.CategoryTablets,
		price:       "449.00",
		image:       "https://images.example.com/slate-11.jpg",
		reviews: []seedReview{
			{"Noor", 4, "Perfect for note taking with the pen.", 2, 8 * day},
		},
	},
	{
		name:        "Slate Mini Tablet",
		description: "8 inch tablet for reading and streaming.",
		category:    domain.CategoryTablets,
		price:       "229.99",
	},
	{
		name:        "Stride Fitness Watch",
		description: "GPS fitness watch with heart-rate, sleep tracking and 10 day battery.",
		category:    domain.CategoryWearables,
		price:       "199.00",
		image:       "https://images.example.com/stride-watch.jpg",
		summary:     "Accurate GPS and long battery life are the highlights.",
		reviews: []seedReview{
			{"Kai", 5, "GPS locks fast and tracks my trail runs accurately.", 8, 4 * day},
			{"Elena", 4, "Sleep tracking is surprisingly good.", 2, 9 * day},
			{"Ben", 4, "Strap could be softer.", 0, 33 * day},
			{"", 1, "Stopped syncing with my phone.", 3, 90 * day},
		},
	},
	{
		name:        "Loop Smart Ring",
		description: "Titanium ring tracking sleep, readiness and heart-rate variability.",
		category:    domain.CategoryWearables,
		price:       "299.00",
	},
	{
		name:        "Vector Mechanical Keyboard",
		description: "Hot-swappable mechanical keyboard with tactile switches and RGB lighting.",
		category:    domain.CategoryGaming,
		price:       "139.99",
		image:       "https://images.example.com/vector-keyboard.jpg",
		reviews: []seedReview{
			{"Ivy", 5, "Switches feel amazing, great build quality.", 6, 6 * day},
			{"Omar", 4, "Software is clunky but the board is great.", 1, 25 * day},
		},
	},
	{
		name:        "Apex Wireless Mouse",
		description: "Lightweight wireless gaming mouse with a 26K DPI sensor.",
		category:    domain.CategoryGaming,
		price:       "89.99",
		reviews: []seedReview{
			{"Zoe", 5, "Featherweight and precise.", 2, 3 * day},
		},
	},
	{
		name:        "Horizon Controller",
		description: "Wireless controller with hall-effect sticks for PC and console.",
		category:    domain.CategoryGaming,
		price:       "69.00",
	},
	{
		name:        "Beam 4K Streaming Stick",
		description: "4K HDR streaming stick with voice remote.",
		category:    domain.CategoryElectronics,
		price:       "49.99",
		reviews: []seedReview{
			{"Grace", 4, "Snappy menus and the remote is handy.", 1, 11 * day},
			{"Hugo", 5, "Easy setup, great picture.", 0, 14 * day},
		},
	},
	{
		name:        "Nimbus Smart Speaker",
		description: "Voice assistant speaker with room-filling sound.",
		category:    domain.CategoryElectronics,
		price:       "99.00",
		image:       "https://images.example.com/nimbus-speaker.jpg",
	},
	{
		name:        "Lumen Action Camera",
		description: "Waterproof 5K action camera with image stabilisation.",
		category:    domain.CategoryElectronics,
		price:       "349.00",
		reviews: []seedReview{
			{"Mateo", 3, "Stabilisation is great, battery is not.", 4, 18 * day},
		},
	},
	{
		name:        "Dock Pro USB-C Hub",
		description: "Eleven-port USB-C hub with 100W pass-through charging.",
		category:    domain.CategoryAccessories,
		price:       "79.99",
		reviews: []seedReview{
			{"Lena", 5, "Drives two monitors without issue.", 3, 7 * day},
		},
	},
	{
		name:        "Volt 20K Power Bank",
		description: "20,000mAh power bank with 65W USB-C output.",
		category:    domain.CategoryAccessories,
		price:       "59.00",
	},
	{
		name:        "Sleeve 14 Laptop Case",
		description: "Padded water-resistant sleeve for 13 and 14 inch laptops.",
		category:    domain.CategoryAccessories,
		price:       "29.99",
		reviews: []seedReview{
			{"Fatima", 4, "Fits snugly, good zipper.", 0, 30 * day},
		},
	},
}

// Seed fills s with the demo catalog. Review timestamps are relative to now.
func Seed(s *Store, now time.Time) {
	for _, sp := range seedCatalog {
		p := domain.Product{
			Name:        sp.name,
			Description: sp.description,
			Category:    sp.category,
			Price:       decimal.RequireFromString(sp.price),
		}
		if sp.image != "" {
			image := sp.image
			p.ImageURL = &image
		}
		if sp.summary != "" {
			summary := sp.summary
			p.AISummary = &summary
		}
		p = s.AddProduct(p)

		for _, sr := range sp.reviews {
			at := now.Add(-sr.age).UTC().Truncate(time.Second)
			// Seed data is always valid.
			_, _ = s.AddReview(p.ID, domain.Review{
				ReviewerName: sr.name,
				Rating:       sr.rating,
				Comment:      sr.comment,
				HelpfulCount: sr.helpful,
				CreatedAt:    &at,
			})
		}
	}
}

// NewSeededStore returns a store holding the demo catalog.
func NewSeededStore(now time.Time) *Store {
	s := NewStore()
	Seed(s, now)
	return s
}
