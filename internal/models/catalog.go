package models

// Product is a fresh food item sold from the machines.
type Product struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Species     []string `yaml:"species" json:"species"`
	Price       float64  `yaml:"price" json:"price"`
	// Portion is the pack size as printed on the label, e.g. "300 g".
	Portion string `yaml:"portion" json:"portion"`
	Image   string `yaml:"image" json:"image,omitempty"`
}

// FranchisePackage is one of the entry packages offered to franchisees.
type FranchisePackage struct {
	Name        string   `yaml:"name" json:"name"`
	Price       float64  `yaml:"price" json:"price"`
	Machines    int      `yaml:"machines" json:"machines"`
	Features    []string `yaml:"features" json:"features"`
	Highlighted bool     `yaml:"highlighted" json:"highlighted"`
}

// Review is a customer or franchisee testimonial.
type Review struct {
	Author string `yaml:"author" json:"author"`
	City   string `yaml:"city" json:"city"`
	// Rating is 1 to 5 stars.
	Rating int    `yaml:"rating" json:"rating"`
	Text   string `yaml:"text" json:"text"`
	// Role is "customer" or "franchisee".
	Role string `yaml:"role" json:"role"`
}

type FAQItem struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}
