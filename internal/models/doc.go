// Package models defines the domain models shared across the PetVend backend.
//
// # Persisted Models
//
//   - Lead: a form submission from a prospective franchisee, a customer or a
//     newsletter subscriber
//   - User: an admin account of the franchise team, allowed to read leads
//
// # Content Models
//
//   - Article: a blog post loaded from Markdown
//   - CaseStudy: an article describing an existing franchise location
//
// # Catalog Models
//
// Product, FranchisePackage, Review and FAQItem are read from site.yaml.
//
// Calculator inputs and results live in the calculator package; they are
// transient values and never stored.
//
// # Design Principles
//
//  1. Use ID strings (UUID format) instead of pointers for relationships
//  2. Timestamps are Unix seconds, matching the storage layer
//  3. Models carry no behavior beyond small constructors and predicates
package models
