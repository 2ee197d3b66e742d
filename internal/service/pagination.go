// Package service holds the business rules between HTTP handlers and repositories.
package service

const (
	DefaultPerPage = 10
	MaxPerPage     = 50
	SearchLimit    = 20
)

// Page is a 1-based page request.
type Page struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to >= 1 and per-page to 1..MaxPerPage.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Limit is the SQL LIMIT for the page.
func (p Page) Limit() int { return p.Normalize().PerPage }

// Offset is the SQL OFFSET for the page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}
