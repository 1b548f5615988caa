package output

import (
	"context"

	"quinn-backend/internal/domain/entity"
)

// BusinessFinder searches for local contractors matching a service type
// near a location. Returned records are not yet persisted.
type BusinessFinder interface {
	Search(ctx context.Context, serviceType, location string, limit int) ([]entity.DiscoveredBusiness, error)
}

// PageScraper fetches a web page as clean readable text (the contact
// extraction input).
type PageScraper interface {
	ReadPage(ctx context.Context, url string) (string, error)
}
