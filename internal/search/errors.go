package search

import (
	"fmt"

	"github.com/young1lin/websearch-mcp/internal/models"
)

// ProviderHTTPError is returned when a provider answers with a non-2xx status.
type ProviderHTTPError struct {
	Provider models.Provider
	Status   int
	Body     string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider.DisplayName(), e.Status, e.Body)
}
