package app

import (
	"errors"
	"net/http"

	"rutanorte/api/internal/club"
	"rutanorte/api/internal/notion"
)

// mapError translates domain errors into the JSON error surface. Every
// body carries an error code; message and details are optional.
func mapError(err error) (status int, code, message string, details any) {
	if errors.Is(err, club.ErrUnknownCollection) {
		return http.StatusNotFound, "VALIDATION_ERROR", "Database not found", nil
	}
	if errors.Is(err, club.ErrPrivatePageUnconfigured) {
		return http.StatusNotFound, "NOT_FOUND", "No private page is configured", nil
	}

	var upstreamErr *notion.Error
	if errors.As(err, &upstreamErr) {
		switch upstreamErr.Kind {
		case notion.KindNotFound:
			return http.StatusNotFound, "NOT_FOUND",
				"Resource not found. Verify it is shared with the integration.",
				upstreamErr.Message
		case notion.KindNoDataSource:
			return http.StatusInternalServerError, "NO_DATA_SOURCE",
				"The database exposes no data sources", upstreamErr.Message
		default:
			return http.StatusInternalServerError, "UPSTREAM_ERROR",
				"Upstream request failed", upstreamErr.Message
		}
	}

	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
