package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	CORSOrigin string

	// Upstream integration
	NotionToken   string
	NotionBaseURL string
	NotionVersion string

	// Configured collections
	MembersDatabaseID      string
	AchievementsDatabaseID string
	RoutesDatabaseID       string

	// Private "normativa" document
	PrivatePageID string

	// Session Configuration
	SitePasswordHash string
	SessionTTL       time.Duration
	// Redis Configuration
	RedisURL string
}

func Load() Config {
	return Config{
		Addr:       getenv("API_ADDR", ":3000"),
		CORSOrigin: getenv("CLUB_CORS_ORIGIN", "*"),

		NotionToken:   getenv("NOTION_API_KEY", ""),
		NotionBaseURL: getenv("NOTION_BASE_URL", "https://api.notion.com"),
		NotionVersion: getenv("NOTION_VERSION", "2025-09-03"),

		MembersDatabaseID:      getenv("CLUB_MEMBERS_DB", "16d03b7b-0a84-8037-8bf9-fbed98efe753"),
		AchievementsDatabaseID: getenv("CLUB_ACHIEVEMENTS_DB", "24403b7b-0a84-80ee-9e6d-fe5d8ec10aee"),
		RoutesDatabaseID:       getenv("CLUB_ROUTES_DB", ""),

		PrivatePageID: getenv("CLUB_PRIVATE_PAGE", ""),

		// Empty hash disables the private area login
		SitePasswordHash: getenv("CLUB_PASSWORD_HASH", ""),
		SessionTTL:       time.Duration(getenvInt("CLUB_SESSION_TTL_SECONDS", 86400)) * time.Second,
		// Redis - optional, in-memory session store used when unset
		RedisURL: getenv("REDIS_URL", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
