package web

import (
	"html/template"

	"rutanorte/api/internal/club"
)

// HomeData feeds the landing view.
type HomeData struct {
	Collections   []club.CollectionInfo
	Authenticated bool
}

// MemberCard is one member in the listing.
type MemberCard struct {
	ID         string
	Name       string
	Type       string
	Motorcycle string
	JoinDate   string
}

type MembersData struct {
	Members       []MemberCard
	Authenticated bool
}

// AchievementCard is one achievement in a listing or a profile.
type AchievementCard struct {
	ID          string
	Name        string
	Description string
}

type AchievementsData struct {
	Achievements  []AchievementCard
	Authenticated bool
}

// MemberProfileData feeds the single-member view.
type MemberProfileData struct {
	ID            string
	Name          string
	Type          string
	Motorcycle    string
	BloodType     string
	JoinDate      string
	TotalKm       string
	RoutesTaken   string
	Achievements  []AchievementCard
	Authenticated bool
}

// RouteCard is one route in the listing.
type RouteCard struct {
	ID          string
	Name        string
	Description string
	Difficulty  string
}

type RoutesData struct {
	Routes        []RouteCard
	Authenticated bool
}

// PageData feeds the document views (normativa, private page, and
// arbitrary sub-pages).
type PageData struct {
	ID            string
	Title         string
	ContentHTML   template.HTML
	ChildPages    []club.ChildPage
	HasMore       bool
	NextCursor    string
	Authenticated bool
}

type LoginData struct {
	Error string
}

// NewMemberCard maps a member record to its listing card.
func NewMemberCard(r club.Record) MemberCard {
	return MemberCard{
		ID:         r.ID,
		Name:       club.ExtractAlias(r.Properties, club.NameAliases, club.NoTitle),
		Type:       club.ExtractAlias(r.Properties, club.MemberTypeAliases, club.NoSelection),
		Motorcycle: club.ExtractAlias(r.Properties, club.MotorcycleAliases, club.NoData),
		JoinDate:   club.ExtractAlias(r.Properties, club.JoinDateAliases, club.NoDate),
	}
}

// NewMemberCards maps a whole listing.
func NewMemberCards(records []club.Record) []MemberCard {
	cards := make([]MemberCard, 0, len(records))
	for _, r := range records {
		cards = append(cards, NewMemberCard(r))
	}
	return cards
}

// NewAchievementCard maps an achievement record to its card.
func NewAchievementCard(r club.Record) AchievementCard {
	return AchievementCard{
		ID:          r.ID,
		Name:        club.ExtractAlias(r.Properties, club.NameAliases, club.NoTitle),
		Description: club.ExtractAlias(r.Properties, club.DescriptionAliases, club.NoData),
	}
}

func NewAchievementCards(records []club.Record) []AchievementCard {
	cards := make([]AchievementCard, 0, len(records))
	for _, r := range records {
		cards = append(cards, NewAchievementCard(r))
	}
	return cards
}

// NewRouteCard maps a route record to its card.
func NewRouteCard(r club.Record) RouteCard {
	return RouteCard{
		ID:          r.ID,
		Name:        club.ExtractAlias(r.Properties, club.NameAliases, club.NoTitle),
		Description: club.ExtractAlias(r.Properties, club.DescriptionAliases, club.NoData),
		Difficulty:  club.ExtractAlias(r.Properties, club.DifficultyAliases, club.NoSelection),
	}
}

func NewRouteCards(records []club.Record) []RouteCard {
	cards := make([]RouteCard, 0, len(records))
	for _, r := range records {
		cards = append(cards, NewRouteCard(r))
	}
	return cards
}

// NewMemberProfile maps a member record plus its resolved achievements
// to the profile view model.
func NewMemberProfile(r club.Record, achievements []club.Record) MemberProfileData {
	return MemberProfileData{
		ID:           r.ID,
		Name:         club.ExtractAlias(r.Properties, club.NameAliases, club.NoTitle),
		Type:         club.ExtractAlias(r.Properties, club.MemberTypeAliases, club.NoSelection),
		Motorcycle:   club.ExtractAlias(r.Properties, club.MotorcycleAliases, club.NoData),
		BloodType:    club.ExtractAlias(r.Properties, club.BloodTypeAliases, club.NoData),
		JoinDate:     club.ExtractAlias(r.Properties, club.JoinDateAliases, club.NoDate),
		TotalKm:      club.ExtractAlias(r.Properties, club.TotalKmAliases, club.NoNumber),
		RoutesTaken:  club.ExtractAlias(r.Properties, club.RoutesTakenAliases, club.NoNumber),
		Achievements: NewAchievementCards(achievements),
	}
}
