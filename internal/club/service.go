package club

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"rutanorte/api/internal/notion"
)

// CollectionKey identifies one of the fixed logical record groups.
type CollectionKey string

const (
	CollectionMembers      CollectionKey = "members"
	CollectionAchievements CollectionKey = "achievements"
	CollectionRoutes       CollectionKey = "routes"
)

// Collection binds a logical group to its upstream database. Collections
// are configuration, never created or destroyed at runtime.
type Collection struct {
	Key                 CollectionKey
	DatabaseID          string
	FallbackTitle       string
	FallbackDescription string
}

// ErrUnknownCollection marks a requested database id outside the
// configured set. No upstream call is made for these.
var ErrUnknownCollection = errors.New("unknown collection id")

// ErrPrivatePageUnconfigured means no private page id is set.
var ErrPrivatePageUnconfigured = errors.New("private page not configured")

// Record is a read-only snapshot of one upstream item.
type Record struct {
	ID             string                          `json:"id"`
	CreatedTime    string                          `json:"created_time"`
	LastEditedTime string                          `json:"last_edited_time"`
	Properties     map[string]notion.PropertyValue `json:"properties"`
}

// CollectionInfo is the listing metadata of one collection.
type CollectionInfo struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	CreatedTime    string        `json:"created_time"`
	LastEditedTime string        `json:"last_edited_time"`
	URL            string        `json:"url,omitempty"`
	Type           CollectionKey `json:"type"`
}

// CollectionDetail is metadata plus the first page of items.
type CollectionDetail struct {
	ID          string                           `json:"id"`
	Title       string                           `json:"title"`
	Description string                           `json:"description"`
	Properties  map[string]notion.PropertySchema `json:"properties"`
	Type        CollectionKey                    `json:"type"`
	Items       []Record                         `json:"items"`
}

// RecordList is the payload of the per-collection list endpoints.
type RecordList struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Type  CollectionKey `json:"type"`
	Items []Record      `json:"items"`
}

// ChildPage is a navigable sub-page discovered among a page's children.
type ChildPage struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	HasChildren bool   `json:"has_children"`
}

// PageChildren is one page of a document node's immediate children,
// partitioned into sub-pages and renderable content blocks.
type PageChildren struct {
	ContentBlocks []notion.Block `json:"content_blocks"`
	ChildPages    []ChildPage    `json:"child_pages"`
	HasMore       bool           `json:"has_more"`
	NextCursor    string         `json:"next_cursor,omitempty"`
}

// PageInfo is the slim page metadata the views need.
type PageInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CreatedTime    string `json:"created_time"`
	LastEditedTime string `json:"last_edited_time"`
}

// PrivatePageView is the private document plus its first children page.
type PrivatePageView struct {
	Page          PageInfo       `json:"page"`
	ContentBlocks []notion.Block `json:"content_blocks"`
	ChildPages    []ChildPage    `json:"child_pages"`
}

// Upstream is the slice of the notion client the service consumes.
type Upstream interface {
	RetrieveDatabase(ctx context.Context, id string) (*notion.Database, error)
	QueryDataSource(ctx context.Context, dataSourceID string, pageSize int) (*notion.QueryResult, error)
	RetrievePage(ctx context.Context, id string) (*notion.Page, error)
	ListBlockChildren(ctx context.Context, blockID string, pageSize int, cursor string) (*notion.BlockChildren, error)
}

// Service assembles club views from upstream records.
type Service struct {
	upstream      Upstream
	resolver      *notion.Resolver
	collections   []Collection
	privatePageID string
	log           zerolog.Logger
}

func NewService(upstream Upstream, resolver *notion.Resolver, collections []Collection, privatePageID string, log zerolog.Logger) *Service {
	return &Service{
		upstream:      upstream,
		resolver:      resolver,
		collections:   collections,
		privatePageID: privatePageID,
		log:           log,
	}
}

func (s *Service) collectionByID(id string) (Collection, bool) {
	for _, c := range s.collections {
		if c.DatabaseID == id {
			return c, true
		}
	}
	return Collection{}, false
}

func (s *Service) collectionByKey(key CollectionKey) (Collection, bool) {
	for _, c := range s.collections {
		if c.Key == key {
			return c, true
		}
	}
	return Collection{}, false
}

// ListCollections fetches metadata for every configured collection. A
// collection that fails to load is logged and omitted instead of
// aborting the whole listing.
func (s *Service) ListCollections(ctx context.Context) []CollectionInfo {
	infos := make([]CollectionInfo, 0, len(s.collections))
	for _, c := range s.collections {
		db, err := s.upstream.RetrieveDatabase(ctx, c.DatabaseID)
		if err != nil {
			s.log.Warn().Err(err).Str("collection", string(c.Key)).Msg("collection metadata unavailable")
			continue
		}
		infos = append(infos, s.collectionInfo(c, db))
	}
	return infos
}

func (s *Service) collectionInfo(c Collection, db *notion.Database) CollectionInfo {
	title := notion.PlainText(db.Title)
	if title == "" {
		title = c.FallbackTitle
	}
	description := notion.PlainText(db.Description)
	if description == "" {
		description = c.FallbackDescription
	}
	return CollectionInfo{
		ID:             db.ID,
		Title:          title,
		Description:    description,
		CreatedTime:    db.CreatedTime,
		LastEditedTime: db.LastEditedTime,
		URL:            db.URL,
		Type:           c.Key,
	}
}

// GetCollection returns metadata plus the first page of items for one
// configured database id. Ids outside the configured set fail with
// ErrUnknownCollection before any upstream call.
func (s *Service) GetCollection(ctx context.Context, databaseID string) (*CollectionDetail, error) {
	c, ok := s.collectionByID(databaseID)
	if !ok {
		return nil, ErrUnknownCollection
	}

	db, err := s.upstream.RetrieveDatabase(ctx, c.DatabaseID)
	if err != nil {
		return nil, err
	}
	items, err := s.queryCollection(ctx, c)
	if err != nil {
		return nil, err
	}

	info := s.collectionInfo(c, db)
	return &CollectionDetail{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Properties:  db.Properties,
		Type:        c.Key,
		Items:       items,
	}, nil
}

// ListRecords returns the first page of records for a logical collection.
// Member listings come back hierarchy-sorted with retired and support
// members dropped.
func (s *Service) ListRecords(ctx context.Context, key CollectionKey) (*RecordList, error) {
	c, ok := s.collectionByKey(key)
	if !ok {
		return nil, ErrUnknownCollection
	}
	items, err := s.queryCollection(ctx, c)
	if err != nil {
		return nil, err
	}
	return &RecordList{
		ID:    c.DatabaseID,
		Title: c.FallbackTitle,
		Type:  c.Key,
		Items: items,
	}, nil
}

func (s *Service) queryCollection(ctx context.Context, c Collection) ([]Record, error) {
	dataSourceID, err := s.resolver.Resolve(ctx, c.DatabaseID)
	if err != nil {
		return nil, err
	}
	result, err := s.upstream.QueryDataSource(ctx, dataSourceID, notion.MaxPageSize)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(result.Results))
	for _, page := range result.Results {
		records = append(records, recordFromPage(&page))
	}
	if c.Key == CollectionMembers {
		records = SortMembersByHierarchy(records)
	}
	return records, nil
}

func recordFromPage(page *notion.Page) Record {
	return Record{
		ID:             page.ID,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		Properties:     page.Properties,
	}
}

// GetRecord fetches one record by identifier regardless of collection.
func (s *Service) GetRecord(ctx context.Context, id string) (Record, error) {
	page, err := s.upstream.RetrievePage(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return recordFromPage(page), nil
}

// GetPage fetches one document node's own metadata.
func (s *Service) GetPage(ctx context.Context, id string) (PageInfo, error) {
	page, err := s.upstream.RetrievePage(ctx, id)
	if err != nil {
		return PageInfo{}, err
	}
	return pageInfo(page), nil
}

func pageInfo(page *notion.Page) PageInfo {
	title := page.Title()
	if title == "" {
		title = "Sin título"
	}
	return PageInfo{
		ID:             page.ID,
		Title:          title,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
	}
}

// ListChildren fetches one page of a node's immediate children and
// splits sub-pages from content blocks.
func (s *Service) ListChildren(ctx context.Context, id string, pageSize int, cursor string) (*PageChildren, error) {
	children, err := s.upstream.ListBlockChildren(ctx, id, pageSize, cursor)
	if err != nil {
		return nil, err
	}
	out := &PageChildren{
		ContentBlocks: make([]notion.Block, 0, len(children.Results)),
		ChildPages:    []ChildPage{},
		HasMore:       children.HasMore,
		NextCursor:    children.NextCursor,
	}
	for _, block := range children.Results {
		if block.Type == "child_page" {
			title := block.Content.Title
			if title == "" {
				title = "Sin título"
			}
			out.ChildPages = append(out.ChildPages, ChildPage{
				ID:          block.ID,
				Title:       title,
				HasChildren: block.HasChildren,
			})
			continue
		}
		out.ContentBlocks = append(out.ContentBlocks, block)
	}
	return out, nil
}

// PrivatePage assembles the configured private document: its metadata
// and the first page of its children, fetched concurrently.
func (s *Service) PrivatePage(ctx context.Context) (*PrivatePageView, error) {
	if s.privatePageID == "" {
		return nil, ErrPrivatePageUnconfigured
	}

	var (
		info     PageInfo
		children *PageChildren
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.GetPage(gctx, s.privatePageID)
		return err
	})
	g.Go(func() error {
		var err error
		children, err = s.ListChildren(gctx, s.privatePageID, notion.MaxPageSize, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PrivatePageView{
		Page:          info,
		ContentBlocks: children.ContentBlocks,
		ChildPages:    children.ChildPages,
	}, nil
}

// MemberAchievements resolves a member's relation-typed achievements
// property into full records: extract the id list, fetch each in
// parallel, drop the ones that fail, keep relation order.
func (s *Service) MemberAchievements(ctx context.Context, member Record) []Record {
	pv, ok := FindProperty(member.Properties, AchievementAliases)
	if !ok || pv.Type != "relation" || len(pv.Relation) == 0 {
		return nil
	}

	results := make([]*Record, len(pv.Relation))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range pv.Relation {
		i, rel := i, rel
		g.Go(func() error {
			record, err := s.GetRecord(gctx, rel.ID)
			if err != nil {
				// One unresolvable achievement must not abort
				// the batch.
				s.log.Warn().Err(err).Str("achievement", rel.ID).Msg("achievement fetch failed")
				return nil
			}
			results[i] = &record
			return nil
		})
	}
	_ = g.Wait()

	achievements := make([]Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			achievements = append(achievements, *r)
		}
	}
	return achievements
}

// Ping checks upstream reachability by retrieving the first configured
// collection's metadata.
func (s *Service) Ping(ctx context.Context) error {
	if len(s.collections) == 0 {
		return nil
	}
	_, err := s.upstream.RetrieveDatabase(ctx, s.collections[0].DatabaseID)
	return err
}
