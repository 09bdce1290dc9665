package club

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"rutanorte/api/internal/notion"
)

type fakeUpstream struct {
	mu sync.Mutex

	databases map[string]*notion.Database
	queries   map[string]*notion.QueryResult
	pages     map[string]*notion.Page
	children  map[string]*notion.BlockChildren

	retrieveDatabaseCalls int
	queryCalls            int
	retrievePageCalls     int
	listChildrenCalls     int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		databases: map[string]*notion.Database{},
		queries:   map[string]*notion.QueryResult{},
		pages:     map[string]*notion.Page{},
		children:  map[string]*notion.BlockChildren{},
	}
}

func (f *fakeUpstream) RetrieveDatabase(_ context.Context, id string) (*notion.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrieveDatabaseCalls++
	db, ok := f.databases[id]
	if !ok {
		return nil, &notion.Error{Kind: notion.KindNotFound, Message: "database not found"}
	}
	return db, nil
}

func (f *fakeUpstream) QueryDataSource(_ context.Context, dataSourceID string, _ int) (*notion.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	result, ok := f.queries[dataSourceID]
	if !ok {
		return nil, &notion.Error{Kind: notion.KindNotFound, Message: "data source not found"}
	}
	return result, nil
}

func (f *fakeUpstream) RetrievePage(_ context.Context, id string) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrievePageCalls++
	page, ok := f.pages[id]
	if !ok {
		return nil, &notion.Error{Kind: notion.KindNotFound, Message: "page not found"}
	}
	return page, nil
}

func (f *fakeUpstream) ListBlockChildren(_ context.Context, blockID string, _ int, _ string) (*notion.BlockChildren, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listChildrenCalls++
	children, ok := f.children[blockID]
	if !ok {
		return nil, &notion.Error{Kind: notion.KindNotFound, Message: "block not found"}
	}
	return children, nil
}

func (f *fakeUpstream) addDatabase(id, title, dataSourceID string) {
	f.databases[id] = &notion.Database{
		ID:          id,
		Title:       []notion.RichText{{PlainText: title}},
		DataSources: []notion.DataSourceRef{{ID: dataSourceID}},
	}
	f.queries[dataSourceID] = &notion.QueryResult{Results: []notion.Page{}}
}

func testCollections() []Collection {
	return []Collection{
		{Key: CollectionMembers, DatabaseID: "db-members", FallbackTitle: "Miembros"},
		{Key: CollectionAchievements, DatabaseID: "db-logros", FallbackTitle: "Logros"},
		{Key: CollectionRoutes, DatabaseID: "db-rutas", FallbackTitle: "Rutas"},
	}
}

func newTestService(upstream *fakeUpstream, privatePageID string) *Service {
	resolver := notion.NewResolver(upstream, notion.NewDataSourceCache())
	return NewService(upstream, resolver, testCollections(), privatePageID, zerolog.Nop())
}

func TestListCollectionsOmitsFailures(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.addDatabase("db-members", "Miembros del club", "ds-members")
	upstream.addDatabase("db-rutas", "", "ds-rutas")
	// db-logros deliberately missing.

	svc := newTestService(upstream, "")
	infos := svc.ListCollections(context.Background())
	if len(infos) != 2 {
		t.Fatalf("got %d collections, want 2", len(infos))
	}
	if infos[0].Title != "Miembros del club" {
		t.Errorf("title = %q", infos[0].Title)
	}
	if infos[1].Title != "Rutas" {
		t.Errorf("fallback title = %q", infos[1].Title)
	}
	if infos[0].Type != CollectionMembers || infos[1].Type != CollectionRoutes {
		t.Errorf("types = %v, %v", infos[0].Type, infos[1].Type)
	}
}

func TestGetCollectionUnknownIDMakesNoUpstreamCall(t *testing.T) {
	upstream := newFakeUpstream()
	svc := newTestService(upstream, "")

	_, err := svc.GetCollection(context.Background(), "db-desconocida")
	if err != ErrUnknownCollection {
		t.Fatalf("err = %v, want ErrUnknownCollection", err)
	}
	if upstream.retrieveDatabaseCalls != 0 || upstream.queryCalls != 0 {
		t.Fatalf("upstream was called: retrieve=%d query=%d",
			upstream.retrieveDatabaseCalls, upstream.queryCalls)
	}
}

func TestGetCollectionReturnsItems(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.addDatabase("db-rutas", "Rutas del norte", "ds-rutas")
	upstream.queries["ds-rutas"] = &notion.QueryResult{
		Results: []notion.Page{
			{ID: "ruta-1", Properties: map[string]notion.PropertyValue{"Name": titleValue("Vuelta a Picos")}},
		},
	}

	svc := newTestService(upstream, "")
	detail, err := svc.GetCollection(context.Background(), "db-rutas")
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if detail.Title != "Rutas del norte" {
		t.Errorf("title = %q", detail.Title)
	}
	if len(detail.Items) != 1 || detail.Items[0].ID != "ruta-1" {
		t.Fatalf("items = %v", detail.Items)
	}
}

func TestListRecordsEmptyCollection(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.addDatabase("db-logros", "Logros", "ds-logros")

	svc := newTestService(upstream, "")
	list, err := svc.ListRecords(context.Background(), CollectionAchievements)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("items = %v, want empty", list.Items)
	}
}

func TestListRecordsSortsMembers(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.addDatabase("db-members", "Miembros", "ds-members")
	upstream.queries["ds-members"] = &notion.QueryResult{
		Results: []notion.Page{
			{ID: "prospect", Properties: member("prospect", "Prospect").Properties},
			{ID: "retirado", Properties: member("retirado", "Retirado").Properties},
			{ID: "presidente", Properties: member("presidente", "Presidente").Properties},
		},
	}

	svc := newTestService(upstream, "")
	list, err := svc.ListRecords(context.Background(), CollectionMembers)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	got := memberIDs(list.Items)
	want := []string{"presidente", "prospect"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestListRecordsResolvesDataSourceOnce(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.addDatabase("db-rutas", "Rutas", "ds-rutas")

	svc := newTestService(upstream, "")
	for i := 0; i < 3; i++ {
		if _, err := svc.ListRecords(context.Background(), CollectionRoutes); err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
	}
	if upstream.retrieveDatabaseCalls != 1 {
		t.Fatalf("retrieveDatabaseCalls = %d, want 1", upstream.retrieveDatabaseCalls)
	}
	if upstream.queryCalls != 3 {
		t.Fatalf("queryCalls = %d, want 3", upstream.queryCalls)
	}
}

func TestListChildrenPartitionsChildPages(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.children["page-1"] = &notion.BlockChildren{
		Results: []notion.Block{
			{ID: "b1", Type: "paragraph"},
			{ID: "b2", Type: "child_page", HasChildren: true, Content: notion.BlockContent{Title: "Normativa interna"}},
			{ID: "b3", Type: "heading_2"},
			{ID: "b4", Type: "child_page", Content: notion.BlockContent{}},
		},
		HasMore:    true,
		NextCursor: "cursor-2",
	}

	svc := newTestService(upstream, "")
	children, err := svc.ListChildren(context.Background(), "page-1", 100, "")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children.ContentBlocks) != 2 {
		t.Fatalf("content blocks = %d, want 2", len(children.ContentBlocks))
	}
	if len(children.ChildPages) != 2 {
		t.Fatalf("child pages = %d, want 2", len(children.ChildPages))
	}
	if children.ChildPages[0].Title != "Normativa interna" || !children.ChildPages[0].HasChildren {
		t.Errorf("child page = %+v", children.ChildPages[0])
	}
	if children.ChildPages[1].Title != "Sin título" {
		t.Errorf("untitled child page = %q", children.ChildPages[1].Title)
	}
	if !children.HasMore || children.NextCursor != "cursor-2" {
		t.Errorf("pagination = %v %q", children.HasMore, children.NextCursor)
	}
}

func TestPrivatePageAssembly(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.pages["page-privada"] = &notion.Page{
		ID: "page-privada",
		Properties: map[string]notion.PropertyValue{
			"title": titleValue("Documentos internos"),
		},
	}
	upstream.children["page-privada"] = &notion.BlockChildren{
		Results: []notion.Block{{ID: "b1", Type: "paragraph"}},
	}

	svc := newTestService(upstream, "page-privada")
	view, err := svc.PrivatePage(context.Background())
	if err != nil {
		t.Fatalf("PrivatePage: %v", err)
	}
	if view.Page.Title != "Documentos internos" {
		t.Errorf("title = %q", view.Page.Title)
	}
	if len(view.ContentBlocks) != 1 {
		t.Errorf("content blocks = %d", len(view.ContentBlocks))
	}
}

func TestPrivatePageUnconfigured(t *testing.T) {
	svc := newTestService(newFakeUpstream(), "")
	if _, err := svc.PrivatePage(context.Background()); err != ErrPrivatePageUnconfigured {
		t.Fatalf("err = %v, want ErrPrivatePageUnconfigured", err)
	}
}

func TestMemberAchievementsDropsFailures(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.pages["logro-1"] = &notion.Page{
		ID:         "logro-1",
		Properties: map[string]notion.PropertyValue{"Name": titleValue("1000 km en un día")},
	}
	upstream.pages["logro-3"] = &notion.Page{
		ID:         "logro-3",
		Properties: map[string]notion.PropertyValue{"Name": titleValue("Ruta de los Pirineos")},
	}
	// logro-2 deliberately missing.

	m := Record{
		ID: "presidente",
		Properties: map[string]notion.PropertyValue{
			"Logros": {
				Type:     "relation",
				Relation: []notion.Relation{{ID: "logro-1"}, {ID: "logro-2"}, {ID: "logro-3"}},
			},
		},
	}

	svc := newTestService(upstream, "")
	achievements := svc.MemberAchievements(context.Background(), m)
	if len(achievements) != 2 {
		t.Fatalf("achievements = %d, want 2", len(achievements))
	}
	if achievements[0].ID != "logro-1" || achievements[1].ID != "logro-3" {
		t.Fatalf("order = %v", memberIDs(achievements))
	}
	if upstream.retrievePageCalls != 3 {
		t.Fatalf("retrievePageCalls = %d, want 3", upstream.retrievePageCalls)
	}
}

func TestMemberAchievementsNoRelationProperty(t *testing.T) {
	upstream := newFakeUpstream()
	svc := newTestService(upstream, "")

	m := Record{ID: "hangaround", Properties: map[string]notion.PropertyValue{}}
	if got := svc.MemberAchievements(context.Background(), m); got != nil {
		t.Fatalf("achievements = %v, want nil", got)
	}
	if upstream.retrievePageCalls != 0 {
		t.Fatal("no fetch expected without a relation property")
	}
}
