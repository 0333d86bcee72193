package notionsync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

type mockNotion struct {
	pages      [][]notionapi.Page // one slice per result page
	queryErr   error
	createErr  error
	created    []notionapi.Properties
	updated    map[string]notionapi.Properties
	archived   []string
	queryCalls []notionapi.Cursor
	requests   []*notionapi.DatabaseQueryRequest
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, properties)
	return &notionapi.Page{ID: notionapi.ObjectID(fmt.Sprintf("new-%d", len(m.created)))}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	if m.updated == nil {
		m.updated = map[string]notionapi.Properties{}
	}
	m.updated[pageID] = properties
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.queryCalls = append(m.queryCalls, req.StartCursor)
	m.requests = append(m.requests, req)
	i := len(m.queryCalls) - 1
	resp := &notionapi.DatabaseQueryResponse{Results: m.pages[i]}
	if i+1 < len(m.pages) {
		resp.HasMore = true
		resp.NextCursor = notionapi.Cursor(fmt.Sprintf("cursor-%d", i+1))
	}
	return resp, nil
}

func (m *mockNotion) ArchivePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func notionPage(pageID, propertyID string) notionapi.Page {
	props := notionapi.Properties{}
	if propertyID != "" {
		props[ColumnPropertyID] = &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{PlainText: propertyID}},
		}
	}
	return notionapi.Page{ID: notionapi.ObjectID(pageID), Properties: props}
}

func TestSyncProperties(t *testing.T) {
	mock := &mockNotion{pages: [][]notionapi.Page{
		{notionPage("page-1", "1"), notionPage("page-old", "99")},
		{notionPage("page-blank", ""), notionPage("page-1-dup", "1"), notionPage("page-2", "2")},
	}}

	stats, err := SyncProperties(context.Background(), domain.SampleProperties(), mock, "db", false)
	require.NoError(t, err)

	assert.Equal(t, Stats{Created: 2, Updated: 2, Archived: 3}, stats)
	assert.Equal(t, []notionapi.Cursor{"", "cursor-1"}, mock.queryCalls)
	assert.ElementsMatch(t, []string{"page-old", "page-blank", "page-1-dup"}, mock.archived)
	assert.Contains(t, mock.updated, "page-1")
	assert.Contains(t, mock.updated, "page-2")
	require.Len(t, mock.created, 2)
	assert.Equal(t, "3", plainText(mock.created[0][ColumnPropertyID].(notionapi.RichTextProperty).RichText))
}

func TestListPropertyPages(t *testing.T) {
	mock := &mockNotion{pages: [][]notionapi.Page{
		{notionPage("page-1", "1"), notionPage("page-blank", "")},
		{notionPage("page-2", "2")},
		{},
	}}

	pages, err := ListPropertyPages(context.Background(), mock, "db")
	require.NoError(t, err)

	assert.Equal(t, []PropertyPage{
		{PageID: "page-1", PropertyID: "1"},
		{PageID: "page-blank"},
		{PageID: "page-2", PropertyID: "2"},
	}, pages)
	assert.Equal(t, []notionapi.Cursor{"", "cursor-1", "cursor-2"}, mock.queryCalls)
	for _, req := range mock.requests {
		assert.Equal(t, queryPageSize, req.PageSize)
		require.Len(t, req.Sorts, 1)
		assert.Equal(t, notionapi.TimestampCreated, req.Sorts[0].Timestamp)
		assert.Equal(t, notionapi.SortOrderASC, req.Sorts[0].Direction)
	}

	_, err = ListPropertyPages(context.Background(), &mockNotion{queryErr: errors.New("rate limited")}, "db")
	assert.ErrorContains(t, err, "rate limited")
}

func TestSyncProperties_DryRun(t *testing.T) {
	mock := &mockNotion{pages: [][]notionapi.Page{{notionPage("page-1", "1"), notionPage("page-old", "99")}}}

	stats, err := SyncProperties(context.Background(), domain.SampleProperties(), mock, "db", true)
	require.NoError(t, err)

	assert.Equal(t, Stats{Created: 3, Updated: 1, Archived: 1}, stats)
	assert.Empty(t, mock.created)
	assert.Empty(t, mock.updated)
	assert.Empty(t, mock.archived)
}

func TestSyncProperties_Errors(t *testing.T) {
	_, err := SyncProperties(context.Background(), nil, &mockNotion{queryErr: errors.New("rate limited")}, "db", false)
	assert.ErrorContains(t, err, "rate limited")

	mock := &mockNotion{pages: [][]notionapi.Page{{}}, createErr: errors.New("boom")}
	stats, err := SyncProperties(context.Background(), domain.SampleProperties(), mock, "db", false)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Failed)
	assert.Zero(t, stats.Created)
}

func TestPropertyToNotionProperties(t *testing.T) {
	p := domain.SampleProperties()[1]

	props := PropertyToNotionProperties(p)

	assert.Equal(t, "Casa de Praia em Ubatuba", plainText(props[ColumnTitle].(notionapi.TitleProperty).Title))
	assert.Equal(t, "2", plainText(props[ColumnPropertyID].(notionapi.RichTextProperty).RichText))
	assert.Equal(t, string(domain.TypeHouse), props[ColumnType].(notionapi.SelectProperty).Select.Name)
	assert.InDelta(t, 3150, props[ColumnRevenue].(notionapi.NumberProperty).Number, 0.001)
	assert.InDelta(t, 350, props[ColumnExpense].(notionapi.NumberProperty).Number, 0.001)
	assert.InDelta(t, 2800, props[ColumnNet].(notionapi.NumberProperty).Number, 0.001)
	assert.Len(t, props[ColumnFeatures].(notionapi.MultiSelectProperty).MultiSelect, 3)

	last := props[ColumnLastRecord].(notionapi.DateProperty).Date.Start
	require.NotNil(t, last)
	assert.Equal(t, "2024-04-22", time.Time(*last).Format(time.DateOnly))

	empty := PropertyToNotionProperties(domain.Property{ID: "x", Title: "Vazio"})
	assert.NotContains(t, empty, ColumnLastRecord)
	assert.NotContains(t, empty, ColumnAddress)
	assert.Empty(t, empty[ColumnFeatures].(notionapi.MultiSelectProperty).MultiSelect)
}
