package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// queryPageSize is the largest page the Notion API returns per query.
const queryPageSize = 100

// NotionClient talks to the Notion API for one integration token.
type NotionClient struct {
	client *notionapi.Client
}

// NewNotionClient creates a client for the integration token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
}

// CreatePage adds a property page to the portfolio database.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	page, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePage: database %s: %w", databaseID, err)
	}
	return page, nil
}

// UpdatePage overwrites the columns of a property page.
func (n *NotionClient) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	page, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("UpdatePage: page %s: %w", pageID, err)
	}
	return page, nil
}

// QueryDatabase runs one page of a database query.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: database %s: %w", databaseID, err)
	}
	return resp, nil
}

// ArchivePage moves a page of a removed property to the Notion trash.
func (n *NotionClient) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Archived: true,
	}); err != nil {
		return fmt.Errorf("ArchivePage: page %s: %w", pageID, err)
	}
	return nil
}

var _ NotionService = (*NotionClient)(nil)

// PropertyPage is a database page and the portfolio id in its
// "Property ID" column, empty when the column is blank.
type PropertyPage struct {
	PageID     string
	PropertyID string
}

// ListPropertyPages reads every page of the database, oldest first, so the
// first page seen for a property id is the one that was created first.
func ListPropertyPages(ctx context.Context, svc NotionService, databaseID string) ([]PropertyPage, error) {
	var pages []PropertyPage
	var cursor notionapi.Cursor
	for {
		resp, err := svc.QueryDatabase(ctx, databaseID, propertyPagesQuery(cursor))
		if err != nil {
			return nil, fmt.Errorf("ListPropertyPages: %w", err)
		}
		for _, page := range resp.Results {
			pages = append(pages, PropertyPage{
				PageID:     string(page.ID),
				PropertyID: extractPropertyID(page),
			})
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

func propertyPagesQuery(cursor notionapi.Cursor) *notionapi.DatabaseQueryRequest {
	return &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{{
			Timestamp: notionapi.TimestampCreated,
			Direction: notionapi.SortOrderASC,
		}},
		StartCursor: cursor,
		PageSize:    queryPageSize,
	}
}
