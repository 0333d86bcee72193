package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/imobcontrol/internal/dashboard"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

// Column names of the Notion properties database.
const (
	ColumnTitle        = "Title"
	ColumnPropertyID   = "Property ID"
	ColumnType         = "Type"
	ColumnStatus       = "Status"
	ColumnAddress      = "Address"
	ColumnPrice        = "Price"
	ColumnBedrooms     = "Bedrooms"
	ColumnBathrooms    = "Bathrooms"
	ColumnArea         = "Area"
	ColumnConsumerUnit = "Consumer Unit"
	ColumnFeatures     = "Features"
	ColumnImage        = "Image"
	ColumnRevenue      = "Revenue"
	ColumnExpense      = "Expense"
	ColumnNet          = "Net Result"
	ColumnRecords      = "Records"
	ColumnLastRecord   = "Last Record"
)

// PropertyToNotionProperties converts a property and the totals of its
// whole rental history to Notion properties.
func PropertyToNotionProperties(p domain.Property) notionapi.Properties {
	totals := dashboard.Aggregate([]domain.Property{p}, dashboard.Filter{})

	props := notionapi.Properties{
		ColumnTitle: notionapi.TitleProperty{
			Title: richText(p.Title),
		},
		ColumnPropertyID: notionapi.RichTextProperty{
			RichText: richText(p.ID),
		},
		ColumnType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(p.Type)},
		},
		ColumnStatus: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(p.Status)},
		},
		ColumnPrice:     notionapi.NumberProperty{Number: p.Price.Float64()},
		ColumnBedrooms:  notionapi.NumberProperty{Number: float64(p.Bedrooms)},
		ColumnBathrooms: notionapi.NumberProperty{Number: float64(p.Bathrooms)},
		ColumnArea:      notionapi.NumberProperty{Number: p.Area},
		ColumnRevenue:   notionapi.NumberProperty{Number: totals.TotalRevenue.Float64()},
		ColumnExpense:   notionapi.NumberProperty{Number: totals.TotalExpense.Float64()},
		ColumnNet:       notionapi.NumberProperty{Number: totals.NetResult.Float64()},
		ColumnRecords:   notionapi.NumberProperty{Number: float64(len(p.RentalHistory))},
	}

	if p.Address != "" {
		props[ColumnAddress] = notionapi.RichTextProperty{RichText: richText(p.Address)}
	}
	if p.ConsumerUnit != "" {
		props[ColumnConsumerUnit] = notionapi.RichTextProperty{RichText: richText(p.ConsumerUnit)}
	}
	if p.ImageURL != "" {
		props[ColumnImage] = notionapi.URLProperty{URL: p.ImageURL}
	}

	// Always sent so removed features are cleared on update.
	features := make([]notionapi.Option, 0, len(p.Features))
	for _, f := range p.Features {
		features = append(features, notionapi.Option{Name: f})
	}
	props[ColumnFeatures] = notionapi.MultiSelectProperty{MultiSelect: features}

	// Records are newest first with undated ones last.
	if len(totals.Records) > 0 {
		if d, ok := totals.Records[0].ParsedDate(); ok {
			nd := notionapi.Date(d)
			props[ColumnLastRecord] = notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &nd},
			}
		}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: s,
			},
		},
	}
}

// extractPropertyID extracts the portfolio id from a Notion page's properties.
// Returns empty string if not found.
func extractPropertyID(page notionapi.Page) string {
	switch prop := page.Properties[ColumnPropertyID].(type) {
	case *notionapi.RichTextProperty:
		return plainText(prop.RichText)
	case notionapi.RichTextProperty:
		return plainText(prop.RichText)
	}
	return ""
}

func plainText(rt []notionapi.RichText) string {
	if len(rt) == 0 {
		return ""
	}
	if rt[0].PlainText != "" {
		return rt[0].PlainText
	}
	if rt[0].Text != nil {
		return rt[0].Text.Content
	}
	return ""
}
