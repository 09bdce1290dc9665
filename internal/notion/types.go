// Package notion is a minimal client for the hosted database/document API
// that backs the club site. Only the read surface the site needs is covered.
package notion

import (
	"encoding/json"
	"strings"
)

// RichText is a single formatted text run.
type RichText struct {
	Type        string      `json:"type,omitempty"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
}

type Annotations struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Code          bool `json:"code,omitempty"`
}

type SelectOption struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Date struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Formula is the nested result of a formula property.
type Formula struct {
	Type    string   `json:"type"`
	String  *string  `json:"string,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
	Date    *Date    `json:"date,omitempty"`
}

// Rollup aggregates values from a related collection.
type Rollup struct {
	Type   string          `json:"type"`
	Array  []PropertyValue `json:"array,omitempty"`
	Number *float64        `json:"number,omitempty"`
	Date   *Date           `json:"date,omitempty"`
}

// Relation is a reference to another record by identifier.
type Relation struct {
	ID string `json:"id"`
}

// PropertyValue is the tagged union carried by every record property.
// Exactly one payload field matches Type; the rest stay zero.
type PropertyValue struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *Date          `json:"date,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Email       *string        `json:"email,omitempty"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	Formula     *Formula       `json:"formula,omitempty"`
	Rollup      *Rollup        `json:"rollup,omitempty"`
	Relation    []Relation     `json:"relation,omitempty"`
}

// PropertySchema describes a database column.
type PropertySchema struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// DataSourceRef points at a queryable sub-resource of a database.
type DataSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Database is collection metadata. Items are queried through one of its
// data sources, not through the database id itself.
type Database struct {
	ID             string                    `json:"id"`
	Title          []RichText                `json:"title"`
	Description    []RichText                `json:"description"`
	CreatedTime    string                    `json:"created_time"`
	LastEditedTime string                    `json:"last_edited_time"`
	URL            string                    `json:"url"`
	Properties     map[string]PropertySchema `json:"properties"`
	DataSources    []DataSourceRef           `json:"data_sources"`
}

// Page is a record of a collection or a node of a document tree.
type Page struct {
	ID             string                   `json:"id"`
	CreatedTime    string                   `json:"created_time"`
	LastEditedTime string                   `json:"last_edited_time"`
	URL            string                   `json:"url,omitempty"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// Title returns the page's own title property as plain text.
func (p *Page) Title() string {
	for _, pv := range p.Properties {
		if pv.Type != "title" {
			continue
		}
		var b strings.Builder
		for _, rt := range pv.Title {
			b.WriteString(rt.PlainText)
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

// QueryResult is one page of a data-source query.
type QueryResult struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Icon is a callout/page icon. Only emoji icons are rendered.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// BlockContent is the type-keyed payload of a block, flattened. Unknown
// block types still surface their rich text here when they carry any.
type BlockContent struct {
	RichText []RichText `json:"rich_text,omitempty"`
	Checked  bool       `json:"checked,omitempty"`
	Icon     *Icon      `json:"icon,omitempty"`
	Language string     `json:"language,omitempty"`
	// Title is set for child_page blocks only.
	Title string `json:"title,omitempty"`
}

// Block is one node of a document's content tree. Children are fetched
// separately one level at a time.
type Block struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	HasChildren bool         `json:"has_children"`
	Content     BlockContent `json:"-"`
}

// blockEnvelope matches the wire shape, where the payload lives under a
// key named after the block type.
type blockEnvelope struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	b.ID = env.ID
	b.Type = env.Type
	b.HasChildren = env.HasChildren
	b.Content = BlockContent{}

	if env.Type == "" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	payload, ok := fields[env.Type]
	if !ok {
		return nil
	}
	// Payloads of unrecognized types that are not objects are ignored
	// rather than failing the whole children fetch.
	_ = json.Unmarshal(payload, &b.Content)
	return nil
}

func (b *Block) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID          string       `json:"id"`
		Type        string       `json:"type"`
		HasChildren bool         `json:"has_children"`
		Content     BlockContent `json:"content"`
	}
	return json.Marshal(alias{ID: b.ID, Type: b.Type, HasChildren: b.HasChildren, Content: b.Content})
}

// BlockChildren is one page of a block's immediate children.
type BlockChildren struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// PlainText concatenates the plain text of all runs.
func PlainText(runs []RichText) string {
	var b strings.Builder
	for _, rt := range runs {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}
