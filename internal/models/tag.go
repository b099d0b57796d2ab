package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tag is a data-quality issue category with the number of open properties
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IssueMode is how an issue is resolved
type IssueMode string

const (
	IssueModeSolved  IssueMode = "solved"
	IssueModeIgnored IssueMode = "ignored"
)

// ParseIssueMode validates a mode coming from a form
func ParseIssueMode(s string) (IssueMode, error) {
	switch IssueMode(s) {
	case IssueModeSolved, IssueModeIgnored:
		return IssueMode(s), nil
	}
	return "", fmt.Errorf("unknown issue mode %q", s)
}

// TaggedProperty is a denormalized listing attached to a tag
type TaggedProperty struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Source         string   `json:"source"`
	CreatedAt      string   `json:"created_at,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Region         *string  `json:"region"`
	Location       *string  `json:"location"`
	LeaseholdYears *float64 `json:"leasehold_years"`
	ContractType   *string  `json:"contract_type"`
	PropertyType   *string  `json:"property_type"`
	Bedrooms       *float64 `json:"bedrooms"`
	Bathrooms      *float64 `json:"bathrooms"`
	BuildSize      *float64 `json:"build_size"`
	LandSize       *float64 `json:"land_size"`
	LandZoning     *string  `json:"land_zoning"`
	Price          *float64 `json:"price"`
	Currency       *string  `json:"currency"`
	IsAvailable    *bool    `json:"is_available"`
	Availability   *string  `json:"availability"`
	IsOffPlan      *bool    `json:"is_off_plan"`
	SoldAt         *string  `json:"sold_at"`
	IsExcluded     bool     `json:"is_excluded"`
	ExcludedBy     *string  `json:"excluded_by"`
	Tab            *string  `json:"tab"`
	IsSolved       bool     `json:"is_solved"`
	IsIgnored      bool     `json:"is_ignored"`
}

// FieldKind tells how an editable field is typed on the wire
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
)

// EditableField describes one inline-editable column
type EditableField struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []string // closed choice list; empty means free input
}

// EditableFields are the columns of the tag details table, in display order
var EditableFields = []EditableField{
	{Name: "title", Label: "Title", Kind: FieldText},
	{Name: "description", Label: "Description", Kind: FieldText},
	{Name: "region", Label: "Region", Kind: FieldText},
	{Name: "location", Label: "Location", Kind: FieldText},
	{Name: "leasehold_years", Label: "Leasehold Years", Kind: FieldNumber},
	{Name: "contract_type", Label: "Contract Type", Kind: FieldText,
		Options: []string{"Freehold", "Leasehold", "Rental"}},
	{Name: "property_type", Label: "Property Type", Kind: FieldText,
		Options: []string{"Villa", "House", "Land", "Apartment", "Hotel", "Townhouse", "Commercial", "Loft"}},
	{Name: "bedrooms", Label: "Bedrooms", Kind: FieldNumber},
	{Name: "bathrooms", Label: "Bathrooms", Kind: FieldNumber},
	{Name: "build_size", Label: "Build Size", Kind: FieldNumber},
	{Name: "price", Label: "Price", Kind: FieldNumber},
	{Name: "availability", Label: "Availability", Kind: FieldText,
		Options: []string{"Available", "Sold", "Delisted"}},
	{Name: "sold_at", Label: "Sold At", Kind: FieldText},
	{Name: "excluded_by", Label: "Excluded By", Kind: FieldText},
}

// LookupEditableField returns the descriptor for a column name
func LookupEditableField(name string) (EditableField, bool) {
	for _, f := range EditableFields {
		if f.Name == name {
			return f, true
		}
	}
	return EditableField{}, false
}

func (p *TaggedProperty) textField(name string) **string {
	switch name {
	case "title":
		return &p.Title
	case "description":
		return &p.Description
	case "region":
		return &p.Region
	case "location":
		return &p.Location
	case "contract_type":
		return &p.ContractType
	case "property_type":
		return &p.PropertyType
	case "availability":
		return &p.Availability
	case "sold_at":
		return &p.SoldAt
	case "excluded_by":
		return &p.ExcludedBy
	}
	return nil
}

func (p *TaggedProperty) numberField(name string) **float64 {
	switch name {
	case "leasehold_years":
		return &p.LeaseholdYears
	case "bedrooms":
		return &p.Bedrooms
	case "bathrooms":
		return &p.Bathrooms
	case "build_size":
		return &p.BuildSize
	case "price":
		return &p.Price
	}
	return nil
}

// Field renders an editable column as text; empty when unset
func (p *TaggedProperty) Field(name string) string {
	if ptr := p.textField(name); ptr != nil {
		if *ptr == nil {
			return ""
		}
		return **ptr
	}
	if ptr := p.numberField(name); ptr != nil {
		if *ptr == nil {
			return ""
		}
		return strconv.FormatFloat(**ptr, 'f', -1, 64)
	}
	return ""
}

// SetField writes a wire value (string or float64) into an editable column
func (p *TaggedProperty) SetField(name string, value any) error {
	if ptr := p.textField(name); ptr != nil {
		s := fmt.Sprint(value)
		*ptr = &s
		return nil
	}
	if ptr := p.numberField(name); ptr != nil {
		switch v := value.(type) {
		case float64:
			*ptr = &v
		case string:
			if strings.TrimSpace(v) == "" {
				*ptr = nil
				return nil
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			*ptr = &f
		default:
			return fmt.Errorf("field %s: unsupported value %T", name, value)
		}
		return nil
	}
	return fmt.Errorf("field %s is not editable", name)
}

// CoerceFieldValue converts raw form input to the value sent to the backend.
// Numbers are sent as numbers when they parse, otherwise as the raw string.
func CoerceFieldValue(field EditableField, raw string) any {
	if field.Kind == FieldNumber {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	}
	return raw
}

// Clone copies a property so optimistic edits can be reverted
func (p TaggedProperty) Clone() TaggedProperty {
	raw, err := json.Marshal(p)
	if err != nil {
		return p
	}
	var out TaggedProperty
	if err := json.Unmarshal(raw, &out); err != nil {
		return p
	}
	return out
}

// TagList is the reply of GET /tags
type TagList struct {
	Tags []Tag `json:"tags"`
}

// TagDetailsPage is the reply of GET /tags/{id}
type TagDetailsPage struct {
	Message string           `json:"message,omitempty"`
	Data    []TaggedProperty `json:"data"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

// DefaultTagPageSize is used when the backend omits the page size
const DefaultTagPageSize = 50

// TotalPages derives the page count from total and page size
func (p TagDetailsPage) TotalPages() int {
	size := p.Size
	if size <= 0 {
		size = DefaultTagPageSize
	}
	pages := (p.Total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// BulkMarkRequest is the body of PATCH /tags/bulk-marked/{tag}
type BulkMarkRequest struct {
	PropertyIDs []string  `json:"property_ids"`
	Mode        IssueMode `json:"mode"`
}

// MessageResponse is the generic {"message": ...} reply
type MessageResponse struct {
	Message string `json:"message"`
}
