package dashboard

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"reid-dashboard/internal/models"
)

// TagsAPI is the slice of the backend the tags triage page needs
type TagsAPI interface {
	Tags(ctx context.Context, date string) ([]models.Tag, error)
	TagDetails(ctx context.Context, tagID, date string, page int) (*models.TagDetailsPage, error)
	UpdateProperty(ctx context.Context, propertyID string, fields map[string]any) (string, error)
	MarkIssue(ctx context.Context, propertyID, tag string, mode models.IssueMode) (string, error)
	BulkMark(ctx context.Context, tag string, propertyIDs []string, mode models.IssueMode) (string, error)
}

type cellKey struct {
	row   string
	field string
}

// Tags is the data-quality triage view: tag list, per-tag property table,
// inline cell editor and solve/ignore actions.
type Tags struct {
	mu        sync.Mutex
	listSeq   *Sequencer
	detailSeq *Sequencer

	date     string
	tags     []models.Tag
	tagsGen  int
	listErr  string
	selected string

	details    []models.TaggedProperty
	detailsGen int
	total      int
	page       int
	totalPages int
	detailErr  string

	edits     map[string]map[string]any
	originals map[string]models.TaggedProperty
	editing   map[cellKey]bool
	saving    map[string]bool
}

// NewTags creates an empty triage view
func NewTags() *Tags {
	return &Tags{
		listSeq:    NewSequencer("tags"),
		detailSeq:  NewSequencer("tag details"),
		page:       1,
		totalPages: 1,
		edits:      make(map[string]map[string]any),
		originals:  make(map[string]models.TaggedProperty),
		editing:    make(map[cellKey]bool),
		saving:     make(map[string]bool),
	}
}

// TagCell is one rendered editable cell
type TagCell struct {
	Field   models.EditableField
	Value   string
	Editing bool
}

// TagRow is one rendered property row
type TagRow struct {
	Property models.TaggedProperty
	Cells    []TagCell
	Dirty    bool
	Saving   bool
}

// TagsView is a render snapshot of the triage page
type TagsView struct {
	Date        string
	Tags        []models.Tag
	Selected    *models.Tag
	Rows        []TagRow
	Total       int
	Page        int
	TotalPages  int
	ListError   string
	DetailError string
}

// ValidDate reports whether s is empty or a YYYY-MM-DD date
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Date returns the active date filter
func (t *Tags) Date() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.date
}

// SetDate changes the date filter and resets the tag selection and details.
// It reports whether the filter changed.
func (t *Tags) SetDate(date string) (bool, error) {
	if !ValidDate(date) {
		return false, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if date == t.date {
		return false, nil
	}
	t.date = date
	t.clearSelectionLocked()
	return true, nil
}

func (t *Tags) clearSelectionLocked() {
	t.selected = ""
	t.details = nil
	t.detailsGen++
	t.total = 0
	t.page = 1
	t.totalPages = 1
	t.detailErr = ""
	t.clearEditsLocked()
}

func (t *Tags) clearEditsLocked() {
	t.edits = make(map[string]map[string]any)
	t.originals = make(map[string]models.TaggedProperty)
	t.editing = make(map[cellKey]bool)
}

// LoadTags fetches the tag list for the active date filter
func (t *Tags) LoadTags(ctx context.Context, api TagsAPI) []Toast {
	t.mu.Lock()
	date := t.date
	t.mu.Unlock()

	token := t.listSeq.Begin()
	tags, err := api.Tags(ctx, date)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.listSeq.Accept(token) {
		return nil
	}
	t.tagsGen++
	if err != nil {
		log.Printf("[Tags] Error fetching tags: %v", err)
		t.tags = nil
		t.listErr = "Failed to load tags"
		return []Toast{errorf("Failed to load tags")}
	}
	t.tags = tags
	t.listErr = ""
	return nil
}

// SelectTag selects a tag, or deselects it when it is already selected.
// It reports whether details must be loaded.
func (t *Tags) SelectTag(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == "" || id == t.selected {
		t.clearSelectionLocked()
		return false
	}
	t.clearSelectionLocked()
	t.selected = id
	return true
}

// Selected returns the selected tag id
func (t *Tags) Selected() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// LoadDetails fetches one page of properties for the selected tag
func (t *Tags) LoadDetails(ctx context.Context, api TagsAPI, page int) []Toast {
	t.mu.Lock()
	tag, date := t.selected, t.date
	t.mu.Unlock()
	if tag == "" {
		return nil
	}
	if page < 1 {
		page = 1
	}

	token := t.detailSeq.Begin()
	result, err := api.TagDetails(ctx, tag, date, page)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.detailSeq.Accept(token) || t.selected != tag {
		return nil
	}
	t.detailsGen++
	t.clearEditsLocked()
	if err != nil {
		log.Printf("[Tags] Error fetching tag details: %v", err)
		t.details = nil
		t.total = 0
		t.detailErr = err.Error()
		return []Toast{errorf("Failed to load tag details: %v", err)}
	}
	t.details = result.Data
	t.total = result.Total
	t.page = page
	t.totalPages = result.TotalPages()
	t.detailErr = ""
	return nil
}

// ChangePage moves to page p when it lies within [1, totalPages].
// It reports whether the caller should load details for p.
func (t *Tags) ChangePage(p int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected != "" && p >= 1 && p <= t.totalPages
}

func (t *Tags) rowIndexLocked(id string) int {
	for i := range t.details {
		if t.details[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleEdit flips edit mode of one cell. Toggling an editing cell cancels it.
func (t *Tags) ToggleEdit(rowID, field string) error {
	if _, ok := models.LookupEditableField(field); !ok {
		return fmt.Errorf("field %s is not editable", field)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rowIndexLocked(rowID) < 0 {
		return fmt.Errorf("property %s is not displayed", rowID)
	}
	k := cellKey{rowID, field}
	if t.editing[k] {
		delete(t.editing, k)
	} else {
		t.editing[k] = true
	}
	return nil
}

// IsEditing reports whether a cell is in edit mode
func (t *Tags) IsEditing(rowID, field string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editing[cellKey{rowID, field}]
}

// Change buffers a cell edit and reflects it in the displayed row
func (t *Tags) Change(rowID, field, raw string) error {
	ef, ok := models.LookupEditableField(field)
	if !ok {
		return fmt.Errorf("field %s is not editable", field)
	}

	var value any
	if ef.Kind == models.FieldNumber {
		if strings.TrimSpace(raw) != "" {
			value = models.CoerceFieldValue(ef, raw)
		}
	} else {
		value = raw
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.rowIndexLocked(rowID)
	if i < 0 {
		return fmt.Errorf("property %s is not displayed", rowID)
	}
	if _, ok := t.originals[rowID]; !ok {
		t.originals[rowID] = t.details[i].Clone()
	}
	if t.edits[rowID] == nil {
		t.edits[rowID] = make(map[string]any)
	}
	t.edits[rowID][field] = value

	switch v := value.(type) {
	case nil:
		_ = t.details[i].SetField(field, "")
	default:
		// a non-numeric string in a number column stays in the buffer only
		_ = t.details[i].SetField(field, v)
	}
	return nil
}

// HasChanges reports whether a row has buffered edits
func (t *Tags) HasChanges(rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.edits[rowID]) > 0
}

// Save PUTs the buffered edits of one row. A row without edits is a no-op.
func (t *Tags) Save(ctx context.Context, api TagsAPI, rowID string) []Toast {
	t.mu.Lock()
	buffered := t.edits[rowID]
	if len(buffered) == 0 {
		t.mu.Unlock()
		return nil
	}
	payload := make(map[string]any, len(buffered))
	for k, v := range buffered {
		payload[k] = v
	}
	t.saving[rowID] = true
	gen := t.detailsGen
	t.mu.Unlock()

	msg, err := api.UpdateProperty(ctx, rowID, payload)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.saving, rowID)
	if err != nil {
		log.Printf("[Tags] Error updating property %s: %v", rowID, err)
		return []Toast{errorf("Failed to update property: %v", err)}
	}
	if gen == t.detailsGen {
		delete(t.edits, rowID)
		delete(t.originals, rowID)
		t.editing = make(map[cellKey]bool)
	}
	if msg == "" {
		msg = "Property updated successfully"
	}
	return []Toast{{Kind: ToastSuccess, Message: msg}}
}

// Discard drops the buffered edits of a row and restores its displayed values
func (t *Tags) Discard(rowID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if orig, ok := t.originals[rowID]; ok {
		if i := t.rowIndexLocked(rowID); i >= 0 {
			t.details[i] = orig
		}
	}
	delete(t.edits, rowID)
	delete(t.originals, rowID)
	for k := range t.editing {
		if k.row == rowID {
			delete(t.editing, k)
		}
	}
}

// adjustCountLocked shifts the selected tag's count and the details total by delta, never below 0
func (t *Tags) adjustCountLocked(delta int) {
	for i := range t.tags {
		if t.tags[i].ID == t.selected {
			t.tags[i].Count = max(0, t.tags[i].Count+delta)
		}
	}
	t.total = max(0, t.total+delta)
}

// Mark resolves one property's issue. The row is removed and the counts
// decremented before the request; both are restored if it fails.
func (t *Tags) Mark(ctx context.Context, api TagsAPI, rowID string, mode models.IssueMode) []Toast {
	t.mu.Lock()
	tag := t.selected
	i := t.rowIndexLocked(rowID)
	if tag == "" || i < 0 {
		t.mu.Unlock()
		return nil
	}
	removed := t.details[i]
	edits, hadEdits := t.edits[rowID]
	original, hadOriginal := t.originals[rowID]
	t.details = append(t.details[:i:i], t.details[i+1:]...)
	delete(t.edits, rowID)
	delete(t.originals, rowID)
	t.adjustCountLocked(-1)
	tagsGen, detailsGen := t.tagsGen, t.detailsGen
	t.mu.Unlock()

	msg, err := api.MarkIssue(ctx, rowID, tag, mode)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("[Tags] Error marking issue as %s: %v", mode, err)
		if t.selected == tag && tagsGen == t.tagsGen && detailsGen == t.detailsGen {
			pos := min(i, len(t.details))
			t.details = append(t.details[:pos], append([]models.TaggedProperty{removed}, t.details[pos:]...)...)
			if hadEdits {
				t.edits[rowID] = edits
			}
			if hadOriginal {
				t.originals[rowID] = original
			}
			t.adjustCountLocked(1)
		}
		return []Toast{errorf("Failed to mark issue as %s: %v", mode, err)}
	}
	if msg == "" {
		msg = fmt.Sprintf("Issue marked as %s successfully", mode)
	}
	return []Toast{{Kind: ToastSuccess, Message: msg}}
}

// BulkMark resolves the selected tag on every displayed property. The list
// is cleared and the counts decremented before the request; both are
// restored if it fails.
func (t *Tags) BulkMark(ctx context.Context, api TagsAPI, mode models.IssueMode) []Toast {
	t.mu.Lock()
	tag := t.selected
	if tag == "" || len(t.details) == 0 {
		t.mu.Unlock()
		return nil
	}
	previous := t.details
	ids := make([]string, len(previous))
	for i, p := range previous {
		ids[i] = p.ID
	}
	t.details = nil
	t.clearEditsLocked()
	t.adjustCountLocked(-len(ids))
	tagsGen, detailsGen := t.tagsGen, t.detailsGen
	t.mu.Unlock()

	log.Printf("[Tags] Bulk marking %d properties as %s", len(ids), mode)
	msg, err := api.BulkMark(ctx, tag, ids, mode)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("[Tags] Error bulk marking issues as %s: %v", mode, err)
		if t.selected == tag && tagsGen == t.tagsGen && detailsGen == t.detailsGen {
			t.details = previous
			t.adjustCountLocked(len(ids))
		}
		return []Toast{errorf("Failed to mark issues as %s: %v", mode, err)}
	}
	if msg == "" {
		msg = fmt.Sprintf("%d issues marked as %s successfully", len(ids), mode)
	}
	return []Toast{{Kind: ToastSuccess, Message: msg}}
}

// cellValueLocked prefers the buffered edit over the row value
func (t *Tags) cellValueLocked(p *models.TaggedProperty, field string) string {
	if buf, ok := t.edits[p.ID]; ok {
		if v, ok := buf[field]; ok {
			switch x := v.(type) {
			case nil:
				return ""
			case float64:
				return strconv.FormatFloat(x, 'f', -1, 64)
			default:
				return fmt.Sprint(x)
			}
		}
	}
	return p.Field(field)
}

// View returns a snapshot for rendering
func (t *Tags) View() TagsView {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := TagsView{
		Date:        t.date,
		Tags:        append([]models.Tag(nil), t.tags...),
		Total:       t.total,
		Page:        t.page,
		TotalPages:  t.totalPages,
		ListError:   t.listErr,
		DetailError: t.detailErr,
	}
	for i := range t.tags {
		if t.tags[i].ID == t.selected {
			tag := t.tags[i]
			v.Selected = &tag
		}
	}
	if v.Selected == nil && t.selected != "" {
		v.Selected = &models.Tag{ID: t.selected, Name: t.selected}
	}

	v.Rows = make([]TagRow, len(t.details))
	for i := range t.details {
		p := &t.details[i]
		row := TagRow{
			Property: *p,
			Dirty:    len(t.edits[p.ID]) > 0,
			Saving:   t.saving[p.ID],
			Cells:    make([]TagCell, len(models.EditableFields)),
		}
		for j, f := range models.EditableFields {
			row.Cells[j] = TagCell{
				Field:   f,
				Value:   t.cellValueLocked(p, f.Name),
				Editing: t.editing[cellKey{p.ID, f.Name}],
			}
		}
		v.Rows[i] = row
	}
	return v
}
