package upload

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/talkincode/storebuilder/internal/domain"
)

// Stage is a named section of the upload form.
type Stage string

const (
	StageBasic      Stage = "basic"
	StageStock      Stage = "stock"
	StageSupplier   Stage = "supplier"
	StageVariations Stage = "variations"
)

// Stages lists the form sections in display order.
var Stages = []Stage{StageBasic, StageStock, StageSupplier, StageVariations}

var stageLabels = map[Stage]string{
	StageBasic:      "Basic information",
	StageStock:      "Stock",
	StageSupplier:   "Supplier",
	StageVariations: "Variations",
}

// Label is the tab caption of the stage.
func (s Stage) Label() string {
	return stageLabels[s]
}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if st.index() < 0 {
		return "", fmt.Errorf("%w %q", ErrUnknownStage, s)
	}
	return st, nil
}

var (
	ErrUnknownStage   = errors.New("upload: unknown stage")
	ErrVariationIndex = errors.New("upload: variation index out of range")
	ErrNotEditing     = errors.New("upload: no product is being edited")
)

// ValidationError reports a form field that cannot be turned into a record.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upload: %s %q: %s", e.Field, e.Value, e.Reason)
}

// Fields are the raw text inputs of the form.
type Fields struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Stock       string `json:"stock"`
	Supplier    string `json:"supplier"`
}

// Form is the upload wizard state. Stages can be visited in any order.
type Form struct {
	Fields
	variations []string
	stage      Stage
	editingID  int64
}

// NewForm returns an empty form on the first stage with one blank variation.
func NewForm() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// Reset clears every field and returns to the first stage.
func (f *Form) Reset() {
	f.Fields = Fields{}
	f.variations = []string{""}
	f.stage = StageBasic
	f.editingID = 0
}

func (f *Form) Stage() Stage { return f.stage }

// EditingID is the id of the record being edited, or zero.
func (f *Form) EditingID() int64 { return f.editingID }

// HasPrev reports whether the previous control is enabled.
func (f *Form) HasPrev() bool { return f.stage.index() > 0 }

// HasNext reports whether the next control is enabled.
func (f *Form) HasNext() bool { return f.stage.index() < len(Stages)-1 }

// Next moves one stage forward; it is a no-op on the last stage.
func (f *Form) Next() Stage {
	if f.HasNext() {
		f.stage = Stages[f.stage.index()+1]
	}
	return f.stage
}

// Prev moves one stage back; it is a no-op on the first stage.
func (f *Form) Prev() Stage {
	if f.HasPrev() {
		f.stage = Stages[f.stage.index()-1]
	}
	return f.stage
}

// Goto jumps to any stage.
func (f *Form) Goto(s Stage) error {
	if s.index() < 0 {
		return fmt.Errorf("%w %q", ErrUnknownStage, s)
	}
	f.stage = s
	return nil
}

// Variations returns the variation slots, blanks included.
func (f *Form) Variations() []string {
	return append([]string(nil), f.variations...)
}

// AddVariation appends an empty slot.
func (f *Form) AddVariation() int {
	f.variations = append(f.variations, "")
	return len(f.variations) - 1
}

// SetVariation edits the slot at i.
func (f *Form) SetVariation(i int, v string) error {
	if i < 0 || i >= len(f.variations) {
		return ErrVariationIndex
	}
	f.variations[i] = v
	return nil
}

// RemoveVariation deletes the slot at i.
func (f *Form) RemoveVariation(i int) error {
	if i < 0 || i >= len(f.variations) {
		return ErrVariationIndex
	}
	f.variations = append(f.variations[:i], f.variations[i+1:]...)
	return nil
}

// Load fills the form from an existing record for editing.
func (f *Form) Load(p domain.UploadProduct) {
	f.Fields = Fields{
		Name:        p.Name,
		Price:       cast.ToString(p.Price),
		Image:       p.Image,
		Description: p.Description,
		Stock:       cast.ToString(p.Stock),
		Supplier:    p.Supplier,
	}
	f.variations = append([]string(nil), p.Variations...)
	if len(f.variations) == 0 {
		f.variations = []string{""}
	}
	f.editingID = p.ID
}

// Record is the typed content of a submitted form.
type Record struct {
	Name        string
	Price       float64
	Image       string
	Description string
	Stock       int
	Supplier    string
	Variations  []string
}

// Build parses the form. The name is required and the numeric fields must
// parse; blank variations are dropped.
func (f *Form) Build() (Record, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Record{}, &ValidationError{Field: "name", Value: f.Name, Reason: "required"}
	}
	price, err := cast.ToFloat64E(strings.TrimSpace(f.Price))
	if err != nil || strings.TrimSpace(f.Price) == "" || math.IsNaN(price) || math.IsInf(price, 0) {
		return Record{}, &ValidationError{Field: "price", Value: f.Price, Reason: "not a number"}
	}
	if price < 0 {
		return Record{}, &ValidationError{Field: "price", Value: f.Price, Reason: "negative"}
	}
	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil {
		return Record{}, &ValidationError{Field: "stock", Value: f.Stock, Reason: "not an integer"}
	}
	if stock < 0 {
		return Record{}, &ValidationError{Field: "stock", Value: f.Stock, Reason: "negative"}
	}
	variations := make([]string, 0, len(f.variations))
	for _, v := range f.variations {
		if strings.TrimSpace(v) != "" {
			variations = append(variations, v)
		}
	}
	return Record{
		Name:        name,
		Price:       price,
		Image:       strings.TrimSpace(f.Image),
		Description: f.Description,
		Stock:       stock,
		Supplier:    strings.TrimSpace(f.Supplier),
		Variations:  variations,
	}, nil
}

// View is a serializable snapshot of the form.
type View struct {
	Fields
	Variations []string `json:"variations"`
	Stage      Stage    `json:"stage"`
	StageLabel string   `json:"stage_label"`
	HasPrev    bool     `json:"has_prev"`
	HasNext    bool     `json:"has_next"`
	EditingID  int64    `json:"editing_id,string,omitempty"`
}

// View captures the form for rendering.
func (f *Form) View() View {
	return View{
		Fields:     f.Fields,
		Variations: f.Variations(),
		Stage:      f.stage,
		StageLabel: f.stage.Label(),
		HasPrev:    f.HasPrev(),
		HasNext:    f.HasNext(),
		EditingID:  f.editingID,
	}
}
