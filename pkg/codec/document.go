package codec

import (
	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Version is the document format version written by [FromModel].
const Version = 1

// Cell kinds.
const (
	KindVertex = "vertex"
	KindEdge   = "edge"
)

// =============================================================================
// Document - Model Snapshot
// =============================================================================

// Document is the canonical serialization format for a model: every cell
// reachable from the root in depth-first pre-order. The first cell is the
// root. Used for files, the stores and API responses.
type Document struct {
	Version int          `json:"version" yaml:"version" bson:"version"`
	Cells   []CellRecord `json:"cells" yaml:"cells" bson:"cells"`
}

// CellRecord is one cell of a [Document]. Links are IDs; children are
// ordered by their position in the document.
type CellRecord struct {
	ID          string             `json:"id" yaml:"id" bson:"id"`
	Parent      string             `json:"parent,omitempty" yaml:"parent,omitempty" bson:"parent,omitempty"`
	Kind        string             `json:"kind,omitempty" yaml:"kind,omitempty" bson:"kind,omitempty"` // "vertex", "edge", or empty for containers
	Value       any                `json:"value,omitempty" yaml:"value,omitempty" bson:"value,omitempty"`
	Style       string             `json:"style,omitempty" yaml:"style,omitempty" bson:"style,omitempty"`
	Geometry    *geometry.Geometry `json:"geometry,omitempty" yaml:"geometry,omitempty" bson:"geometry,omitempty"`
	Source      string             `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	Target      string             `json:"target,omitempty" yaml:"target,omitempty" bson:"target,omitempty"`
	Hidden      bool               `json:"hidden,omitempty" yaml:"hidden,omitempty" bson:"hidden,omitempty"`
	Collapsed   bool               `json:"collapsed,omitempty" yaml:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Connectable *bool              `json:"connectable,omitempty" yaml:"connectable,omitempty" bson:"connectable,omitempty"` // nil means true
}

// =============================================================================
// Model ↔ Document Conversion
// =============================================================================

// FromModel converts the attached cells of m to a document.
func FromModel(m *model.Model) Document {
	snap := m.Snapshot()
	doc := Document{Version: Version, Cells: make([]CellRecord, len(snap))}
	for i, c := range snap {
		doc.Cells[i] = recordFromCell(c)
	}
	return doc
}

func recordFromCell(c *cell.Cell) CellRecord {
	r := CellRecord{
		ID:        c.ID,
		Parent:    c.Parent,
		Value:     c.Value,
		Style:     c.Style.String(),
		Geometry:  c.Geometry.Clone(),
		Source:    c.Source,
		Target:    c.Target,
		Hidden:    !c.Visible,
		Collapsed: c.Collapsed,
	}
	switch {
	case c.Edge:
		r.Kind = KindEdge
	case c.Vertex:
		r.Kind = KindVertex
	}
	if !c.Connectable {
		f := false
		r.Connectable = &f
	}
	return r
}

// ToModel validates doc and builds a model from it. Model options such as
// the ID generator apply to cells created later; the IDs in doc are kept.
func ToModel(doc Document, opts ...model.Option) (*model.Model, error) {
	cells, err := cellsFromDocument(doc)
	if err != nil {
		return nil, err
	}
	return model.Restore(cells, opts...), nil
}

// cellsFromDocument checks that doc describes a tree in pre-order with
// known terminals and converts its records.
func cellsFromDocument(doc Document) ([]*cell.Cell, error) {
	if doc.Version > Version {
		return nil, errors.New(errors.ErrCodeUnsupported, "document version %d is newer than %d", doc.Version, Version)
	}
	if len(doc.Cells) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document has no cells")
	}

	seen := make(map[string]bool, len(doc.Cells))
	cells := make([]*cell.Cell, 0, len(doc.Cells))
	for i, r := range doc.Cells {
		if err := errors.ValidateCellID(r.ID); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "duplicate cell id %q", r.ID)
		}
		switch {
		case i == 0 && r.Parent != "":
			return nil, errors.New(errors.ErrCodeInvalidDocument, "root %q cannot have a parent", r.ID)
		case i > 0 && !seen[r.Parent]:
			return nil, errors.New(errors.ErrCodeInvalidDocument, "cell %q: parent %q must precede it", r.ID, r.Parent)
		}
		c, err := cellFromRecord(r)
		if err != nil {
			return nil, err
		}
		seen[r.ID] = true
		cells = append(cells, c)
	}

	for _, r := range doc.Cells {
		for _, t := range []string{r.Source, r.Target} {
			if t != "" && !seen[t] {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "edge %q: unknown terminal %q", r.ID, t)
			}
		}
	}
	return cells, nil
}

func cellFromRecord(r CellRecord) (*cell.Cell, error) {
	st, err := style.Parse(r.Style)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "cell %q", r.ID)
	}
	var c *cell.Cell
	switch r.Kind {
	case KindVertex:
		c = cell.NewVertex(r.Value, r.Geometry.Clone(), st)
	case KindEdge:
		c = cell.NewEdge(r.Value, r.Geometry.Clone(), st)
	case "":
		c = cell.New(r.Value, r.Geometry.Clone(), st)
	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "cell %q: unknown kind %q", r.ID, r.Kind)
	}
	c.ID = r.ID
	c.Parent = r.Parent
	c.Source = r.Source
	c.Target = r.Target
	c.Visible = !r.Hidden
	c.Collapsed = r.Collapsed
	c.Connectable = r.Connectable == nil || *r.Connectable
	return c, nil
}
