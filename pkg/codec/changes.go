package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"slices"

	"github.com/matzehuels/cellgraph/pkg/cell"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// Change element names.
const (
	elemValue    = "ValueChange"
	elemStyle    = "StyleChange"
	elemGeometry = "GeometryChange"
	elemCollapse = "CollapseChange"
	elemVisible  = "VisibleChange"
	elemTerminal = "TerminalChange"
	elemRoot     = "RootChange"
	elemChild    = "ChildChange"
	elemLog      = "log"
	elemEdit     = "edit"
)

// =============================================================================
// XML Representation
// =============================================================================

// xmlLog is a sequence of edits.
type xmlLog struct {
	XMLName xml.Name  `xml:"log"`
	Edits   []xmlEdit `xml:"edit"`
}

// xmlEdit is one committed edit. Its changes are in execution order.
type xmlEdit struct {
	XMLName xml.Name    `xml:"edit"`
	Changes []xmlChange `xml:",any"`
}

// xmlChange is one change; the element name selects the change type. A
// change that attaches a detached cell or installs a new root carries a
// snapshot of that subtree so a receiver without the cell can create it.
type xmlChange struct {
	XMLName xml.Name

	Cell     string  `xml:"cell,attr,omitempty"`
	Parent   string  `xml:"parent,attr,omitempty"`
	Child    string  `xml:"child,attr,omitempty"`
	Index    *int    `xml:"index,attr"`
	Root     string  `xml:"root,attr,omitempty"`
	Terminal string  `xml:"terminal,attr,omitempty"`
	Source   bool    `xml:"source,attr,omitempty"`
	Value    *string `xml:"value,attr"`
	Style    string  `xml:"style,attr,omitempty"`
	Flag     *bool   `xml:"flag,attr"`

	Geometry *xmlGeometry `xml:"Geometry"`
	Snapshot *xmlCell     `xml:"Cell"`
}

// xmlCell is a cell subtree.
type xmlCell struct {
	ID          string       `xml:"id,attr"`
	Kind        string       `xml:"kind,attr,omitempty"`
	Value       *string      `xml:"value,attr"`
	Style       string       `xml:"style,attr,omitempty"`
	Source      string       `xml:"source,attr,omitempty"`
	Target      string       `xml:"target,attr,omitempty"`
	Hidden      bool         `xml:"hidden,attr,omitempty"`
	Collapsed   bool         `xml:"collapsed,attr,omitempty"`
	Unconnected bool         `xml:"unconnectable,attr,omitempty"`
	Geometry    *xmlGeometry `xml:"Geometry"`
	Children    []xmlCell    `xml:"Cell"`
}

type xmlGeometry struct {
	X           float64    `xml:"x,attr"`
	Y           float64    `xml:"y,attr"`
	Width       float64    `xml:"width,attr"`
	Height      float64    `xml:"height,attr"`
	Relative    bool       `xml:"relative,attr,omitempty"`
	Offset      *xmlPoint  `xml:"Offset"`
	SourcePoint *xmlPoint  `xml:"SourcePoint"`
	TargetPoint *xmlPoint  `xml:"TargetPoint"`
	Points      []xmlPoint `xml:"Point"`
}

type xmlPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

// =============================================================================
// Encoding
// =============================================================================

// EncodeEdit writes edit as one <edit> element. Changes are written in the
// order they were last executed: an undone edit is written as the inverse
// changes in reverse order, so replaying the output reproduces the current
// state of m. Changes referring to cells use their IDs.
func EncodeEdit(w io.Writer, m *model.Model, edit *model.Edit) error {
	x, err := editToXML(m, edit)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// EncodeLog writes edits as one indented <log> element.
func EncodeLog(w io.Writer, m *model.Model, edits []*model.Edit) error {
	var log xmlLog
	for _, edit := range edits {
		x, err := editToXML(m, edit)
		if err != nil {
			return err
		}
		log.Edits = append(log.Edits, x)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func editToXML(m *model.Model, edit *model.Edit) (xmlEdit, error) {
	changes := edit.Changes()
	if edit.IsUndone() {
		slices.Reverse(changes)
	}
	x := xmlEdit{Changes: make([]xmlChange, 0, len(changes))}
	for _, ch := range changes {
		xc, err := changeToXML(m, ch)
		if err != nil {
			return xmlEdit{}, err
		}
		x.Changes = append(x.Changes, xc)
	}
	return x, nil
}

// changeToXML encodes the state an executed change has established.
func changeToXML(m *model.Model, ch model.Change) (xmlChange, error) {
	switch c := ch.(type) {
	case *model.ValueChange:
		return xmlChange{XMLName: xml.Name{Local: elemValue}, Cell: c.Cell, Value: valueString(c.Value)}, nil
	case *model.StyleChange:
		return xmlChange{XMLName: xml.Name{Local: elemStyle}, Cell: c.Cell, Style: c.Style.String()}, nil
	case *model.GeometryChange:
		return xmlChange{XMLName: xml.Name{Local: elemGeometry}, Cell: c.Cell, Geometry: geometryToXML(c.Geometry)}, nil
	case *model.CollapseChange:
		return xmlChange{XMLName: xml.Name{Local: elemCollapse}, Cell: c.Cell, Flag: &c.Collapsed}, nil
	case *model.VisibleChange:
		return xmlChange{XMLName: xml.Name{Local: elemVisible}, Cell: c.Cell, Flag: &c.Visible}, nil
	case *model.TerminalChange:
		return xmlChange{XMLName: xml.Name{Local: elemTerminal}, Cell: c.Cell, Terminal: c.Terminal, Source: c.Source}, nil
	case *model.RootChange:
		return xmlChange{XMLName: xml.Name{Local: elemRoot}, Root: c.Root, Snapshot: snapshotToXML(m, c.Root)}, nil
	case *model.ChildChange:
		index := c.Index
		x := xmlChange{XMLName: xml.Name{Local: elemChild}, Parent: c.Parent, Child: c.Child, Index: &index}
		if c.Parent != "" && c.Previous == "" {
			x.Snapshot = snapshotToXML(m, c.Child)
		}
		return x, nil
	}
	return xmlChange{}, errors.New(errors.ErrCodeUnsupported, "cannot encode change %T", ch)
}

// valueString converts a cell value to its attribute form. Values other
// than strings are written with fmt.Sprint and read back as strings.
func valueString(v any) *string {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		s := fmt.Sprint(v)
		return &s
	}
}

func snapshotToXML(m *model.Model, id string) *xmlCell {
	c := m.Cell(id)
	if c == nil {
		return nil
	}
	x := &xmlCell{
		ID:          id,
		Value:       valueString(c.Value),
		Style:       c.Style.String(),
		Source:      c.Source,
		Target:      c.Target,
		Hidden:      !c.Visible,
		Collapsed:   c.Collapsed,
		Unconnected: !c.Connectable,
		Geometry:    geometryToXML(c.Geometry),
	}
	switch {
	case c.Edge:
		x.Kind = KindEdge
	case c.Vertex:
		x.Kind = KindVertex
	}
	for _, child := range c.Children {
		if s := snapshotToXML(m, child); s != nil {
			x.Children = append(x.Children, *s)
		}
	}
	return x
}

func geometryToXML(g *geometry.Geometry) *xmlGeometry {
	if g == nil {
		return nil
	}
	x := &xmlGeometry{
		X: g.X, Y: g.Y, Width: g.Width, Height: g.Height,
		Relative:    g.Relative,
		Offset:      pointToXML(g.Offset),
		SourcePoint: pointToXML(g.SourcePoint),
		TargetPoint: pointToXML(g.TargetPoint),
	}
	for _, p := range g.Points {
		x.Points = append(x.Points, xmlPoint{X: p.X, Y: p.Y})
	}
	return x
}

func pointToXML(p *geometry.Point) *xmlPoint {
	if p == nil {
		return nil
	}
	return &xmlPoint{X: p.X, Y: p.Y}
}

func (x *xmlGeometry) geometry() *geometry.Geometry {
	if x == nil {
		return nil
	}
	g := &geometry.Geometry{
		X: x.X, Y: x.Y, Width: x.Width, Height: x.Height,
		Relative:    x.Relative,
		Offset:      x.Offset.point(),
		SourcePoint: x.SourcePoint.point(),
		TargetPoint: x.TargetPoint.point(),
	}
	for _, p := range x.Points {
		g.Points = append(g.Points, geometry.Point{X: p.X, Y: p.Y})
	}
	return g
}

func (p *xmlPoint) point() *geometry.Point {
	if p == nil {
		return nil
	}
	return &geometry.Point{X: p.X, Y: p.Y}
}

// =============================================================================
// Decoding
// =============================================================================

// Decoder turns encoded edits into changes against a model. Cells carried
// in snapshots are registered with the model when their edit is decoded; a
// snapshot cell whose ID the model already knows stands for that cell.
type Decoder struct {
	model *model.Model
}

// NewDecoder returns a decoder creating changes for m.
func NewDecoder(m *model.Model) *Decoder {
	return &Decoder{model: m}
}

// Decode reads a <log> of edits or a stream of <edit> elements and
// returns one change list per edit. The changes are not executed.
func (d *Decoder) Decode(r io.Reader) ([][]model.Change, error) {
	dec := xml.NewDecoder(r)
	var edits [][]model.Change
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return edits, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChange, err, "decode")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var batch []xmlEdit
		switch start.Name.Local {
		case elemLog:
			var log xmlLog
			if err := dec.DecodeElement(&log, &start); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidChange, err, "decode log")
			}
			batch = log.Edits
		case elemEdit:
			var x xmlEdit
			if err := dec.DecodeElement(&x, &start); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidChange, err, "decode edit")
			}
			batch = []xmlEdit{x}
		default:
			return nil, errors.New(errors.ErrCodeInvalidChange, "unexpected element <%s>", start.Name.Local)
		}
		for _, x := range batch {
			changes, err := d.changes(x)
			if err != nil {
				return nil, err
			}
			edits = append(edits, changes)
		}
	}
}

// changes decodes one edit. The snapshots of the edit are registered
// first, so changes may refer to cells whose snapshot comes later.
func (d *Decoder) changes(x xmlEdit) ([]model.Change, error) {
	var snapshots []*xmlCell
	for _, xc := range x.Changes {
		if xc.Snapshot != nil {
			snapshots = append(snapshots, xc.Snapshot)
		}
	}
	if err := d.register(snapshots); err != nil {
		return nil, err
	}

	out := make([]model.Change, 0, len(x.Changes))
	for _, xc := range x.Changes {
		ch, err := d.change(xc)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func (d *Decoder) change(x xmlChange) (model.Change, error) {
	m := d.model
	name := x.XMLName.Local
	switch name {
	case elemValue:
		if err := d.known(x.Cell, name); err != nil {
			return nil, err
		}
		var value any
		if x.Value != nil {
			value = *x.Value
		}
		return model.NewValueChange(m, x.Cell, value), nil

	case elemStyle:
		if err := d.known(x.Cell, name); err != nil {
			return nil, err
		}
		st, err := style.Parse(x.Style)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "%s of %q", name, x.Cell)
		}
		return model.NewStyleChange(m, x.Cell, st), nil

	case elemGeometry:
		if err := d.known(x.Cell, name); err != nil {
			return nil, err
		}
		return model.NewGeometryChange(m, x.Cell, x.Geometry.geometry()), nil

	case elemCollapse, elemVisible:
		if err := d.known(x.Cell, name); err != nil {
			return nil, err
		}
		if x.Flag == nil {
			return nil, errors.New(errors.ErrCodeInvalidChange, "%s of %q: missing flag", name, x.Cell)
		}
		if name == elemCollapse {
			return model.NewCollapseChange(m, x.Cell, *x.Flag), nil
		}
		return model.NewVisibleChange(m, x.Cell, *x.Flag), nil

	case elemTerminal:
		if err := d.known(x.Cell, name); err != nil {
			return nil, err
		}
		if x.Terminal != "" {
			if err := d.known(x.Terminal, name); err != nil {
				return nil, err
			}
		}
		return model.NewTerminalChange(m, x.Cell, x.Terminal, x.Source), nil

	case elemRoot:
		if err := d.known(x.Root, name); err != nil {
			return nil, err
		}
		return model.NewRootChange(m, x.Root), nil

	case elemChild:
		if x.Parent != "" {
			if err := d.known(x.Parent, name); err != nil {
				return nil, err
			}
		}
		if err := d.known(x.Child, name); err != nil {
			return nil, err
		}
		index := -1
		if x.Index != nil {
			index = *x.Index
		}
		return model.NewChildChange(m, x.Parent, x.Child, index), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown change <%s>", name)
}

func (d *Decoder) known(id, elem string) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidChange, "%s: missing cell reference", elem)
	}
	if d.model.Cell(id) == nil {
		return errors.New(errors.ErrCodeCellNotFound, "%s: unknown cell %q", elem, id)
	}
	return nil
}

// register creates the cells of snapshots the model does not know yet.
// New cells are linked to their snapshot parent in document order and
// connected to terminals the model knows, outside of any edit: they stay
// detached until a decoded change attaches them.
func (d *Decoder) register(snapshots []*xmlCell) error {
	m := d.model
	created := make(map[string]*xmlCell)
	var order []string

	var walk func(x *xmlCell) error
	walk = func(x *xmlCell) error {
		if err := errors.ValidateCellID(x.ID); err != nil {
			return err
		}
		if m.Cell(x.ID) == nil {
			c, err := x.cell()
			if err != nil {
				return err
			}
			m.Register(c)
			created[x.ID] = x
			order = append(order, x.ID)
		}
		for i := range x.Children {
			if err := walk(&x.Children[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for _, x := range snapshots {
		if err := walk(x); err != nil {
			return err
		}
	}

	var link func(x *xmlCell)
	link = func(x *xmlCell) {
		for i := range x.Children {
			child := &x.Children[i]
			if created[child.ID] != nil && m.Parent(child.ID) == "" {
				m.ParentForCellChanged(child.ID, x.ID, -1)
			}
			link(child)
		}
	}
	for _, x := range snapshots {
		link(x)
	}
	for _, id := range order {
		x := created[id]
		if x.Source != "" && m.Cell(x.Source) != nil {
			m.TerminalForCellChanged(id, x.Source, true)
		}
		if x.Target != "" && m.Cell(x.Target) != nil {
			m.TerminalForCellChanged(id, x.Target, false)
		}
	}
	return nil
}

func (x *xmlCell) cell() (*cell.Cell, error) {
	st, err := style.Parse(x.Style)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "cell %q", x.ID)
	}
	var value any
	if x.Value != nil {
		value = *x.Value
	}
	var c *cell.Cell
	switch x.Kind {
	case KindVertex:
		c = cell.NewVertex(value, x.Geometry.geometry(), st)
	case KindEdge:
		c = cell.NewEdge(value, x.Geometry.geometry(), st)
	case "":
		c = cell.New(value, x.Geometry.geometry(), st)
	default:
		return nil, errors.New(errors.ErrCodeInvalidChange, "cell %q: unknown kind %q", x.ID, x.Kind)
	}
	c.ID = x.ID
	c.Visible = !x.Hidden
	c.Collapsed = x.Collapsed
	c.Connectable = !x.Unconnected
	return c, nil
}

// =============================================================================
// Replay
// =============================================================================

// Apply executes changes on m as one edit.
func Apply(m *model.Model, changes []model.Change) {
	if len(changes) == 0 {
		return
	}
	m.Batch(func() {
		for _, ch := range changes {
			m.Execute(ch)
		}
	})
}

// Replay decodes edits from r and applies each to m as its own edit. It
// returns the number of edits applied.
func Replay(m *model.Model, r io.Reader) (int, error) {
	edits, err := NewDecoder(m).Decode(r)
	if err != nil {
		return 0, err
	}
	for _, changes := range edits {
		Apply(m, changes)
	}
	return len(edits), nil
}

// Decode reads encoded edits from r and returns their changes as one list,
// for applying as a single batch with [Apply].
func Decode(m *model.Model, r io.Reader) ([]model.Change, error) {
	edits, err := NewDecoder(m).Decode(r)
	if err != nil {
		return nil, err
	}
	var out []model.Change
	for _, changes := range edits {
		out = append(out, changes...)
	}
	return out, nil
}
