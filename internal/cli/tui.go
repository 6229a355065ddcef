package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <document> <changes.xml>",
		Short: "Browse the edits of a change log with undo and redo",
		Long: `History applies each edit of an XML change log to the document as its
own undoable step and opens an interactive browser that undoes and redoes
them while showing the resulting view states.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDocumentAndLog,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := runner.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			g, err := runner.Build(doc)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open change log")
			}
			defer f.Close()
			n, err := codec.Replay(g.Model(), f)
			if err != nil {
				return err
			}
			c.Logger.Debug("replayed change log", "edits", n)

			_, err = tea.NewProgram(NewHistoryModel(g), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// =============================================================================
// HistoryModel - Interactive undo/redo browser
// =============================================================================

// HistoryModel is the bubbletea model stepping a graph through its undo
// history.
type HistoryModel struct {
	Graph  *graph.Graph
	Height int
}

// NewHistoryModel creates a history browser positioned after the last edit.
func NewHistoryModel(g *graph.Graph) HistoryModel {
	return HistoryModel{Graph: g, Height: 10}
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "u":
			m.Graph.Undo()
		case "right", "l", "r":
			m.Graph.Redo()
		case "home", "g":
			for m.Graph.CanUndo() {
				m.Graph.Undo()
			}
		case "end", "G":
			for m.Graph.CanRedo() {
				m.Graph.Redo()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	}
	return m, nil
}

func (m HistoryModel) View() string {
	var b strings.Builder
	history := m.Graph.UndoManager().History()
	applied := m.Graph.UndoManager().Index()

	b.WriteString(StyleTitle.Render("Change History"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/u undo  →/r redo  g/G first/last  q quit"))
	b.WriteString("\n\n")

	start := max(applied-m.Height, 0)
	end := min(start+m.Height, len(history))
	for i := start; i < end; i++ {
		cursor := "  "
		style := listDimStyle
		if i < applied {
			style = listNormalStyle
		}
		if i == applied-1 {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%3d  %s", cursor, i+1, summarizeEdit(history[i]))))
		b.WriteString("\n")
	}
	if len(history) == 0 {
		b.WriteString(listDimStyle.Render("  no edits"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStateTable(pipeline.States(m.Graph)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", applied, len(history))))
	return b.String()
}

// summarizeEdit lists the change kinds of an edit in order of first
// appearance, e.g. "3 changes: Value ×2, Geometry".
func summarizeEdit(e *model.Edit) string {
	var kinds []string
	counts := make(map[string]int)
	for _, ch := range e.Changes() {
		kind := changeKind(ch)
		if counts[kind] == 0 {
			kinds = append(kinds, kind)
		}
		counts[kind]++
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k
		if counts[k] > 1 {
			parts[i] = fmt.Sprintf("%s ×%d", k, counts[k])
		}
	}
	noun := "changes"
	if e.Len() == 1 {
		noun = "change"
	}
	return fmt.Sprintf("%d %s: %s", e.Len(), noun, strings.Join(parts, ", "))
}

// changeKind returns the short name of a change type.
func changeKind(ch model.Change) string {
	name := fmt.Sprintf("%T", ch)
	name = name[strings.LastIndex(name, ".")+1:]
	return strings.TrimSuffix(name, "Change")
}
