// Package script runs board automation scripts in an embedded Tengo
// interpreter. A script receives a `board` object whose functions create
// and wire elements through the same store mutations the pointer tools
// use, so scripted boards carry full history and connector maintenance.
package script

import (
	"fmt"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

// Runtime compiles and runs one board script.
type Runtime struct {
	store    store.Store
	compiled *tengo.Compiled
	path     string
}

// NewRuntime compiles the script at path against the board API.
func NewRuntime(st store.Store, path string) (*Runtime, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}

	rt := &Runtime{store: st, path: path}

	script := tengo.NewScript(src)
	_ = script.Add("board", rt.boardAPI())
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", path, err)
	}
	rt.compiled = compiled
	return rt, nil
}

// Run executes the script once.
func (rt *Runtime) Run() error {
	if err := rt.compiled.Run(); err != nil {
		return fmt.Errorf("script: run %s: %w", rt.path, err)
	}
	return nil
}

func (rt *Runtime) boardAPI() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	addShape := func(t board.ElementType) func(args ...tengo.Object) (tengo.Object, error) {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 4 {
				return tengo.UndefinedValue, tengo.ErrWrongNumArguments
			}
			x, y := objectAsFloat(args[0]), objectAsFloat(args[1])
			w, h := objectAsFloat(args[2]), objectAsFloat(args[3])
			e := board.NewElement(t, x, y)
			e.Width, e.Height = w, h
			rt.addAndPlace(e)
			return &tengo.String{Value: e.ID}, nil
		}
	}
	values["add_rect"] = &tengo.UserFunction{Name: "add_rect", Value: addShape(board.TypeRectangle)}
	values["add_triangle"] = &tengo.UserFunction{Name: "add_triangle", Value: addShape(board.TypeTriangle)}

	values["add_circle"] = &tengo.UserFunction{Name: "add_circle", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		e := board.NewElement(board.TypeCircle, objectAsFloat(args[0]), objectAsFloat(args[1]))
		e.Radius = objectAsFloat(args[2])
		rt.addAndPlace(e)
		return &tengo.String{Value: e.ID}, nil
	}}

	values["add_star"] = &tengo.UserFunction{Name: "add_star", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		e := board.NewElement(board.TypeStar, objectAsFloat(args[0]), objectAsFloat(args[1]))
		e.OuterRadius = objectAsFloat(args[2])
		e.InnerRadius = e.OuterRadius / 2
		if len(args) > 3 {
			e.InnerRadius = objectAsFloat(args[3])
		}
		rt.addAndPlace(e)
		return &tengo.String{Value: e.ID}, nil
	}}

	addLabeled := func(t board.ElementType, w, h float64) func(args ...tengo.Object) (tengo.Object, error) {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 2 {
				return tengo.UndefinedValue, tengo.ErrWrongNumArguments
			}
			e := board.NewElement(t, objectAsFloat(args[0]), objectAsFloat(args[1]))
			e.Width, e.Height = w, h
			if len(args) > 2 {
				e.Text = objectAsString(args[2])
			}
			rt.addAndPlace(e)
			return &tengo.String{Value: e.ID}, nil
		}
	}
	values["add_sticky"] = &tengo.UserFunction{Name: "add_sticky", Value: addLabeled(board.TypeSticky, 160, 120)}
	values["add_text"] = &tengo.UserFunction{Name: "add_text", Value: addLabeled(board.TypeText, 200, 40)}

	values["add_table"] = &tengo.UserFunction{Name: "add_table", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 4 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		e := board.NewTable(objectAsFloat(args[0]), objectAsFloat(args[1]), objectAsInt(args[2]), objectAsInt(args[3]))
		rt.addAndPlace(e)
		return &tengo.String{Value: e.ID}, nil
	}}

	values["add_section"] = &tengo.UserFunction{Name: "add_section", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 4 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		title := "Section"
		if len(args) > 4 {
			title = objectAsString(args[4])
		}
		id := rt.store.CreateSection(objectAsFloat(args[0]), objectAsFloat(args[1]), objectAsFloat(args[2]), objectAsFloat(args[3]), title)
		return &tengo.String{Value: id}, nil
	}}

	values["connect"] = &tengo.UserFunction{Name: "connect", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		sub := board.ConnectorArrow
		if len(args) > 2 {
			sub = board.ConnectorSubType(objectAsString(args[2]))
		}
		id, err := rt.connect(objectAsString(args[0]), objectAsString(args[1]), sub)
		if err != nil {
			return tengo.UndefinedValue, err
		}
		return &tengo.String{Value: id}, nil
	}}

	values["set_text"] = &tengo.UserFunction{Name: "set_text", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		id, text := objectAsString(args[0]), objectAsString(args[1])
		if _, ok := rt.store.GetElement(id); !ok {
			return tengo.FalseValue, nil
		}
		rt.store.UpdateElement(id, func(e *board.Element) { e.Text = text }, nil)
		return tengo.TrueValue, nil
	}}

	values["set_cell"] = &tengo.UserFunction{Name: "set_cell", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 4 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		id := objectAsString(args[0])
		if e, ok := rt.store.GetElement(id); !ok || e.Type != board.TypeTable {
			return tengo.FalseValue, nil
		}
		row, col := objectAsInt(args[1]), objectAsInt(args[2])
		text := objectAsString(args[3])
		rt.store.UpdateElement(id, func(e *board.Element) {
			row, col = e.ClampCell(row, col)
			e.SetCell(row, col, text)
		}, nil)
		return tengo.TrueValue, nil
	}}

	values["select"] = &tengo.UserFunction{Name: "select", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, tengo.ErrWrongNumArguments
		}
		rt.store.Select(objectAsString(args[0]), len(args) > 1 && !args[1].IsFalsy())
		return tengo.TrueValue, nil
	}}

	values["count"] = &tengo.UserFunction{Name: "count", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(len(rt.store.Elements()))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// addAndPlace inserts an element and resolves section containment for its
// position, mirroring what a pointer drop does.
func (rt *Runtime) addAndPlace(e *board.Element) {
	rt.store.AddElement(e)
	rt.store.AddHistoryEntry(
		fmt.Sprintf("create %s", e.Type),
		nil, nil,
		store.HistoryMeta{ElementIDs: []string{e.ID}, OperationType: "create", AffectedCount: 1},
	)
}

// connect builds a connector between two element centers, attached to the
// facing ports, with the routed path precomputed.
func (rt *Runtime) connect(fromID, toID string, sub board.ConnectorSubType) (string, error) {
	from, ok := rt.store.GetElement(fromID)
	if !ok {
		return "", fmt.Errorf("script: connect: element %s not found", fromID)
	}
	to, ok := rt.store.GetElement(toID)
	if !ok {
		return "", fmt.Errorf("script: connect: element %s not found", toID)
	}
	start := geometry.AnchorPoint(from, rt.store, "center")
	end := geometry.AnchorPoint(to, rt.store, "center")

	c := board.NewElement(board.TypeConnector, start.X, start.Y)
	c.SubType = sub
	c.StartPoint = &board.Endpoint{ElementID: fromID, Anchor: "center", Point: start}
	c.EndPoint = &board.Endpoint{ElementID: toID, Anchor: "center", Point: end}
	c.IntermediatePoints = geometry.ConnectorPath(sub, start, end)
	rt.addAndPlace(c)
	return c.ID, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}

func objectAsInt(obj tengo.Object) int {
	switch v := obj.(type) {
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return int(v.Value)
	default:
		return 0
	}
}
