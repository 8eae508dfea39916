package tui

import (
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/button"
	"github.com/gcla/gowid/widgets/columns"
	"github.com/gcla/gowid/widgets/edit"
	"github.com/gcla/gowid/widgets/list"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/riekert/todo/internal/todo"
)

// A TodoList is the list of rows to interract with.
// It implements gowid.IWidget by delegating to its presentation.
type TodoList struct {
	presentation list.IWidget
	abstraction  *todoListAbstraction
}

// NewTodoList returns a new TodoList.
func NewTodoList() *TodoList {
	abs := newTodoListAbstraction()

	return &TodoList{
		presentation: list.New(abs),
		abstraction:  abs,
	}
}

// Set replaces the rows of this list, keeping the focus position when possible.
func (w *TodoList) Set(rows []gowid.IWidget, app gowid.IApp) {
	w.abstraction.Set(rows, app)
}

// Render implements gowid.IWidget
func (w *TodoList) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	return w.presentation.Render(size, focus, app)
}

// RenderSize implements gowid.IWidget
func (w *TodoList) RenderSize(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.IRenderBox {
	return w.presentation.RenderSize(size, focus, app)
}

// UserInput implements gowid.IWidget
func (w *TodoList) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	return w.presentation.UserInput(ev, size, focus, app)
}

// Selectable implements gowid.IWidget
func (w *TodoList) Selectable() bool {
	return w.presentation.Selectable()
}

////////////////////
//                //
// Rows           //
//                //
////////////////////

func newRow(ui *TUI, item todo.Item) gowid.IWidget {
	update := button.New(text.New("Update"))
	update.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onUpdate(item.ID)})

	remove := button.New(text.New("Delete"))
	remove.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onDelete(item.ID)})

	return styled.NewExt(
		columns.New([]gowid.IContainerWidget{
			&gowid.ContainerWidget{IWidget: text.New(item.DisplayName()), D: gowid.RenderWithWeight{W: 1}},
			&gowid.ContainerWidget{IWidget: text.New(item.Description), D: gowid.RenderWithWeight{W: 3}},
			&gowid.ContainerWidget{IWidget: update, D: gowid.RenderFixed{}},
			&gowid.ContainerWidget{IWidget: remove, D: gowid.RenderFixed{}},
		}),
		gowid.MakePaletteRef("normal"), gowid.MakePaletteRef("focused"),
	)
}

func newEditRow(ui *TUI, item todo.Item, buffer string) gowid.IWidget {
	editor := edit.New(edit.Options{Text: buffer})
	editor.OnTextSet(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(app gowid.IApp, iw gowid.IWidget) {
		ui.sync.SetEditText(editor.Text())
	}})

	save := button.New(text.New("Save"))
	save.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onSave})

	cancel := button.New(text.New("Cancel"))
	cancel.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onCancel})

	return styled.New(
		columns.New([]gowid.IContainerWidget{
			&gowid.ContainerWidget{IWidget: text.New(item.DisplayName()), D: gowid.RenderWithWeight{W: 1}},
			&gowid.ContainerWidget{IWidget: editor, D: gowid.RenderWithWeight{W: 3}},
			&gowid.ContainerWidget{IWidget: save, D: gowid.RenderFixed{}},
			&gowid.ContainerWidget{IWidget: cancel, D: gowid.RenderFixed{}},
		}),
		gowid.MakePaletteRef("editing"),
	)
}

////////////////////
//                //
// Abstraction    //
//                //
////////////////////

// A todoListAbstraction is a list of rows to interract with.
// It implements list.IWalker interface.
type todoListAbstraction struct {
	widgets []gowid.IWidget
	focus   list.ListPos
}

func newTodoListAbstraction() *todoListAbstraction {
	return &todoListAbstraction{
		widgets: make([]gowid.IWidget, 0),
		focus:   0,
	}
}

func (w *todoListAbstraction) Set(rows []gowid.IWidget, app gowid.IApp) {
	w.widgets = rows
	if int(w.focus) >= len(rows) {
		w.focus = list.ListPos(len(rows) - 1)
	}
	if w.focus < 0 {
		w.focus = 0
	}
}

func (w *todoListAbstraction) First() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(0)
}

func (w *todoListAbstraction) Last() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(len(w.widgets) - 1)
}

func (w *todoListAbstraction) Length() int {
	return len(w.widgets)
}

func (w *todoListAbstraction) At(pos list.IWalkerPosition) gowid.IWidget {
	var res gowid.IWidget
	ipos := int(pos.(list.ListPos))
	if ipos >= 0 && ipos < w.Length() {
		res = w.widgets[ipos]
	}
	return res
}

func (w *todoListAbstraction) Focus() list.IWalkerPosition {
	return w.focus
}

func (w *todoListAbstraction) SetFocus(focus list.IWalkerPosition, app gowid.IApp) {
	w.focus = focus.(list.ListPos)
}

func (w *todoListAbstraction) Next(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if int(pos) == w.Length()-1 {
		return list.ListPos(-1)
	}
	return pos + 1
}

func (w *todoListAbstraction) Previous(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if pos-1 == -1 {
		return list.ListPos(-1)
	}
	return pos - 1
}
