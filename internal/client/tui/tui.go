package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/bep/debounce"
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/button"
	"github.com/gcla/gowid/widgets/columns"
	"github.com/gcla/gowid/widgets/edit"
	"github.com/gcla/gowid/widgets/framed"
	"github.com/gcla/gowid/widgets/pile"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/riekert/todo/internal/todo"
	"github.com/sirupsen/logrus"
)

type (
	// Options are used to build a TUI.
	Options struct {
		Username     string
		Synchronizer *todo.Synchronizer
		// SignOut terminates the session of the user.
		SignOut func(ctx context.Context) error
		Logger  *logrus.Logger
	}

	// A TUI is a text-based interface.
	TUI struct {
		App     *gowid.App
		ctx     context.Context
		sync    *todo.Synchronizer
		signOut func(ctx context.Context) error
		log     *logrus.Logger

		list     *TodoList
		draft    *edit.Widget
		status   *text.Widget
		clearing func(func())
	}
)

// New returns a new TUI.
func New(ctx context.Context, opts Options) (*TUI, error) {
	ui := &TUI{
		ctx:      ctx,
		sync:     opts.Synchronizer,
		signOut:  opts.SignOut,
		log:      opts.Logger,
		clearing: debounce.New(1200 * time.Millisecond),
	}

	app, err := gowid.NewApp(layout(ui, opts.Username))
	if err != nil {
		return ui, errors.Wrap(err, "could not create application widgets")
	}

	ui.App = app
	return ui, nil
}

// Run fetches the todos and starts the event loop.
func (ui *TUI) Run() {
	ui.background("Loading...", func(ctx context.Context) bool {
		return ui.sync.FetchAll(ctx)
	})

	ui.App.MainLoop(gowid.UnhandledInputFunc(ui.unhandled))
}

// Cleanup cleans the application properly (in case of panic).
func (ui *TUI) Cleanup() {
	ui.App.GetScreen().Fini() // Cleanup tcell screen's objects
}

// DisplayStatus displays a message in the status bar (aka notifications).
// It must be called from the event loop.
func (ui *TUI) DisplayStatus(message string) {
	ui.status.SetText(message, ui.App)
	ui.clearing(func() {
		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			ui.status.SetText("", app)
		}))
	})
}

// background runs op outside the event loop then refreshes the list.
// Failures are already logged by the synchronizer so only a neutral status is displayed.
func (ui *TUI) background(message string, op func(ctx context.Context) bool) {
	ui.status.SetText(message, ui.App)

	go func() {
		changed := op(ui.ctx)

		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			ui.refresh(app)
			if changed {
				ui.DisplayStatus("saved")
				return
			}
			ui.DisplayStatus("")
		}))
	}()
}

// refresh renders the local list of the synchronizer.
func (ui *TUI) refresh(app gowid.IApp) {
	items := ui.sync.Items()
	editing, buffer, _ := ui.sync.Editing()
	debug(ui.log, "render", items)

	rows := make([]gowid.IWidget, 0, len(items))
	for _, item := range items {
		if item.ID == editing {
			rows = append(rows, newEditRow(ui, item, buffer))
			continue
		}
		rows = append(rows, newRow(ui, item))
	}
	ui.list.Set(rows, app)

	ui.draft.SetText(ui.sync.Draft(), app)
}

////////////////////
//                //
// Layout         //
//                //
////////////////////

func layout(ui *TUI, username string) gowid.AppArgs {
	ui.list = NewTodoList()
	ui.draft = edit.New(edit.Options{Caption: "New todo: "})
	ui.draft.OnTextSet(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(app gowid.IApp, iw gowid.IWidget) {
		ui.sync.SetDraft(ui.draft.Text())
	}})
	ui.status = text.New("")

	signout := button.New(text.New("Sign out"))
	signout.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onSignOut})

	header := columns.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{
			IWidget: text.New(fmt.Sprintf("Todos of %s", username)),
			D:       gowid.RenderWithWeight{W: 1},
		},
		&gowid.ContainerWidget{IWidget: signout, D: gowid.RenderFixed{}},
	})

	create := button.New(text.New("Create"))
	create.OnClick(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: ui.onCreate})

	form := columns.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{IWidget: ui.draft, D: gowid.RenderWithWeight{W: 1}},
		&gowid.ContainerWidget{IWidget: create, D: gowid.RenderFixed{}},
	})

	main := pile.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{
			IWidget: styled.New(header, gowid.MakePaletteRef("header")),
			D:       gowid.RenderWithUnits{U: 1},
		},
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(form), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithUnits{U: 3},
		},
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(ui.list), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 1},
		},
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(ui.status), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithUnits{U: 3},
		},
	})

	return gowid.AppArgs{
		View: main,
		Palette: &gowid.Palette{
			"header":   gowid.MakePaletteEntry(gowid.ColorBlack, gowid.ColorLightGray),
			"mainpane": gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			// List style
			"normal":  gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			"focused": gowid.MakePaletteEntry(gowid.ColorBlack, gowid.ColorRed),
			"editing": gowid.MakePaletteEntry(gowid.ColorWhite, gowid.ColorDarkBlue),
		},
		Log: ui.log,
	}
}

////////////////////
//                //
// Events         //
//                //
////////////////////

func (ui *TUI) onCreate(app gowid.IApp, _ gowid.IWidget) {
	ui.background("Creating...", ui.sync.Submit)
}

func (ui *TUI) onUpdate(id string) func(app gowid.IApp, _ gowid.IWidget) {
	return func(app gowid.IApp, _ gowid.IWidget) {
		ui.sync.BeginEdit(id)
		ui.refresh(app)
	}
}

func (ui *TUI) onSave(app gowid.IApp, _ gowid.IWidget) {
	ui.background("Saving...", ui.sync.SaveEdit)
}

func (ui *TUI) onCancel(app gowid.IApp, _ gowid.IWidget) {
	ui.sync.CancelEdit()
	ui.refresh(app)
}

func (ui *TUI) onDelete(id string) func(app gowid.IApp, _ gowid.IWidget) {
	return func(app gowid.IApp, _ gowid.IWidget) {
		ui.background("Deleting...", func(ctx context.Context) bool {
			return ui.sync.Delete(ctx, id)
		})
	}
}

func (ui *TUI) onSignOut(app gowid.IApp, _ gowid.IWidget) {
	ui.status.SetText("Signing out...", app)

	go func() {
		err := ui.signOut(ui.ctx)

		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			if err != nil {
				ui.log.WithError(err).Error("could not sign out")
				ui.DisplayStatus("")
				return
			}
			app.Quit()
		}))
	}()
}

func (ui *TUI) unhandled(app gowid.IApp, ev any) bool {
	evk, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}

	handled := false

	switch evk.Key() {
	case tcell.KeyCtrlQ:
		handled = true
		app.Quit()
	case tcell.KeyCtrlR:
		handled = true
		ui.background("Loading...", ui.sync.FetchAll)
	}

	return handled
}
