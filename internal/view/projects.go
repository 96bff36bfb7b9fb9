package view

import (
	"context"
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/config/data"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/ui"
)

// Projects lists the projects with saved settings and switches between
// them.
type Projects struct {
	*tview.Table

	app      *App
	actions  *ui.KeyActions
	projects []string
}

// NewProjects creates a new project switcher.
func NewProjects(app *App) *Projects {
	p := Projects{
		Table:   tview.NewTable(),
		app:     app,
		actions: ui.NewKeyActions(),
	}

	p.SetBorder(true)
	p.SetTitleAlign(tview.AlignCenter)
	p.SetBorderColor(tcell.ColorAqua)
	p.SetBackgroundColor(tcell.ColorDefault)
	p.SetSelectable(true, false)
	p.SetFixed(1, 0)

	return &p
}

// Init initializes the view.
func (p *Projects) Init(context.Context) error {
	p.actions.Bulk(ui.KeyMap{
		tcell.KeyEnter: ui.NewKeyAction("Switch", p.switchCmd, true),
		ui.KeyJ:        ui.NewKeyAction("Down", p.moveCmd(1), false),
		ui.KeyK:        ui.NewKeyAction("Up", p.moveCmd(-1), false),
	})
	p.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		if a, ok := p.actions.Get(ui.AsKey(evt)); ok {
			return a.Action(evt)
		}
		return evt
	})

	return nil
}

// Start loads the projects.
func (p *Projects) Start() {
	if err := p.load(); err != nil {
		p.app.Flash().Err(err)
	}
}

// Stop stops the view.
func (*Projects) Stop() {}

// Name returns the view name.
func (*Projects) Name() string {
	return "projects"
}

// Hints returns menu hints.
func (p *Projects) Hints() ui.MenuHints {
	return p.actions.Hints()
}

func (p *Projects) load() error {
	p.Clear()
	for col, h := range []string{"", "PROJECT", "DATASET", "VIEW"} {
		p.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1))
	}

	names, err := p.app.Config().Projects()
	if err != nil {
		return err
	}
	current := data.ContextName(p.app.Config().ActiveProject())
	if len(names) == 0 {
		names = []string{current}
	}
	p.projects = names

	for i, name := range names {
		row := i + 1
		marker, color := "", tcell.ColorWhite
		if name == current {
			marker, color = "●", tcell.ColorGreen
		}
		p.SetCell(row, 0, tview.NewTableCell(marker).SetTextColor(tcell.ColorGreen))
		p.SetCell(row, 1, tview.NewTableCell(name).SetTextColor(color).SetExpansion(1).SetReference(name))

		dataset, view := "", ""
		if cfg := p.app.Config().ActiveConfig(); cfg != nil && name == current {
			ctx := cfg.GetContext()
			dataset, view = ctx.Dataset, ctx.GetView().Active
		}
		p.SetCell(row, 2, tview.NewTableCell(dataset).SetExpansion(1))
		p.SetCell(row, 3, tview.NewTableCell(view).SetExpansion(1))
	}
	p.SetTitle(fmt.Sprintf(" Projects [%d] ", len(names)))
	p.Select(1, 0)

	return nil
}

func (p *Projects) moveCmd(delta int) ui.ActionHandler {
	return func(*tcell.EventKey) *tcell.EventKey {
		row, col := p.GetSelection()
		if r := row + delta; r >= 1 && r < p.GetRowCount() {
			p.Select(r, col)
		}
		return nil
	}
}

func (p *Projects) switchCmd(*tcell.EventKey) *tcell.EventKey {
	row, _ := p.GetSelection()
	if row < 1 || row > len(p.projects) {
		return nil
	}

	name := p.projects[row-1]
	project := name
	if name == data.DefaultContext {
		project = ""
	}
	ctx, err := p.app.Config().SwitchProject(project)
	if err != nil {
		p.app.Flash().Err(err)
		return nil
	}

	view := ctx.GetView().Active
	if view == "" {
		view = dao.SpansResource
	}
	if err := p.app.command.Run(view); err != nil {
		p.app.Flash().Err(err)
		return nil
	}
	p.app.Flash().Infof("Switched to project %s", name)

	return nil
}
