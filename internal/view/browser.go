// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/spanlens/spanlens/internal/config/data"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model"
	"github.com/spanlens/spanlens/internal/model1"
	"github.com/spanlens/spanlens/internal/ui"
	"go.uber.org/zap"
)

// Browser browses a paged connection.
type Browser struct {
	*ui.ConnectionTable

	app      *App
	model    *model.TableData
	cancelFn context.CancelFunc
	mx       sync.RWMutex
}

// NewBrowser returns a new connection browser.
func NewBrowser(app *App, rid dao.ResourceID) *Browser {
	return &Browser{
		ConnectionTable: ui.NewConnectionTable(rid),
		app:             app,
	}
}

// Init initializes the browser component.
func (b *Browser) Init(ctx context.Context) error {
	if err := b.ConnectionTable.Init(ctx); err != nil {
		return err
	}

	cfg := b.app.Config()
	timeout, err := cfg.GetAPITimeout()
	if err != nil {
		return err
	}
	if b.app.Factory() == nil || b.app.Factory().Source() == nil {
		return dao.ErrNoSource
	}
	b.model, err = model.NewTableData(b.ResourceID(), b.app.Factory().Source(),
		model.WithTablePaging(cfg.PageSize, cfg.ScrollThreshold),
		model.WithFetchTimeout(timeout),
		model.WithTableLogger(b.app.Logger()),
	)
	if err != nil {
		return err
	}
	b.SetModel(b.model)
	b.model.AddListener(b)

	b.SetScrollFn(b.onScroll)
	b.SetRowFn(b.describeRow)
	b.SetSortFn(b.saveSort)
	b.bindKeys(b.Actions())
	b.restoreView()

	return nil
}

// Start attaches the pager and loads the first page when needed.
func (b *Browser) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.mx.Lock()
	if b.cancelFn != nil {
		b.cancelFn()
	}
	b.cancelFn = cancel
	b.mx.Unlock()

	b.model.Pager().Attach()
	go func() {
		if err := b.model.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.app.Logger().Warn("Watch failed", zap.Stringer("rid", b.ResourceID()), zap.Error(err))
		}
	}()
}

// Stop detaches the pager. Loaded pages are kept.
func (b *Browser) Stop() {
	b.mx.Lock()
	if b.cancelFn != nil {
		b.cancelFn()
		b.cancelFn = nil
	}
	b.mx.Unlock()

	b.model.Pager().Detach()
}

// Dispose releases the connection.
func (b *Browser) Dispose() {
	b.model.RemoveListener(b)
	b.model.Stop()
}

// Name returns the component name.
func (b *Browser) Name() string {
	return b.ResourceID().String()
}

// Model returns the table model.
func (b *Browser) Model() *model.TableData {
	return b.model
}

func (b *Browser) onScroll(g model.Geometry) {
	if b.model.Pager().OnScroll(g) {
		b.app.Logger().Debug("Fetching next page",
			zap.Stringer("rid", b.ResourceID()),
			zap.Int("rows", g.ScrollHeight),
		)
	}
}

func (b *Browser) bindKeys(aa *ui.KeyActions) {
	aa.Bulk(ui.KeyMap{
		tcell.KeyCtrlR: ui.NewKeyAction("Refresh", b.refreshCmd, true),
		ui.KeyD:        ui.NewKeyAction("Diff", b.diffCmd, true),
		ui.KeyY:        ui.NewKeyAction("YAML", b.yamlCmd, true),
		tcell.KeyCtrlU: ui.NewKeyAction("Clear Marks", b.clearMarksCmd, false),
	})
}

func (b *Browser) refreshCmd(*tcell.EventKey) *tcell.EventKey {
	b.app.Factory().Invalidate(b.ResourceID())
	b.app.Flash().Infof("Refreshing %s...", b.ResourceID())

	b.mx.RLock()
	cancel := b.cancelFn
	b.mx.RUnlock()
	if cancel == nil {
		return nil
	}
	go func() {
		if err := b.model.Refresh(context.Background()); err != nil {
			b.app.Logger().Warn("Refresh failed", zap.Stringer("rid", b.ResourceID()), zap.Error(err))
		}
	}()

	return nil
}

func (b *Browser) yamlCmd(*tcell.EventKey) *tcell.EventKey {
	if id := b.GetSelectedItem(); id != "" {
		b.describeRow(id)
	}
	return nil
}

func (b *Browser) clearMarksCmd(*tcell.EventKey) *tcell.EventKey {
	b.ClearMarks()
	return nil
}

func (b *Browser) describeRow(id string) {
	raw, ok := b.model.Node(id)
	if !ok {
		b.app.Flash().Warn(fmt.Sprintf("no node for row %q", id))
		return
	}
	if err := b.app.Inject(NewDescribe(b.ResourceID(), id, raw)); err != nil {
		b.app.Flash().Err(err)
	}
}

func (b *Browser) diffCmd(*tcell.EventKey) *tcell.EventKey {
	ids := b.GetMarked()
	if len(ids) != 2 {
		b.app.Flash().Warn("Mark exactly two rows to diff")
		return nil
	}

	from, ok1 := b.model.Node(ids[0])
	to, ok2 := b.model.Node(ids[1])
	if !ok1 || !ok2 {
		b.app.Flash().Warn("Marked rows are no longer loaded")
		return nil
	}
	if err := b.app.Inject(NewDiff(b.ResourceID(), ids[0], ids[1], from, to)); err != nil {
		b.app.Flash().Err(err)
	}

	return nil
}

func (b *Browser) projectContext() *data.ProjectContext {
	cfg := b.app.Config().ActiveConfig()
	if cfg == nil {
		return nil
	}
	return cfg.GetContext()
}

func (b *Browser) restoreView() {
	b.SetWide(b.app.Config().UI.Wide)

	ctx := b.projectContext()
	if ctx == nil {
		return
	}
	v := ctx.GetView()
	if v.Active == b.ResourceID().Resource && v.SortColumn != "" {
		b.SetSort(v.SortColumn, v.SortAsc)
	}
}

func (b *Browser) saveSort(col string, asc bool) {
	ctx := b.projectContext()
	if ctx == nil {
		return
	}
	v := ctx.GetView()
	v.Active, v.SortColumn, v.SortAsc = b.ResourceID().Resource, col, asc
	ctx.SetView(v)
	if err := b.app.Config().SaveActiveConfig(); err != nil {
		b.app.Logger().Warn("Unable to save view settings", zap.Error(err))
	}
}

// TableDataChanged notifies view new data is available.
func (b *Browser) TableDataChanged(mdata *model1.TableData) {
	b.app.QueueUpdateDraw(func() {
		b.UpdateUI(mdata)
	})
}

// TableNoData notifies view no data is available.
func (b *Browser) TableNoData(mdata *model1.TableData) {
	b.app.QueueUpdateDraw(func() {
		b.UpdateUI(mdata)
	})
}

// TableLoadFailed reports a failed page. Loaded rows stay visible.
func (b *Browser) TableLoadFailed(err error) {
	b.app.Logger().Error("Page load failed", zap.Stringer("rid", b.ResourceID()), zap.Error(err))
	b.app.Flash().Err(fmt.Errorf("%s: %s", b.ResourceID(), friendlyError(err)))
	if data := b.model.Peek(); data != nil {
		b.app.QueueUpdateDraw(func() {
			b.UpdateUI(data)
		})
	}
}

// friendlyError shortens the errors users commonly run into.
func friendlyError(err error) string {
	var gqlErr *dao.GraphQLError
	switch {
	case errors.As(err, &gqlErr):
		return gqlErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, dao.ErrNotFound):
		return "not found"
	case errors.Is(err, dao.ErrBadCursor):
		return "cursor rejected by source"
	}

	msg := err.Error()
	for _, s := range []string{"connection refused", "no such host"} {
		if strings.Contains(msg, s) {
			return "unable to reach source"
		}
	}

	return msg
}
