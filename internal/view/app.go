// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/ui"
	"go.uber.org/zap"
)

// FlashDelay sets the flash auto-clear delay.
const FlashDelay = 5 * time.Second

// FlashLevel represents flash message severity.
type FlashLevel int

const (
	// FlashInfo represents an info message.
	FlashInfo FlashLevel = iota
	// FlashWarn represents a warning message.
	FlashWarn
	// FlashErr represents an error message.
	FlashErr
)

// Flash shows short lived status messages.
type Flash struct {
	*tview.TextView

	app    *App
	cancel context.CancelFunc
	mx     sync.RWMutex
}

// NewFlash creates a new flash bar.
func NewFlash(app *App) *Flash {
	f := Flash{
		TextView: tview.NewTextView(),
		app:      app,
	}
	f.SetDynamicColors(true)
	f.SetTextAlign(tview.AlignLeft)
	f.SetBorderPadding(0, 0, 1, 1)
	f.SetBackgroundColor(tcell.ColorDefault)

	return &f
}

// Info displays an informational message.
func (f *Flash) Info(msg string) {
	f.setMessage(FlashInfo, msg)
}

// Infof displays a formatted informational message.
func (f *Flash) Infof(format string, args ...any) {
	f.Info(fmt.Sprintf(format, args...))
}

// Warn displays a warning message.
func (f *Flash) Warn(msg string) {
	f.setMessage(FlashWarn, msg)
}

// Err displays an error message.
func (f *Flash) Err(err error) {
	if err != nil {
		f.setMessage(FlashErr, err.Error())
	}
}

// Errf displays a formatted error message.
func (f *Flash) Errf(format string, args ...any) {
	f.setMessage(FlashErr, fmt.Sprintf(format, args...))
}

// Clear clears the flash message.
func (f *Flash) Clear() {
	f.stopTimer()
	f.queue(func() { f.TextView.Clear() })
}

func (f *Flash) stopTimer() {
	f.mx.Lock()
	defer f.mx.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Flash) queue(fn func()) {
	if f.app != nil {
		f.app.QueueUpdateDraw(fn)
		return
	}
	fn()
}

func (f *Flash) setMessage(level FlashLevel, msg string) {
	f.stopTimer()
	if msg == "" {
		f.Clear()
		return
	}

	f.queue(func() {
		f.TextView.Clear()
		f.SetTextColor(flashColor(level))
		_, _ = fmt.Fprintf(f.TextView, "%s %s", flashPrefix(level), msg)
	})

	ctx, cancel := context.WithCancel(context.Background())
	f.mx.Lock()
	f.cancel = cancel
	f.mx.Unlock()

	go f.autoClear(ctx)
}

func (f *Flash) autoClear(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(FlashDelay):
		f.queue(func() { f.TextView.Clear() })
	}
}

func flashColor(level FlashLevel) tcell.Color {
	switch level {
	case FlashWarn:
		return tcell.ColorYellow
	case FlashErr:
		return tcell.ColorOrangeRed
	default:
		return tcell.ColorNavajoWhite
	}
}

func flashPrefix(level FlashLevel) string {
	switch level {
	case FlashWarn:
		return "😗"
	case FlashErr:
		return "😡"
	default:
		return "😎"
	}
}

// App represents the main application container.
type App struct {
	*tview.Application

	version string
	config  *config.Config
	factory *dao.Factory
	aliases *config.Aliases
	log     *zap.Logger
	Main    *tview.Pages
	Content *ui.Pages
	command *Command
	cmdBar  *ui.CmdBar
	menu    *ui.Menu
	crumbs  *ui.Crumbs
	flash   *Flash
	running bool
	closing bool
	mx      sync.RWMutex
}

// NewApp creates a new application over a configured source.
func NewApp(cfg *config.Config, f *dao.Factory, log *zap.Logger, version string) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := App{
		Application: tview.NewApplication(),
		version:     version,
		config:      cfg,
		factory:     f,
		aliases:     config.NewAliases(),
		log:         log,
		Main:        tview.NewPages(),
		Content:     ui.NewPages(),
		menu:        ui.NewMenu(),
		crumbs:      ui.NewCrumbs(),
		cmdBar:      ui.NewCmdBar(),
	}
	a.flash = NewFlash(&a)

	return &a
}

// Init initializes and builds the application layout.
func (a *App) Init() error {
	if err := a.aliases.Load(); err != nil {
		a.log.Warn("Unable to load aliases", zap.Error(err))
	}
	a.command = NewCommand(a)
	a.cmdBar.SetCommands(a.command.Names())

	a.Content.AddListener(a.menu)
	a.Content.AddListener(a.crumbs)
	a.Content.AddListener(a)

	a.cmdBar.SetActiveFn(func(active bool) {
		if active {
			a.SetFocus(a.cmdBar)
			return
		}
		if top := a.Content.Top(); top != nil {
			a.SetFocus(top)
		}
	})
	a.cmdBar.SetCommandFn(func(cmd string) {
		if err := a.command.Run(cmd); err != nil {
			a.flash.Err(err)
		}
	})
	a.cmdBar.SetFilterFn(a.applyFilter)
	a.cmdBar.SetCancelFn(func() { a.applyFilter("") })

	a.Application.SetInputCapture(a.keyboard)
	a.Main.AddPage("main", a.buildLayout(), true, true)
	a.SetRoot(a.Main, true).EnableMouse(a.Config().UI.EnableMouse)

	return nil
}

// Run shows the default view then runs the event loop.
func (a *App) Run() error {
	a.mx.Lock()
	a.running = true
	a.mx.Unlock()

	if err := a.command.Run(a.Config().DefaultView); err != nil {
		a.log.Warn("Default view failed", zap.Error(err))
		a.flash.Err(err)
	}

	return a.Application.Run()
}

// Stop stops the application.
func (a *App) Stop() {
	a.mx.Lock()
	a.running, a.closing = false, true
	a.mx.Unlock()

	a.Content.Clear()
	a.Application.Stop()
}

// IsRunning returns whether the event loop runs.
func (a *App) IsRunning() bool {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.running
}

// Config returns the spanlens settings.
func (a *App) Config() *config.SpanLens {
	return a.config.SpanLens
}

// Factory returns the source factory.
func (a *App) Factory() *dao.Factory {
	return a.factory
}

// Aliases returns the command aliases.
func (a *App) Aliases() *config.Aliases {
	return a.aliases
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}

// Flash returns the flash message handler.
func (a *App) Flash() *Flash {
	return a.flash
}

// Version returns the build version.
func (a *App) Version() string {
	return a.version
}

// QueueUpdateDraw runs fn on the UI goroutine. Before the event loop
// starts fn runs inline.
func (a *App) QueueUpdateDraw(fn func()) {
	if !a.IsRunning() {
		fn()
		return
	}
	go a.Application.QueueUpdateDraw(fn)
}

// Inject pushes a component on the content stack.
func (a *App) Inject(c ui.Component) error {
	if err := c.Init(context.Background()); err != nil {
		return fmt.Errorf("%s init failed: %w", c.Name(), err)
	}
	a.Content.Push(c)

	return nil
}

// StackPushed starts the new top component.
func (a *App) StackPushed(c ui.Component) {
	c.Start()
	a.SetFocus(c)
}

// StackPopped disposes the old component and resumes the new top.
func (a *App) StackPopped(o, top ui.Component) {
	if d, ok := o.(disposer); ok {
		d.Dispose()
	}
	a.mx.RLock()
	closing := a.closing
	a.mx.RUnlock()
	if top == nil || closing {
		return
	}
	top.Start()
	a.SetFocus(top)
}

// StackTop notifies the top component.
func (*App) StackTop(ui.Component) {}

func (a *App) buildLayout() *tview.Flex {
	header := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.cmdBar, 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 3, 0, false).
		AddItem(a.Content, 0, 1, true)
	if !a.Config().UI.Crumbsless {
		main.AddItem(a.crumbs, 1, 0, false)
	}
	main.AddItem(a.flash, 1, 0, false)
	if !a.Config().UI.Logoless {
		main.AddItem(a.menu, 3, 0, false)
	}

	return main
}

func (a *App) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if a.cmdBar.IsActive() {
		return evt
	}

	switch ui.AsKey(evt) {
	case ui.KeyColon:
		a.cmdBar.Activate(ui.ModeCommand)
		return nil
	case ui.KeySlash:
		if _, ok := a.Content.Top().(filterer); ok {
			a.cmdBar.Activate(ui.ModeFilter)
		}
		return nil
	case ui.KeyHelp:
		if _, ok := a.Content.Top().(*Help); !ok {
			a.showHelp()
		}
		return nil
	case ui.KeyQ:
		if a.Content.StackSize() > 1 {
			a.Content.Pop()
			return nil
		}
		a.Stop()
		return nil
	case tcell.KeyCtrlC:
		a.Stop()
		return nil
	case tcell.KeyEsc:
		if a.cmdBar.GetFilterText() != "" {
			a.cmdBar.ClearFilter()
			return nil
		}
		if a.Content.StackSize() > 1 {
			a.Content.Pop()
		}
		return nil
	}

	return evt
}

type filterer interface {
	SetFilter(string)
}

type disposer interface {
	Dispose()
}

func (a *App) applyFilter(q string) {
	if f, ok := a.Content.Top().(filterer); ok {
		f.SetFilter(q)
	}
}

func (a *App) showHelp() {
	if err := a.Inject(NewHelp(a)); err != nil {
		a.flash.Err(err)
	}
}
