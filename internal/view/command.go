// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package view

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/config/data"
	"github.com/spanlens/spanlens/internal/dao"
	"go.uber.org/zap"
)

const (
	helpCmd     = "help"
	quitCmd     = "quit"
	projectsCmd = "projects"
	profileCmd  = "profile"
)

var builtinCmds = map[string]string{
	"?":        helpCmd,
	"h":        helpCmd,
	"help":     helpCmd,
	"q":        quitCmd,
	"q!":       quitCmd,
	"quit":     quitCmd,
	"pj":       projectsCmd,
	"ctx":      projectsCmd,
	"projects": projectsCmd,
	"profile":  profileCmd,
	"aws":      profileCmd,
}

// Command interprets command bar input.
type Command struct {
	app *App
}

// NewCommand creates a new command interpreter.
func NewCommand(app *App) *Command {
	return &Command{app: app}
}

// Names returns the commands offered for completion.
func (c *Command) Names() []string {
	set := make(map[string]struct{})
	for k := range builtinCmds {
		set[k] = struct{}{}
	}
	for k := range c.app.Aliases().All() {
		set[k] = struct{}{}
	}
	for _, r := range dao.ListResources() {
		set[r] = struct{}{}
	}

	nn := make([]string, 0, len(set))
	for k := range set {
		nn = append(nn, k)
	}
	sort.Strings(nn)

	return nn
}

// Run parses and executes a command, e.g. "spans", "ex@ds-1" or "help".
func (c *Command) Run(cmd string) error {
	cmd = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cmd), ":"))
	if cmd == "" {
		cmd = c.app.Config().DefaultView
	}
	name, args, _ := strings.Cut(cmd, " ")

	switch builtinCmds[name] {
	case helpCmd:
		c.app.showHelp()
		return nil
	case quitCmd:
		c.app.Stop()
		return nil
	case projectsCmd:
		return c.app.Inject(NewProjects(c.app))
	case profileCmd:
		return c.switchProfile(strings.TrimSpace(args))
	}

	rid, err := c.Resolve(name)
	if err != nil {
		return err
	}

	return c.browse(rid)
}

// Resolve maps a command onto a connection.
func (c *Command) Resolve(cmd string) (dao.ResourceID, error) {
	return Resolve(c.app.Aliases(), c.app.Config(), cmd)
}

// Resolve maps a command such as "sp" or "ex@ds-1" onto a connection. A
// missing scope falls back to the configured project or dataset.
func Resolve(aliases *config.Aliases, cfg *config.SpanLens, cmd string) (dao.ResourceID, error) {
	rid, err := dao.ParseResourceID(aliases.Get(cmd))
	if err != nil {
		return rid, err
	}
	meta, err := dao.MetaFor(rid.Resource)
	if err != nil {
		return rid, err
	}
	if rid.Scope != "" {
		return rid, nil
	}

	switch rid.Resource {
	case dao.SpansResource:
		rid.Scope = cfg.Project
	case dao.ExamplesResource:
		rid.Scope = cfg.Dataset
	}
	if rid.Scope == "" && meta.ScopeKind == "dataset" {
		return rid, fmt.Errorf("%s need a %s, e.g. :%s@<%s-id>", rid.Resource, meta.ScopeKind, rid.Resource, meta.ScopeKind)
	}

	return rid, nil
}

func (c *Command) switchProfile(profile string) error {
	if profile == "" {
		return fmt.Errorf("usage: profile <aws-profile>")
	}
	f := c.app.Factory()
	if f == nil {
		return dao.ErrNoSource
	}
	if err := f.SwitchProfile(context.Background(), profile); err != nil {
		return err
	}
	c.app.Flash().Infof("AWS profile %s", profile)

	if b, ok := c.app.Content.Current().(*Browser); ok {
		return c.browse(b.ResourceID())
	}

	return nil
}

func (c *Command) browse(rid dao.ResourceID) error {
	c.app.Content.Clear()
	if err := c.app.Inject(NewBrowser(c.app, rid)); err != nil {
		return err
	}
	c.app.Flash().Infof("Viewing %s...", rid)
	c.saveActive(rid)

	return nil
}

func (c *Command) saveActive(rid dao.ResourceID) {
	cfg := c.app.Config().ActiveConfig()
	if cfg == nil {
		return
	}

	ctx := cfg.GetContext()
	v := ctx.GetView()
	if v.Active == rid.Resource {
		return
	}
	ctx.SetView(&data.View{Active: rid.Resource})
	if err := c.app.Config().SaveActiveConfig(); err != nil {
		c.app.Logger().Warn("Unable to save active view", zap.Error(err))
	}
}
