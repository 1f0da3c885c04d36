//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"mininotion/internal/config"
	"mininotion/internal/crash"
	"mininotion/internal/export"
	applog "mininotion/internal/log"
	"mininotion/internal/replay"
	"mininotion/internal/session"
)

// Run starts the Fyne desktop window over a fresh workspace.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	sess := session.New(cfg.SessionOptions())
	defer crash.Recover(sess)

	fyneApp := app.NewWithID("mininotion")
	if v, ok := themeVariant(cfg.General.Theme); ok {
		fyneApp.Settings().SetTheme(&variantTheme{Theme: theme.DefaultTheme(), variant: v})
	}
	w := fyneApp.NewWindow("Mini Notion")
	winW, winH := cfg.General.WindowWidth, cfg.General.WindowHeight
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	v := newView(sess, w)
	sess.SetStatusSink(session.StatusFunc(v.statusChanged))
	sess.SetSurface(v)
	sess.Bootstrap()
	v.refresh()

	w.SetContent(v.layout())
	w.SetMainMenu(v.menu())
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { v.create() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { v.undo() })
	w.Canvas().SetOnTypedKey(v.typedKey)

	w.ShowAndRun()
	l.Info("UI closed", slog.Int("pages", len(sess.Titles())))
	return nil
}

// view binds the widgets to the session. It implements session.Surface.
// All methods run on the Fyne UI goroutine.
type view struct {
	sess *session.Session
	w    fyne.Window
	log  *slog.Logger

	titles  []string
	list    *widget.List
	title   *titleEntry
	content *widget.Entry
	status  *widget.Label
	// syncing is set while the list selection is moved to follow the session.
	syncing bool
	// confirm asks a yes/no question; dialog.ShowConfirm outside tests.
	confirm func(title, message string, answer func(bool))
}

// titleEntry is an Entry that reports losing focus, so a title typed
// without pressing Enter is still committed.
type titleEntry struct {
	widget.Entry
	onFocusLost func()
}

func newTitleEntry() *titleEntry {
	e := &titleEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *titleEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onFocusLost != nil {
		e.onFocusLost()
	}
}

func newView(sess *session.Session, w fyne.Window) *view {
	v := &view{sess: sess, w: w, log: applog.WithComponent("ui")}
	v.confirm = func(title, message string, answer func(bool)) {
		dialog.ShowConfirm(title, message, answer, w)
	}
	v.status = widget.NewLabel("")
	v.title = newTitleEntry()
	v.title.SetPlaceHolder("Page title")
	v.title.OnSubmitted = func(string) { v.commitTitle() }
	v.title.onFocusLost = v.commitTitle
	v.content = widget.NewMultiLineEntry()
	v.content.Wrapping = fyne.TextWrapWord
	v.content.SetPlaceHolder("Start writing…")
	v.content.OnChanged = func(s string) { v.sess.Edit(s) }

	v.list = widget.NewList(
		func() int { return len(v.titles) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(v.titles) {
				o.(*widget.Label).SetText(v.titles[i])
			} else {
				o.(*widget.Label).SetText("")
			}
		},
	)
	v.list.OnSelected = func(id widget.ListItemID) {
		if v.syncing || id < 0 || int(id) >= len(v.titles) {
			return
		}
		target := v.titles[id]
		if active, ok := v.sess.ActiveTitle(); ok && active == target {
			return
		}
		v.commitTitle()
		_ = v.sess.Select(target)
		v.refresh()
	}
	return v
}

// SetTitle implements session.Surface.
func (v *view) SetTitle(title string) { v.title.SetText(title) }

// SetContent implements session.Surface.
func (v *view) SetContent(content string) { v.content.SetText(content) }

func (v *view) statusChanged(msg string) { v.status.SetText(msg) }

// commitTitle renames the active page when the title field holds unsaved text.
func (v *view) commitTitle() {
	if _, ok := v.sess.ActiveTitle(); !ok || v.title.Text == v.sess.Surface().Title {
		return
	}
	_ = v.sess.Rename(v.title.Text)
	v.refresh()
}

// typedKey handles keys no widget consumed. Del deletes the current page.
func (v *view) typedKey(ev *fyne.KeyEvent) {
	if ev.Name != fyne.KeyDelete || v.w.Canvas().Focused() != nil {
		return
	}
	v.confirmDelete()
}

func (v *view) layout() fyne.CanvasObject {
	addBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), v.create)
	undoBtn := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), v.undo)
	delBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), v.confirmDelete)
	helpBtn := widget.NewButtonWithIcon("", theme.HelpIcon(), v.showHelp)

	header := container.NewHBox(widget.NewLabelWithStyle("Pages", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), addBtn)
	left := container.NewBorder(header, nil, nil, nil, v.list)
	toolbar := container.NewBorder(nil, nil, nil, container.NewHBox(undoBtn, delBtn, helpBtn), v.title)
	editor := container.NewBorder(toolbar, nil, nil, nil, v.content)
	split := container.NewHSplit(left, editor)
	split.Offset = 0.25
	return container.NewBorder(nil, v.status, nil, nil, split)
}

func (v *view) menu() *fyne.MainMenu {
	newItem := fyne.NewMenuItem("New Page", v.create)
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierShortcutDefault}
	exportItem := fyne.NewMenuItem("Export PDF…", func() { v.exportPDF(false) })
	exportPageItem := fyne.NewMenuItem("Export Current Page…", func() { v.exportPDF(true) })
	undoItem := fyne.NewMenuItem("Undo", v.undo)
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	deleteItem := fyne.NewMenuItem("Delete Page", v.confirmDelete)
	return fyne.NewMainMenu(
		fyne.NewMenu("File", newItem, exportItem, exportPageItem),
		fyne.NewMenu("Edit", undoItem, deleteItem),
		fyne.NewMenu("Help", fyne.NewMenuItem("Commands", v.showHelp)),
	)
}

func (v *view) create() {
	v.commitTitle()
	v.sess.CreateNew()
	v.refresh()
}

func (v *view) undo() {
	v.sess.Undo()
}

func (v *view) confirmDelete() {
	title, ok := v.sess.ActiveTitle()
	if !ok {
		_ = v.sess.DeleteActive()
		return
	}
	v.confirm("Delete page", "Delete \""+title+"\"?", func(yes bool) {
		if !yes {
			return
		}
		_ = v.sess.DeleteActive()
		v.refresh()
	})
}

func (v *view) showHelp() {
	dialog.ShowInformation("Help", replay.HelpText(), v.w)
}

// pdfOptions exports the whole workspace, or only the active page when currentOnly is set.
func (v *view) pdfOptions(currentOnly bool) (export.PDFOptions, string) {
	opt := export.PDFOptions{Title: "Mini Notion", PageNumbers: true}
	name := "workspace.pdf"
	if !currentOnly {
		return opt, name
	}
	title, ok := v.sess.ActiveTitle()
	if !ok {
		return opt, name
	}
	for i, t := range v.sess.Titles() {
		if t == title {
			opt.Pages = []int{i}
		}
	}
	opt.Title = title
	return opt, title + ".pdf"
}

func (v *view) exportPDF(currentOnly bool) {
	pages := v.sess.Pages()
	opt, name := v.pdfOptions(currentOnly)
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.w)
			return
		}
		if wc == nil {
			return
		}
		defer func() { _ = wc.Close() }()
		if err := export.WritePDF(wc, pages, opt); err != nil {
			v.log.Error("export pdf failed", slog.Any("err", err))
			dialog.ShowError(err, v.w)
			return
		}
		v.log.Info("exported pdf", slog.String("uri", wc.URI().String()), slog.Int("pages", len(pages)))
	}, v.w)
	d.SetFileName(name)
	d.Show()
}

// refresh reloads the page list and moves its selection to the active page.
func (v *view) refresh() {
	v.titles = v.sess.Titles()
	v.list.Refresh()
	v.syncing = true
	defer func() { v.syncing = false }()
	active, ok := v.sess.ActiveTitle()
	if !ok {
		v.list.UnselectAll()
		return
	}
	for i, t := range v.titles {
		if t == active {
			v.list.Select(widget.ListItemID(i))
			return
		}
	}
}

func themeVariant(name string) (fyne.ThemeVariant, bool) {
	switch name {
	case "dark":
		return theme.VariantDark, true
	case "light":
		return theme.VariantLight, true
	}
	return 0, false
}

// variantTheme pins the default theme to one variant.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *variantTheme) Color(n fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(n, t.variant)
}
