package ui

import (
	"strings"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/style"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

type iconAction struct {
	btn         widget.Clickable
	icon        *widget.Icon
	description string
	run         func()
}

func newIconAction(data []byte, description string, run func()) iconAction {
	icon, _ := widget.NewIcon(data)
	return iconAction{icon: icon, description: description, run: run}
}

// toolbar holds the file, viewport and appearance actions above the canvas.
type toolbar struct {
	app     *App
	actions []iconAction

	paletteMenu *menu.DropdownMenu
	paletteBtn  widget.Clickable
	exportMenu  *menu.DropdownMenu
	exportBtn   widget.Clickable
}

func newToolbar(a *App) toolbar {
	view := func(fn func()) func() {
		return func() {
			fn()
			a.canvas.redraw = true
		}
	}
	t := toolbar{app: a}
	t.actions = []iconAction{
		newIconAction(icons.FileFolderOpen, "Open design", a.openDesign),
		newIconAction(icons.ActionZoomIn, "Zoom in", view(a.engine.ZoomIn)),
		newIconAction(icons.ActionZoomOut, "Zoom out", view(a.engine.ZoomOut)),
		newIconAction(icons.NavigationFullscreen, "Fit to window", view(a.engine.Fit)),
		newIconAction(icons.NavigationRefresh, "Rebuild scene", func() {
			a.engine.Reset()
			a.stale = true
		}),
		newIconAction(icons.ActionInvertColors, "Dark mode", func() { a.setDarkMode(!a.darkMode) }),
	}
	t.paletteMenu = t.buildPaletteMenu()
	t.exportMenu = t.buildExportMenu()
	return t
}

func (t *toolbar) buildPaletteMenu() *menu.DropdownMenu {
	a := t.app
	names := style.PaletteNames()
	opts := make([]menu.MenuOption, 0, len(names))
	for _, name := range names {
		label := name
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.updateSettings(func(s *settings.Settings) { s.LayerColorPalette = label })
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, label)
				if label == a.engine.Settings().LayerColorPalette {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(220)
	return drop
}

func (t *toolbar) buildExportMenu() *menu.DropdownMenu {
	a := t.app
	opts := make([]menu.MenuOption, 0, 2)
	for _, f := range []scene.Format{scene.FormatPNG, scene.FormatJPEG} {
		format := f
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.exportImage(format)
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, strings.ToUpper(string(format)))
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(120)
	return drop
}

func (t *toolbar) Layout(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	th := t.app.gvTheme
	hasDesign := t.app.engine.Design() != nil

	children := make([]layout.FlexChild, 0, len(t.actions)+4)
	for i := range t.actions {
		act := &t.actions[i]
		for act.btn.Clicked(gtx) {
			act.run()
		}
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if act.icon == nil {
				return material.Button(th.Theme, &act.btn, act.description).Layout(gtx)
			}
			btn := material.IconButton(th.Theme, &act.btn, act.icon, act.description)
			btn.Size = unit.Dp(20)
			btn.Inset = layout.UniformInset(unit.Dp(6))
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, btn.Layout)
		}))
	}

	children = append(children,
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if t.paletteBtn.Clicked(gtx) {
				t.paletteMenu.ToggleVisibility(gtx)
			}
			label := "Palette: " + t.app.engine.Settings().LayerColorPalette
			dims := material.Button(th.Theme, &t.paletteBtn, label).Layout(gtx)
			t.paletteMenu.Layout(gtx, th)
			return dims
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !hasDesign {
				gtx = gtx.Disabled()
			}
			if t.exportBtn.Clicked(gtx) {
				t.exportMenu.ToggleVisibility(gtx)
			}
			dims := material.Button(th.Theme, &t.exportBtn, "Export").Layout(gtx)
			t.exportMenu.Layout(gtx, th)
			return dims
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			title := snap.DesignName
			if title == "" {
				title = "edaview " + snap.AppVersion
			}
			return layout.E.Layout(gtx, material.Subtitle1(th.Theme, title).Layout)
		}),
	)

	return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

// maxSearchResults bounds the explorer list
const maxSearchResults = 100

// layerPanel lists the category toggles, the label settings and a name search
// over cells, nets and ports that opens the inspector.
type layerPanel struct {
	list   widget.List
	toggle []widget.Bool // indexed by category

	names      widget.Bool
	indicators widget.Bool

	search     widget.Editor
	query      string
	searched   *design.Design
	results    []viewer.Entity
	resultBtns []widget.Clickable
}

func newLayerPanel() layerPanel {
	p := layerPanel{toggle: make([]widget.Bool, len(viewer.Categories()))}
	p.list.Axis = layout.Vertical
	p.search.SingleLine = true
	return p
}

// updateSearch reruns the search when the query or the design changed and
// inspects a clicked result.
func (p *layerPanel) updateSearch(gtx layout.Context, a *App) {
	for i := range p.results {
		if p.resultBtns[i].Clicked(gtx) {
			e := p.results[i]
			a.state.Select(e)
			a.state.Inspect(e)
		}
	}
	d := a.engine.Design()
	if q := p.search.Text(); q != p.query || d != p.searched {
		p.query, p.searched = q, d
		p.results = viewer.Search(d, q, maxSearchResults)
		if len(p.resultBtns) < len(p.results) {
			p.resultBtns = make([]widget.Clickable, len(p.results))
		}
	}
}

func (p *layerPanel) Layout(gtx layout.Context, a *App) layout.Dimensions {
	th := a.gvTheme.Theme
	vis := a.engine.Visibility()

	ordered := vis.Ordered()
	for _, c := range ordered {
		w := &p.toggle[c]
		if w.Update(gtx) {
			a.setVisible(c, w.Value)
		}
		w.Value = vis.Visible(c)
	}
	if p.names.Update(gtx) {
		v := p.names.Value
		a.updateSettings(func(s *settings.Settings) { s.DisplayNames = v })
	}
	if p.indicators.Update(gtx) {
		v := p.indicators.Value
		a.updateSettings(func(s *settings.Settings) { s.DisablePortIndicators = !v })
	}
	s := a.engine.Settings()
	p.names.Value = s.DisplayNames
	p.indicators.Value = !s.DisablePortIndicators
	p.updateSearch(gtx, a)

	rows := make([]layout.Widget, 0, len(ordered)+len(p.results)+10)
	rows = append(rows, material.Subtitle2(th, "Layers").Layout)
	for _, c := range ordered {
		c := c
		rows = append(rows, func(gtx layout.Context) layout.Dimensions {
			if vis.Entry(c).Disabled {
				gtx = gtx.Disabled()
			}
			return material.CheckBox(th, &p.toggle[c], vis.Entry(c).Name).Layout(gtx)
		})
	}
	rows = append(rows,
		layout.Spacer{Height: unit.Dp(12)}.Layout,
		material.Subtitle2(th, "Labels").Layout,
		material.CheckBox(th, &p.names, "Cell names").Layout,
		material.CheckBox(th, &p.indicators, "Port indicators").Layout,
		layout.Spacer{Height: unit.Dp(12)}.Layout,
		material.Subtitle2(th, "Explorer").Layout,
		func(gtx layout.Context) layout.Dimensions {
			ed := material.Editor(th, &p.search, "Search cells, nets, ports")
			return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4)}.Layout(gtx, ed.Layout)
		},
	)
	for i := range p.results {
		i := i
		rows = append(rows, func(gtx layout.Context) layout.Dimensions {
			return material.Clickable(gtx, &p.resultBtns[i], func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(th, p.results[i].Label())
				lbl.MaxLines = 1
				return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2)}.Layout(gtx, lbl.Layout)
			})
		})
	}
	if p.query != "" && len(p.results) == 0 {
		rows = append(rows, material.Caption(th, "No matches").Layout)
	}

	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return material.List(th, &p.list).Layout(gtx, len(rows), func(gtx layout.Context, i int) layout.Dimensions {
			return rows[i](gtx)
		})
	})
}

// inspectorPanel shows the properties of the inspected entity.
type inspectorPanel struct {
	list     widget.List
	closeBtn widget.Clickable
	closeIco *widget.Icon
}

func newInspectorPanel() inspectorPanel {
	p := inspectorPanel{}
	p.list.Axis = layout.Vertical
	if icon, err := widget.NewIcon(icons.NavigationClose); err == nil {
		p.closeIco = icon
	}
	return p
}

func (p *inspectorPanel) Layout(gtx layout.Context, a *App, d viewer.Details) layout.Dimensions {
	th := a.gvTheme.Theme
	if p.closeBtn.Clicked(gtx) {
		a.state.CloseInspector()
	}

	header := func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, material.H6(th, d.Title).Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if p.closeIco == nil {
					return material.Button(th, &p.closeBtn, "Close").Layout(gtx)
				}
				btn := material.IconButton(th, &p.closeBtn, p.closeIco, "Close")
				btn.Size = unit.Dp(16)
				btn.Inset = layout.UniformInset(unit.Dp(4))
				return btn.Layout(gtx)
			}),
		)
	}

	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(header),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(th, &p.list).Layout(gtx, len(d.Properties), func(gtx layout.Context, i int) layout.Dimensions {
					prop := d.Properties[i]
					return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
							layout.Rigid(material.Caption(th, prop.Name).Layout),
							layout.Rigid(material.Body2(th, prop.Value).Layout),
						)
					})
				})
			}),
		)
	})
}
