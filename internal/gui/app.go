package gui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// pickSlots is the number of hero selects in the picker.
const pickSlots = 4

// Portrait sizes follow the CDN images' 16:9 aspect.
var (
	pickPortraitSize   = fyne.NewSize(80, 45)
	resultPortraitSize = fyne.NewSize(150, 84)
)

// App is the desktop hero picker.
type App struct {
	app      fyne.App
	window   fyne.Window
	services *Services
	facades  *Facades
	ctx      context.Context

	selects        []*widget.Select
	portraits      []*fyne.Container
	resultPortrait *fyne.Container
	resultLabel    *widget.Label
	statusLabel *widget.Label
	refreshBtn  *widget.Button

	// display name -> hero id for the select options
	heroIndex map[string]string
}

// NewApp creates a new GUI application.
func NewApp(services *Services) *App {
	return &App{
		app:      app.New(),
		services: services,
		facades:  NewFacades(services),
		ctx:      services.context(),
	}
}

// Run builds the window and blocks until it is closed.
func (a *App) Run() {
	a.window = a.app.NewWindow("Dota Draft Companion")
	a.window.Resize(fyne.NewSize(480, 420))

	names := a.loadHeroNames()
	minPicks, _ := a.services.pickLimits()

	form := container.NewVBox()
	a.selects = make([]*widget.Select, pickSlots)
	a.portraits = make([]*fyne.Container, pickSlots)
	for i := range a.selects {
		portrait := container.NewStack()
		sel := widget.NewSelect(names, func(option string) {
			a.showPortrait(portrait, a.portraitForOption(option), pickPortraitSize)
		})
		label := fmt.Sprintf("Hero %d", i+1)
		if i < minPicks {
			sel.PlaceHolder = "Select a hero (required)"
		} else {
			sel.PlaceHolder = "Select a hero (optional)"
		}
		a.selects[i] = sel
		a.portraits[i] = portrait
		form.Add(widget.NewLabel(label))
		form.Add(container.NewBorder(nil, nil, nil, portrait, sel))
	}

	a.resultLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	a.resultLabel.Wrapping = fyne.TextWrapWord
	a.resultPortrait = container.NewStack()
	a.statusLabel = widget.NewLabel(statusText(a.facades.Pattern.GetStatus()))

	recommendBtn := widget.NewButton("Get Recommendation", a.onRecommend)
	recommendBtn.Importance = widget.HighImportance
	clearBtn := widget.NewButton("Clear", a.onClear)
	a.refreshBtn = widget.NewButton("Refresh data", a.onRefresh)

	a.watchPatterns()

	content := container.NewBorder(
		nil,
		container.NewVBox(widget.NewSeparator(), container.NewHBox(a.statusLabel)),
		nil, nil,
		container.NewVBox(
			form,
			container.NewHBox(recommendBtn, clearBtn, a.refreshBtn),
			widget.NewSeparator(),
			container.NewCenter(a.resultPortrait),
			a.resultLabel,
		),
	)

	a.window.SetContent(content)
	a.window.ShowAndRun()
}

func (a *App) loadHeroNames() []string {
	items, err := a.facades.Hero.ListHeroes(a.ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Starting picker without hero catalog")
		a.heroIndex = map[string]string{}
		return nil
	}
	names, index := heroOptions(items)
	a.heroIndex = index
	return names
}

func (a *App) onRecommend() {
	chosen := make([]string, len(a.selects))
	for i, sel := range a.selects {
		chosen[i] = sel.Selected
	}
	picks := selectionFromNames(chosen, a.heroIndex)

	go func() {
		resp, err := a.facades.Draft.Recommend(a.ctx, picks)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowInformation("Cannot recommend", translateError(err), a.window)
				return
			}
			a.resultLabel.SetText(resultText(resp))
			a.showPortrait(a.resultPortrait, resp.PortraitURL, resultPortraitSize)
		})
	}()
}

func (a *App) onClear() {
	for _, sel := range a.selects {
		sel.ClearSelected()
	}
	a.resultLabel.SetText("")
	a.showPortrait(a.resultPortrait, "", resultPortraitSize)
}

func (a *App) onRefresh() {
	a.refreshBtn.Disable()
	a.statusLabel.SetText("Refreshing patterns from OpenDota...")

	go func() {
		report, err := a.facades.Pattern.RefreshPatterns(a.ctx)
		fyne.Do(func() {
			a.refreshBtn.Enable()
			if err != nil {
				dialog.ShowError(fmt.Errorf("%s", translateError(err)), a.window)
				a.statusLabel.SetText(statusText(a.facades.Pattern.GetStatus()))
				return
			}
			msg := fmt.Sprintf("Mined %d patterns from %d matches", report.Patterns, report.Sequences)
			if report.Degraded {
				msg += " (degraded, see logs)"
			}
			a.statusLabel.SetText(msg)
		})
	}()
}

// portraitForOption returns the portrait URL for a select option, or "".
func (a *App) portraitForOption(option string) string {
	if a.services.Recommender == nil {
		return ""
	}
	return optionPortrait(option, a.heroIndex, a.services.Recommender.Catalog().Load())
}

// showPortrait loads url into slot off the UI goroutine. An empty url
// clears the slot.
func (a *App) showPortrait(slot *fyne.Container, url string, size fyne.Size) {
	if url == "" {
		slot.Objects = nil
		slot.Refresh()
		return
	}

	go func() {
		uri, err := fynestorage.ParseURI(url)
		if err != nil {
			logging.Debug().Err(err).Str("url", url).Msg("Invalid portrait URL")
			return
		}
		img := canvas.NewImageFromURI(uri)
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(size)
		fyne.Do(func() {
			slot.Objects = []fyne.CanvasObject{img}
			slot.Refresh()
		})
	}()
}

// watchPatterns keeps the status line current when the set is swapped elsewhere
// (file watcher, API refresh).
func (a *App) watchPatterns() {
	if a.services.Dispatcher == nil {
		return
	}
	a.services.Dispatcher.Register(events.NewFuncObserver("gui-status", func(events.Event) error {
		status := a.facades.Pattern.GetStatus()
		fyne.Do(func() { a.statusLabel.SetText(statusText(status)) })
		return nil
	}, events.TypePatternsReloaded, events.TypePatternsRefreshed))
}

// heroOptions returns display names in catalog order and a name -> id index.
// Duplicate names get their id appended so every option stays unique.
func heroOptions(items []recommend.Item) ([]string, map[string]string) {
	names := make([]string, 0, len(items))
	index := make(map[string]string, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ID
		}
		if _, dup := index[name]; dup {
			name = fmt.Sprintf("%s (%s)", name, item.ID)
		}
		index[name] = item.ID
		names = append(names, name)
	}
	return names, index
}

// optionPortrait maps a select option to its hero's portrait URL. Options
// that are not in the index, or whose hero is unknown to the catalog, have none.
func optionPortrait(option string, index map[string]string, catalog *recommend.Catalog) string {
	id, ok := index[option]
	if !ok {
		return ""
	}
	item, ok := catalog.Lookup(id)
	if !ok {
		return ""
	}
	return heroes.PortraitURL(item.Name)
}

// selectionFromNames maps chosen select values to hero ids in slot order,
// skipping empty slots.
func selectionFromNames(chosen []string, index map[string]string) []string {
	picks := make([]string, 0, len(chosen))
	for _, name := range chosen {
		if name == "" {
			continue
		}
		if id, ok := index[name]; ok {
			picks = append(picks, id)
			continue
		}
		picks = append(picks, name)
	}
	return picks
}

func resultText(resp *RecommendationResponse) string {
	if resp == nil || resp.Result == nil {
		return recommend.NoResultMessage
	}
	r := resp.Result
	switch r.Source {
	case recommend.SourcePattern:
		return fmt.Sprintf("Recommended Hero: %s (seen in %d matching patterns)", r.ItemName, r.Score)
	default:
		return fmt.Sprintf("Recommended Hero: %s (similar to %s)", r.ItemName, lastPickName(resp.Picks))
	}
}

func lastPickName(picks []PickView) string {
	if len(picks) == 0 {
		return "your last pick"
	}
	return picks[len(picks)-1].HeroName
}

func statusText(s PatternSetStatus) string {
	if s.Patterns == 0 {
		return "No patterns loaded; suggestions use hero similarity."
	}
	source := strings.TrimSpace(s.Source)
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("%d patterns loaded (%s, %s)", s.Patterns, source, s.CreatedAt.Local().Format("Jan 2 15:04"))
}
