package desktop

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/user/venue/internal/tray"
)

// buildMenu fills the tray menu once the status item is ready
func (s *Shell) buildMenu(onClick func(tray.ClickEvent), toggles []toggle) {
	showItem := systray.AddMenuItem("Show "+windowTitle, "Open the status window")
	go func() {
		for range showItem.ClickedCh {
			s.showFromMenu(onClick)
		}
	}()

	if len(toggles) > 0 {
		systray.AddSeparator()
	}
	for _, tg := range toggles {
		item := systray.AddMenuItemCheckbox(tg.title, "", tg.checked)
		go func() {
			for range item.ClickedCh {
				if item.Checked() {
					item.Uncheck()
				} else {
					item.Check()
				}
				tg.onChange(item.Checked())
			}
		}()
	}

	systray.AddSeparator()

	settingsItem := systray.AddMenuItem("Open Settings…", "Open the configuration file")
	if s.opts.SettingsPath == "" {
		settingsItem.Disable()
	}
	go func() {
		for range settingsItem.ClickedCh {
			s.openSettings()
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Exit the application")
	go func() {
		for range quitItem.ClickedCh {
			s.Quit()
			return
		}
	}()
}

// showFromMenu goes through the same click handler as the status item so
// the popup is placed identically
func (s *Shell) showFromMenu(onClick func(tray.ClickEvent)) {
	if onClick == nil {
		return
	}
	onClick(s.tapEvent())
}

func (s *Shell) openSettings() {
	if s.opts.SettingsPath == "" {
		return
	}
	if err := openPath(s.opts.SettingsPath); err != nil {
		s.logger.Warn("Failed to open settings", zap.String("path", s.opts.SettingsPath), zap.Error(err))
	}
}

// newContent lays out the popup: a title and the current deployment status
func newContent(status binding.String) fyne.CanvasObject {
	title := widget.NewLabelWithStyle(windowTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	statusLabel := widget.NewLabelWithData(status)
	statusLabel.TextStyle = fyne.TextStyle{Monospace: true}

	return container.NewVBox(
		title,
		widget.NewSeparator(),
		container.NewHBox(widget.NewLabel("Deployment:"), statusLabel),
	)
}
