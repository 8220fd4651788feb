// Package ui provides terminal output for the reccaster CLI.
//
// One-shot commands (catalog, listen, init) print through a Printer: a
// header box naming the command, plain rendered tables, then a success or
// error box. Renderers such as RenderCatalog and RenderServers return
// strings so they can be tested and composed.
//
// "reccaster run --tui" uses StatusModel, a Bubble Tea program fed by the
// caster through NewStatusObserver:
//
//	model := ui.NewStatusModel(listen, cat.Len(), len(caster.UploadPlan(cat)))
//	p := tea.NewProgram(model)
//	c := caster.New(cat, listener, caster.WithObserver(ui.NewStatusObserver(p)))
//
// Logging is left to zap and controlled with RECCASTER_LOG_LEVEL. When the
// TUI is running, logs should go to a file so they do not tear the view.
package ui
