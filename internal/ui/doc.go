// Package ui contains the Bubble Tea program that drives the model viewer.
// The Model type focuses on message orchestration, while dedicated helpers
// own navigation, input, rendering, and state updates.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - While the open form is active, key presses go to the form. Everything
//     else is routed through a typed handler registry so each tea.Msg is
//     handled by a focused function (for example, navigation for key presses
//     or backend updates).
//   - Navigation helpers (navigation.go) manage the stack of menu levels and
//     cursor movement. On the elements level the cursor doubles as the
//     viewer pointer, so moving it hovers the element underneath. Filter
//     helpers (input.go) keep text entry isolated from the event loop.
//
// State ownership:
//   - Menu level state lives in internal/ui/state.Level, which tracks items,
//     filtering, marks, and viewport calculations.
//   - The session snapshot, element list and recent projects live in the
//     internal/state stores and are kept in sync by the dispatcher so menu
//     loaders never call into the session from View.
//   - Actions run asynchronously through the internal/ui/command bus and
//     report back with menu.ActionResult.
//
// Backend interactions:
//   - A backend.Watcher streams session snapshots, element lists, recent
//     projects and file changes. applyBackendEvent stores them and reloads
//     any open level that depends on them. A change to the loaded model file
//     triggers a reload.
//   - After every action the model also feeds the session state through the
//     same path, so results show up without waiting for the watcher.
package ui
