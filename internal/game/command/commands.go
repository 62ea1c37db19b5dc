// Package command provides the terminal command registry and parser.
package command

// Categories for organizing commands in help output.
const (
	CategoryWheel  = "wheel"
	CategorySystem = "system"
)

// Handler identifiers dispatched by the terminal front end.
const (
	HandlerDraw    = "draw"
	HandlerDismiss = "dismiss"
	HandlerHistory = "history"
	HandlerPrizes  = "prizes"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a terminal command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the one-line description shown by help.
	Help     string
	Category string
	// Handler names the action the front end performs.
	Handler string
	// WhileSpinning reports whether the command is accepted during a spin.
	WhileSpinning bool
}

// BuiltinCommands returns the lucky draw commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "draw", Aliases: []string{"spin"}, Help: "Spin the wheel (or just press enter)", Category: CategoryWheel, Handler: HandlerDraw, WhileSpinning: true},
		{Name: "dismiss", Aliases: []string{"ok"}, Help: "Close the result dialog", Category: CategoryWheel, Handler: HandlerDismiss},
		{Name: "history", Aliases: []string{"h", "winners"}, Help: "Show recent winners", Category: CategoryWheel, Handler: HandlerHistory},
		{Name: "prizes", Aliases: []string{"odds"}, Help: "List the prizes and their chances", Category: CategoryWheel, Handler: HandlerPrizes},
		{Name: "help", Aliases: []string{"?"}, Help: "Show this list", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the draw", Category: CategorySystem, Handler: HandlerQuit, WhileSpinning: true},
	}
}
