package command

import (
	"fmt"
	"sort"
)

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name -> command
	aliases  map[string]string   // alias -> canonical name
}

// NewRegistry creates a Registry populated with cmds.
//
// Precondition: No two commands may share a name or alias.
// Postcondition: Returns a Registry or an error on collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	taken := func(word string) (string, bool) {
		if _, ok := r.commands[word]; ok {
			return word, true
		}
		owner, ok := r.aliases[word]
		return owner, ok
	}

	for i := range cmds {
		cmd := &cmds[i]
		if owner, ok := taken(cmd.Name); ok {
			return nil, fmt.Errorf("command name %q already used by %q", cmd.Name, owner)
		}
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if owner, ok := taken(alias); ok {
				return nil, fmt.Errorf("alias %q of %q already used by %q", alias, cmd.Name, owner)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// DefaultRegistry creates a Registry with the builtin commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.commands[word]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[word]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered commands sorted by category then name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category > out[j].Category // wheel before system
		}
		return out[i].Name < out[j].Name
	})
	return out
}
