package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Command is a menu selection.
type Command rune

const (
	CmdNewContainer    Command = 'a'
	CmdStoreObject     Command = 'b'
	CmdRemoveObject    Command = 'c'
	CmdRemoveContainer Command = 'd'
	CmdDuplicateObject Command = 'e'
	CmdFetchObject     Command = 'f'
	CmdSearchMetadata  Command = 'g'
	CmdRefreshMetadata Command = 'h'
	CmdExit            Command = 'j'
)

// Commands lists the menu in display order.
var Commands = []Command{
	CmdNewContainer,
	CmdStoreObject,
	CmdRemoveObject,
	CmdRemoveContainer,
	CmdDuplicateObject,
	CmdFetchObject,
	CmdSearchMetadata,
	CmdRefreshMetadata,
	CmdExit,
}

var descriptions = map[Command]string{
	CmdNewContainer:    "Create a new storage bucket",
	CmdStoreObject:     "Put object in an existing bucket",
	CmdRemoveObject:    "Delete object from an existing bucket",
	CmdRemoveContainer: "Delete a bucket",
	CmdDuplicateObject: "Copy an object from one bucket to another",
	CmdFetchObject:     "Download an existing object from a bucket",
	CmdSearchMetadata:  "Search database for object metadata",
	CmdRefreshMetadata: "Update metadata",
	CmdExit:            "Exit the program",
}

// ParseCommand reads a menu letter, ignoring case and surrounding space.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid selection %q", s)
	}
	cmd := Command(s[0])
	if _, ok := descriptions[cmd]; !ok {
		return 0, fmt.Errorf("invalid selection %q", s)
	}
	return cmd, nil
}

func (c Command) String() string {
	return string(c)
}

// Description is the menu text for c.
func (c Command) Description() string {
	return descriptions[c]
}

// Handler runs one use case, asking p for whatever input it needs.
type Handler func(ctx context.Context, p Prompter) error

// Handlers builds the command lookup table. CmdExit has no handler; leaving
// the loop is up to the caller.
func (c *Coordinator) Handlers() map[Command]Handler {
	return map[Command]Handler{
		CmdNewContainer:    c.NewContainer,
		CmdStoreObject:     c.StoreObject,
		CmdRemoveObject:    c.RemoveObject,
		CmdRemoveContainer: c.RemoveContainer,
		CmdDuplicateObject: c.DuplicateObject,
		CmdFetchObject:     c.FetchObject,
		CmdSearchMetadata:  c.SearchMetadata,
		CmdRefreshMetadata: c.RefreshMetadata,
	}
}
