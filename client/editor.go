package client

// Command names a formatting operation the rich-text framework executes.
// Commands reach the document exclusively through Editor.Exec so every edit
// flows through the framework's single transaction-dispatch path and the
// replica observes it like a keystroke.
type Command string

const (
	CmdBold        Command = "bold"
	CmdItalic      Command = "italic"
	CmdHeading1    Command = "heading1"
	CmdHeading2    Command = "heading2"
	CmdBulletList  Command = "bullet-list"
	CmdOrderedList Command = "ordered-list"
	CmdUndo        Command = "undo"
	CmdRedo        Command = "redo"
)

// Editor is the narrow handle onto the external rich-text framework. The
// caller constructs it with its schema up front; the SDK never builds or
// shares document schemas itself.
type Editor interface {
	// PlainText returns the document's current content as plain text.
	PlainText() string

	// Clear replaces the content with a single empty block. The clear is a
	// normal transaction, so the replica propagates it to peers like any
	// other local edit.
	Clear() error

	// Exec runs a formatting command through the transaction dispatch path.
	Exec(cmd Command) error
}
