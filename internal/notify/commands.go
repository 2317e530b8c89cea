package notify

import (
	"fmt"
	"strings"
)

// Command is an operator request received by SMS reply
type Command string

const (
	CmdHelp    Command = "help"
	CmdStatus  Command = "status"
	CmdTop     Command = "top"
	CmdEma     Command = "ema"
	CmdSqueeze Command = "squeeze"
)

var commandHelp = []struct {
	cmd  Command
	desc string
}{
	{CmdHelp, "list commands"},
	{CmdStatus, "overall sentiment and market session"},
	{CmdTop, "top tickers by mentions"},
	{CmdEma, "sentiment EMA and signal"},
	{CmdSqueeze, "latest short squeeze watchlist"},
}

// ParseCommand normalises a reply into a known command
func ParseCommand(text string) (Command, bool) {
	word := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexAny(word, " \t"); i >= 0 {
		word = word[:i]
	}
	for _, h := range commandHelp {
		if Command(word) == h.cmd {
			return h.cmd, true
		}
	}
	return "", false
}

// HelpText lists the commands the operator can send
func HelpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, h := range commandHelp {
		fmt.Fprintf(&b, "%s - %s\n", h.cmd, h.desc)
	}
	b.WriteString(separator)
	return b.String()
}
