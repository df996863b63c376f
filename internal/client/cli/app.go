// Package cli implements the interactive terminal client: a thin read–print
// loop over the server's line protocol. It keeps no wallet state of its own;
// every command is forwarded as one line and every reply is one line back.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/dmitrijs2005/cryptowallet/internal/server/protocol"
)

const recordSeparator = "  "

// multiline verbs get their one-line reply re-split into records for display.
var multilineVerbs = map[string]bool{
	"list-offerings":             true,
	"get-wallet-summary":         true,
	"get-wallet-overall-summary": true,
}

const helpText = `Write: register and your username and password to register to the server
Write: login and your username and password to log into your profile
Write: deposit-money and the amount of money you want to deposit
Write: list-offerings to see the available cryptocurrencies
Write: buy , the ID of the certain crypto and the amount of money you want to invest
Write: sell and the ID of the crypto you want to sell
Write: get-wallet-summary to see your money and active investments
Write: get-wallet-overall-summary to see the profit/loss of your investments
Write: disconnect to save your current activity and disconnect from the server`

// App drives one client session over an established connection.
type App struct {
	conn   net.Conn
	server *bufio.Reader
	stdin  *bufio.Reader
	out    io.Writer
}

func NewApp(conn net.Conn, stdin io.Reader, out io.Writer) *App {
	return &App{
		conn:   conn,
		server: bufio.NewReader(conn),
		stdin:  bufio.NewReader(stdin),
		out:    out,
	}
}

// Run is the REPL: read a command line, forward it, print the reply. It
// exits when the server replies with the disconnect signal, on EOF from the
// user, or when ctx is done.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Connected to the server.")
	fmt.Fprintln(a.out, "You can enter help to see the instructions")

	for ctx.Err() == nil {
		fmt.Fprint(a.out, "Enter message: ")

		line, err := a.stdin.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "help" {
			fmt.Fprintln(a.out, helpText)
			continue
		}

		line, err = a.promptCredentialsIfNeeded(line)
		if err != nil {
			return err
		}

		reply, err := a.roundTrip(line)
		if err != nil {
			return fmt.Errorf("network communication failed: %w", err)
		}

		if reply == protocol.ReplyDisconnect {
			fmt.Fprintln(a.out, "Bye!")
			return nil
		}

		fmt.Fprintln(a.out, "The server replied:")
		fmt.Fprintln(a.out, formatReply(line, reply))
		fmt.Fprintln(a.out)
	}

	return ctx.Err()
}

// promptCredentialsIfNeeded expands a bare "register" or "login" into the
// full command by prompting for a username and a hidden password.
func (a *App) promptCredentialsIfNeeded(line string) (string, error) {
	verb := strings.Fields(line)[0]
	if (verb != "register" && verb != "login") || len(strings.Fields(line)) > 1 {
		return line, nil
	}

	username, err := getSimpleText(a.stdin, "Enter username:", a.out)
	if err != nil {
		return "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", err
	}

	return verb + " " + username + " " + password, nil
}

func (a *App) roundTrip(line string) (string, error) {
	if _, err := a.conn.Write([]byte(line + "\n")); err != nil {
		return "", err
	}
	reply, err := a.server.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(reply, "\r\n"), nil
}

// formatReply re-splits listing and summary replies on the double-space
// record separator so each record prints on its own line. This is a display
// convention only; the wire reply stays a single line.
func formatReply(request, reply string) string {
	verb := strings.Fields(request)[0]
	if !multilineVerbs[verb] || reply == protocol.ReplyNotLogged {
		return reply
	}

	records := strings.Split(reply, recordSeparator)
	lines := make([]string, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(r))
	}
	return strings.Join(lines, "\n")
}
