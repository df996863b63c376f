// Package protocol turns raw request lines into validated operations against
// server state and formats the single-line replies.
//
// Dispatch is a per-request state machine: parse, validate arity, route by
// verb through a closed command table, execute, format. Domain failures map
// onto fixed reply strings and never terminate the connection.
package protocol

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cryptowallet/internal/common"
	"github.com/dmitrijs2005/cryptowallet/internal/logging"
	"github.com/dmitrijs2005/cryptowallet/internal/market"
	"github.com/dmitrijs2005/cryptowallet/internal/server/session"
	"github.com/dmitrijs2005/cryptowallet/internal/server/storage"
	"github.com/dmitrijs2005/cryptowallet/internal/wallet"
)

// Result is the outcome of one dispatched request. Close tells the reactor to
// drop the connection after writing the reply (graceful disconnect).
type Result struct {
	Reply string
	Close bool
}

// command describes one protocol verb: how many arguments it takes, whether
// it needs a bound session, and what runs when validation passes.
type command struct {
	arity         int
	requiresLogin bool
	handler       func(d *Dispatcher, ctx context.Context, connID uint64, args []string) Result
}

// commands is the closed verb table. Adding a verb means adding exactly one
// entry here; the exhaustiveness test keeps the table and the help text in
// sync.
var commands = map[string]command{
	"register":                   {arity: 2, handler: (*Dispatcher).register},
	"login":                      {arity: 2, handler: (*Dispatcher).login},
	"deposit-money":              {arity: 1, requiresLogin: true, handler: (*Dispatcher).deposit},
	"list-offerings":             {arity: 0, handler: (*Dispatcher).listOfferings},
	"buy":                        {arity: 2, requiresLogin: true, handler: (*Dispatcher).buy},
	"sell":                       {arity: 1, requiresLogin: true, handler: (*Dispatcher).sell},
	"get-wallet-summary":         {arity: 0, requiresLogin: true, handler: (*Dispatcher).walletSummary},
	"get-wallet-overall-summary": {arity: 0, requiresLogin: true, handler: (*Dispatcher).walletOverallSummary},
	"disconnect":                 {arity: 0, handler: (*Dispatcher).disconnect},
}

// Dispatcher owns the server's domain state: the registered-user set, the
// session registry, and the price cache. It must only ever be called from
// the event-loop goroutine.
type Dispatcher struct {
	users    map[string]*wallet.User
	sessions *session.Registry
	cache    *market.Cache
	store    storage.Manager
	logger   logging.Logger
}

func NewDispatcher(users []*wallet.User, sessions *session.Registry, cache *market.Cache,
	store storage.Manager, logger logging.Logger) *Dispatcher {

	byName := make(map[string]*wallet.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	return &Dispatcher{
		users:    byName,
		sessions: sessions,
		cache:    cache,
		store:    store,
		logger:   logger.With("module", "dispatcher"),
	}
}

// Dispatch handles one request line for one connection.
func (d *Dispatcher) Dispatch(ctx context.Context, connID uint64, line string) Result {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Reply: ReplyUnknown}
	}

	cmd, ok := commands[fields[0]]
	if !ok {
		return Result{Reply: ReplyUnknown}
	}

	args := fields[1:]
	if len(args) != cmd.arity {
		return Result{Reply: ReplyInvalidInput}
	}

	if cmd.requiresLogin {
		if _, ok := d.sessions.Lookup(connID); !ok {
			return Result{Reply: ReplyNotLogged}
		}
	}

	return cmd.handler(d, ctx, connID, args)
}

// Unbind clears a connection's session without running the disconnect
// handler. The reactor calls it on abrupt peer closes.
func (d *Dispatcher) Unbind(connID uint64) {
	d.sessions.Unbind(connID)
}

// Persist writes the current user set and price-cache snapshot to storage.
// Called on registration, graceful disconnect, autosave ticks, and shutdown.
func (d *Dispatcher) Persist(ctx context.Context) error {
	if err := d.store.Users().Save(ctx, d.registeredUsers()); err != nil {
		return err
	}
	return d.store.Market().Save(ctx, d.cache.Snapshot())
}

func (d *Dispatcher) registeredUsers() []*wallet.User {
	out := make([]*wallet.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (d *Dispatcher) register(ctx context.Context, connID uint64, args []string) Result {
	username, password := args[0], args[1]

	if _, exists := d.users[username]; exists {
		return Result{Reply: ReplyUsernameTaken}
	}

	d.users[username] = wallet.NewUser(username, password)

	// Fail-soft: the user is registered in memory even if the snapshot write
	// fails; the error goes to the durable record.
	if err := d.Persist(ctx); err != nil {
		d.logger.Error(ctx, "persisting users after registration", "error", err.Error())
	}

	d.logger.Info(ctx, "user registered", "username", username)
	return Result{Reply: ReplyRegistered}
}

func (d *Dispatcher) login(ctx context.Context, connID uint64, args []string) Result {
	username, password := args[0], args[1]

	user, ok := d.users[username]
	if !ok || !user.CheckPassword(password) {
		return Result{Reply: ReplyInvalidLogin}
	}

	d.sessions.Bind(connID, user)
	d.logger.Info(ctx, "user logged in", "username", username)
	return Result{Reply: ReplyLoggedIn}
}

func (d *Dispatcher) deposit(ctx context.Context, connID uint64, args []string) Result {
	user, _ := d.sessions.Lookup(connID)

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return Result{Reply: ReplyInvalidInput}
	}

	if err := user.Deposit(amount); err != nil {
		d.logUserError(ctx, user, err)
		return Result{Reply: ReplyDepositNonPositive}
	}

	return Result{Reply: ReplyDeposited}
}

func (d *Dispatcher) listOfferings(ctx context.Context, connID uint64, args []string) Result {
	var b strings.Builder

	for _, asset := range d.cache.Assets(ctx) {
		b.WriteString(labelID)
		b.WriteString(asset.ID)
		b.WriteString(space)
		b.WriteString(labelName)
		b.WriteString(asset.Name)
		b.WriteString(space)
		b.WriteString(labelPrice)
		b.WriteString(strconv.FormatFloat(asset.Price, 'f', -1, 64))
		b.WriteString(space)
		b.WriteString(space)
	}

	return Result{Reply: b.String()}
}

func (d *Dispatcher) buy(ctx context.Context, connID uint64, args []string) Result {
	user, _ := d.sessions.Lookup(connID)
	assetID := args[0]

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Result{Reply: ReplyInvalidInput}
	}

	asset, ok := d.cache.Lookup(ctx, assetID)
	if !ok {
		return Result{Reply: ReplyUnavailable}
	}

	if err := user.Buy(asset, amount); err != nil {
		d.logUserError(ctx, user, err)
		switch {
		case errors.Is(err, common.ErrInsufficientFunds):
			return Result{Reply: ReplyNotEnoughMoney}
		case errors.Is(err, common.ErrAssetUntradeable):
			return Result{Reply: ReplyCannotBeBought}
		default:
			return Result{Reply: ReplyInvestNonPositive}
		}
	}

	return Result{Reply: ReplyBoughtPrefix + assetID}
}

func (d *Dispatcher) sell(ctx context.Context, connID uint64, args []string) Result {
	user, _ := d.sessions.Lookup(connID)
	assetID := args[0]

	asset, ok := d.cache.Lookup(ctx, assetID)
	if !ok {
		return Result{Reply: ReplyUnavailable}
	}

	if _, err := user.Sell(asset); err != nil {
		d.logUserError(ctx, user, err)
		return Result{Reply: ReplyNothingToSell}
	}

	return Result{Reply: ReplySoldPrefix + assetID}
}

func (d *Dispatcher) walletSummary(ctx context.Context, connID uint64, args []string) Result {
	user, _ := d.sessions.Lookup(connID)
	return Result{Reply: user.Summary()}
}

func (d *Dispatcher) walletOverallSummary(ctx context.Context, connID uint64, args []string) Result {
	user, _ := d.sessions.Lookup(connID)

	reply := user.OverallSummary(func(assetID string) (market.Asset, bool) {
		return d.cache.Lookup(ctx, assetID)
	})

	return Result{Reply: reply}
}

func (d *Dispatcher) disconnect(ctx context.Context, connID uint64, args []string) Result {
	if user, ok := d.sessions.Lookup(connID); ok {
		d.sessions.Unbind(connID)
		if err := d.Persist(ctx); err != nil {
			d.logger.Error(ctx, "persisting users on disconnect", "error", err.Error(), "username", user.Username)
		}
	}

	return Result{Reply: ReplyDisconnect, Close: true}
}

// logUserError records a domain failure against the user in the durable
// error log, mirroring the per-user exception record of the original system.
func (d *Dispatcher) logUserError(ctx context.Context, user *wallet.User, err error) {
	d.logger.Warn(ctx, "operation rejected", "username", user.Username, "error", err.Error())
}
