package protocol

// Wire reply literals. These are part of the protocol contract: clients match
// on them, so they must not be reworded.
const (
	ReplyRegistered    = "User registered successfully"
	ReplyUsernameTaken = "Invalid username, choose another one"
	ReplyLoggedIn      = "User logged successfully"
	ReplyInvalidLogin  = "Invalid logging"
	ReplyNotLogged     = "You have not logged to your profile"
	ReplyInvalidInput  = "User's input is invalid, check the help menu"
	ReplyUnavailable   = "This cryptocurrency is unavailable at the moment"
	ReplyDeposited     = "Money are deposit successfully"
	ReplyUnknown       = "Unknown command"

	// ReplyDisconnect doubles as the close signal: the client exits its loop
	// when it reads this reply.
	ReplyDisconnect = "disconnect"

	ReplyBoughtPrefix = "You successfully bought "
	ReplySoldPrefix   = "You successfully sold "

	// Ledger failure replies. Trailing spaces are part of the contract.
	ReplyDepositNonPositive = "You can't deposit zero or negative amount of money "
	ReplyNotEnoughMoney     = "You don't have enough money "
	ReplyInvestNonPositive  = "You can not invest negative or zero amount of money "
	ReplyCannotBeBought     = "This cryptocurrency can't be bought at the moment "
	ReplyNothingToSell      = "You can't sell cryptocurrency that you haven't bought "
)

// Asset listing field labels.
const (
	labelID    = "ID:"
	labelName  = "Name:"
	labelPrice = "Price:"

	space = " "
)
