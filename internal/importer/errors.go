package importer

import "errors"

var (
	ErrUnauthorized   = errors.New("no user could be resolved for this request")
	ErrNoTransactions = errors.New("there are no transactions to import")
)
