package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrAccountNameNotUnique     = errors.New("the account name must be unique for the user")
	ErrTransactionAlreadyLinked = errors.New("the transaction is already linked to another transaction")
	ErrTransactionLinkedToSelf  = errors.New("a transaction cannot be linked to itself")
)
