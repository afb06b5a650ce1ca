// Package policy decides whether an identity may perform an operation.
// It is a pure function of role and operation so it stays independent of
// transport and can be tested on its own.
package policy

import (
	"libraryapi/internal/entity"
)

type Operation string

const (
	OpListBooks  Operation = "list_books"
	OpBorrowBook Operation = "borrow_book"
	OpReturnBook Operation = "return_book"
	OpCreateBook Operation = "create_book"
	OpUpdateBook Operation = "update_book"
	OpDeleteBook Operation = "delete_book"
)

// adminOnly lists the catalog-management operations.
var adminOnly = map[Operation]bool{
	OpCreateBook: true,
	OpUpdateBook: true,
	OpDeleteBook: true,
}

// Allowed reports whether a caller with the given role may perform op.
// Browsing is open to everyone, borrow/return to any authenticated caller,
// catalog management to admins only. The empty role means anonymous.
func Allowed(role string, op Operation) bool {
	if adminOnly[op] {
		return role == entity.RoleAdmin
	}
	switch op {
	case OpListBooks:
		return true
	case OpBorrowBook, OpReturnBook:
		return role != ""
	}
	return false
}
