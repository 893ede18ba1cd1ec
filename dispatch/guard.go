package dispatch

import "github.com/wproject-studio/toko-admin/shop"

// Role matrix for chat-driven actions:
//
//	                     admin  staff
//	product create        yes    yes
//	product read          yes    yes
//	product update        yes    yes
//	product delete        yes    no
//	purchase create       yes    no
//	purchase read         yes    yes
//	purchase update       yes    yes   (status only)
//	purchase delete       yes    no
//
// Unauthenticated callers get no CRUD at all. Each guard returns an
// explanatory narration when the caller is not allowed, empty string
// when the action may proceed.

const (
	msgNotLoggedIn      = "I can't run that change because you are not logged in. Please sign in first."
	msgAdminOnly        = "Only an admin is allowed to do that."
	msgProductWriters   = "Only admin or staff may modify product data."
	msgPurchaseUpdaters = "Only admin or staff may update purchase status."
)

func isOperator(u *shop.User) bool {
	return u != nil && (u.Role == shop.RoleAdmin || u.Role == shop.RoleStaff)
}

func guardAdmin(u *shop.User) string {
	if u == nil || u.Role != shop.RoleAdmin {
		return msgAdminOnly
	}
	return ""
}

func guardProductWrite(u *shop.User) string {
	if !isOperator(u) {
		return msgProductWriters
	}
	return ""
}

func guardPurchaseUpdate(u *shop.User) string {
	if !isOperator(u) {
		return msgPurchaseUpdaters
	}
	return ""
}
