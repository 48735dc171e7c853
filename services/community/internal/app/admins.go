package app

import (
	"crypto/subtle"

	"tfdcommunity/pkg/domain"
)

// AdminAccount is one entry of the fixed privileged-login table.
type AdminAccount struct {
	Username string
	Password string
	Role     domain.UserRole
	Nickname string
}

// AdminDirectory is an immutable username -> account table.
type AdminDirectory struct {
	accounts map[string]AdminAccount
}

// NewAdminDirectory copies the given accounts; later changes to the slice are not seen.
func NewAdminDirectory(accounts ...AdminAccount) AdminDirectory {
	m := make(map[string]AdminAccount, len(accounts))
	for _, acc := range accounts {
		m[acc.Username] = acc
	}
	return AdminDirectory{accounts: m}
}

// DefaultAdmins is the built-in table of privileged accounts.
func DefaultAdmins() AdminDirectory {
	return NewAdminDirectory(
		AdminAccount{Username: "Admintfd", Password: "tfdadamdır", Role: domain.RoleAdmin, Nickname: "TFD Admin"},
		AdminAccount{Username: "Efe", Password: "Efeisholderr", Role: domain.RoleFounder, Nickname: "Founder Efe"},
	)
}

// Authenticate returns the account when both username and password match exactly.
func (d AdminDirectory) Authenticate(username, password string) (AdminAccount, bool) {
	acc, ok := d.accounts[username]
	if !ok {
		return AdminAccount{}, false
	}
	if subtle.ConstantTimeCompare([]byte(acc.Password), []byte(password)) != 1 {
		return AdminAccount{}, false
	}
	return acc, true
}

func (d AdminDirectory) Len() int { return len(d.accounts) }
