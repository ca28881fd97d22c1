package service

import (
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/store"
)

// BuildUserFilter translates search criteria into a store filter.
// Every clause is optional; absent criteria contribute nothing, so an
// empty SearchCriteria yields a filter that matches all users.
func BuildUserFilter(c dto.SearchCriteria) *store.Filter {
	f := new(store.Filter).
		ContainsFold("full_name", c.FullName).
		ContainsFold("email", c.Email).
		ContainsFold("username", c.Username).
		ContainsFold("school", c.School).
		ContainsFold("phone_number", c.Phone).
		DateRange("date_of_birth", c.FromDate, c.ToDate).
		EqBool("active", c.Active)

	if c.Role != nil {
		f = f.Eq("role", string(*c.Role))
	}

	return f
}
