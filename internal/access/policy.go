package access

import (
	"fmt"
	"ms-hotel/internal/models"
)

// Section tags the functional areas a role may be granted.
type Section string

const (
	SectionRooms     Section = "rooms"
	SectionCustomers Section = "customers"
	SectionBookings  Section = "bookings"
	SectionEmployees Section = "employees"
	SectionServices  Section = "services"
	SectionInventory Section = "inventory"
	SectionBilling   Section = "billing"
	SectionReports   Section = "reports"

	// SectionAll is the wildcard grant held by admins.
	SectionAll Section = "all"
)

var knownSections = map[Section]bool{
	SectionRooms:     true,
	SectionCustomers: true,
	SectionBookings:  true,
	SectionEmployees: true,
	SectionServices:  true,
	SectionInventory: true,
	SectionBilling:   true,
	SectionReports:   true,
	SectionAll:       true,
}

// Policy maps each role to the sections it may touch. The table is closed:
// construction rejects unknown roles and sections instead of failing at
// lookup time.
type Policy struct {
	grants map[models.Role]map[Section]bool
}

// DefaultGrants is the capability table the hotel ships with.
func DefaultGrants() map[models.Role][]Section {
	return map[models.Role][]Section{
		models.RoleAdmin:        {SectionAll},
		models.RoleManager:      {SectionRooms, SectionCustomers, SectionBookings, SectionEmployees, SectionServices, SectionInventory, SectionReports},
		models.RoleReceptionist: {SectionRooms, SectionCustomers, SectionBookings, SectionServices},
		models.RoleAccountant:   {SectionBilling, SectionReports},
		models.RoleStaff:        {SectionServices},
	}
}

func NewPolicy(grants map[models.Role][]Section) (*Policy, error) {
	p := &Policy{grants: make(map[models.Role]map[Section]bool, len(grants))}
	for role, sections := range grants {
		switch role {
		case models.RoleAdmin, models.RoleManager, models.RoleReceptionist, models.RoleAccountant, models.RoleStaff:
		default:
			return nil, fmt.Errorf("unknown role %q in policy table", role)
		}
		set := make(map[Section]bool, len(sections))
		for _, s := range sections {
			if !knownSections[s] {
				return nil, fmt.Errorf("unknown section %q granted to role %q", s, role)
			}
			set[s] = true
		}
		p.grants[role] = set
	}
	return p, nil
}

// Authorize checks the session against the capability table. A nil session
// always denies; denial surfaces as ErrAccessDenied, never a silent no-op.
func (p *Policy) Authorize(session *models.Session, section Section) error {
	if session == nil {
		return fmt.Errorf("no session: %w", models.ErrAccessDenied)
	}
	set, ok := p.grants[session.Role]
	if !ok {
		return fmt.Errorf("role %q has no grants: %w", session.Role, models.ErrAccessDenied)
	}
	if set[SectionAll] || set[section] {
		return nil
	}
	return fmt.Errorf("role %q may not access %q: %w", session.Role, section, models.ErrAccessDenied)
}
