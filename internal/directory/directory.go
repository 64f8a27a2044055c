// Package directory looks patients up by identity so the booking flow can
// distinguish returning patients from new ones.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("directory: patient not found")

// Patient is a directory record.
type Patient struct {
	PatientID        string `json:"patient_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DOB              string `json:"dob"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	InsuranceCompany string `json:"insurance_company"`
	MemberID         string `json:"member_id"`
	Returning        bool   `json:"is_returning"`
}

// Directory resolves a patient by name and date of birth.
type Directory interface {
	Lookup(ctx context.Context, name, dob string) (*Patient, error)
}

// InMemoryDirectory holds patient records in memory. Identity requires an
// exact first-name, last-name, and DOB match; a name collision without a
// matching DOB is not an identity.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	patients []Patient
}

// NewInMemoryDirectory creates a directory over the given records.
func NewInMemoryDirectory(patients []Patient) *InMemoryDirectory {
	return &InMemoryDirectory{patients: patients}
}

// SeedPatients returns the built-in demo records used when no patient CSV
// is available.
func SeedPatients() []Patient {
	return []Patient{
		{
			PatientID:        "P0001",
			FirstName:        "John",
			LastName:         "Doe",
			DOB:              "1990-01-01",
			Phone:            "+919876543210",
			Email:            "john@example.com",
			InsuranceCompany: "Max Bupa",
			MemberID:         "MB123",
			Returning:        true,
		},
		{
			PatientID:        "P0002",
			FirstName:        "Jane",
			LastName:         "Smith",
			DOB:              "1985-05-15",
			Phone:            "+919876543211",
			Email:            "jane@example.com",
			InsuranceCompany: "Star Health",
			MemberID:         "SH456",
			Returning:        false,
		},
	}
}

// Lookup finds a patient by full name and DOB. The name is split into a
// leading first name and trailing last name; both must match exactly
// (case-insensitive) along with the DOB.
func (d *InMemoryDirectory) Lookup(ctx context.Context, name, dob string) (*Patient, error) {
	first, last := SplitName(name)
	if first == "" || dob == "" {
		return nil, ErrNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.patients {
		p := &d.patients[i]
		if strings.EqualFold(p.FirstName, first) &&
			strings.EqualFold(p.LastName, last) &&
			p.DOB == dob {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// SplitName separates a free-form name into first and last parts. A single
// word is treated as a first name with no last name.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}
	return first, last
}

// Ensure interface compliance
var _ Directory = (*InMemoryDirectory)(nil)
