package directory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupExactMatch(t *testing.T) {
	d := NewInMemoryDirectory(SeedPatients())

	p, err := d.Lookup(context.Background(), "John Doe", "1990-01-01")
	require.NoError(t, err)
	assert.Equal(t, "P0001", p.PatientID)
	assert.True(t, p.Returning)
}

func TestLookupCaseInsensitive(t *testing.T) {
	d := NewInMemoryDirectory(SeedPatients())

	p, err := d.Lookup(context.Background(), "jane smith", "1985-05-15")
	require.NoError(t, err)
	assert.Equal(t, "P0002", p.PatientID)
	assert.False(t, p.Returning)
}

func TestLookupRejectsNameCollision(t *testing.T) {
	// Two Johns with different last names and DOBs: matching only on the
	// first name must not resolve an identity.
	d := NewInMemoryDirectory([]Patient{
		{PatientID: "P0001", FirstName: "John", LastName: "Doe", DOB: "1990-01-01"},
		{PatientID: "P0003", FirstName: "John", LastName: "Carter", DOB: "1970-03-03"},
	})

	_, err := d.Lookup(context.Background(), "John Doe", "1970-03-03")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := d.Lookup(context.Background(), "John Carter", "1970-03-03")
	require.NoError(t, err)
	assert.Equal(t, "P0003", p.PatientID)
}

func TestLookupRequiresDOB(t *testing.T) {
	d := NewInMemoryDirectory(SeedPatients())

	_, err := d.Lookup(context.Background(), "John Doe", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"John Doe", "John", "Doe"},
		{"john", "john", ""},
		{"Mary Anne Smith", "Mary", "Smith"},
		{"  ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.csv")
	content := strings.Join([]string{
		"patient_id,first_name,last_name,dob,phone,email,insurance_company,member_id,is_returning",
		"P0100,Alice,Wong,1988-09-09,+15550100,alice@example.com,Acme Health,AH100,true",
		"P0101,Bob,Reyes,1979-12-31,+15550101,bob@example.com,,,false",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := LoadCSV(path)
	require.NoError(t, err)

	p, err := d.Lookup(context.Background(), "Alice Wong", "1988-09-09")
	require.NoError(t, err)
	assert.Equal(t, "AH100", p.MemberID)
	assert.True(t, p.Returning)

	p, err = d.Lookup(context.Background(), "Bob Reyes", "1979-12-31")
	require.NoError(t, err)
	assert.False(t, p.Returning)
}

func TestLoadCSVMissingFileFallsBack(t *testing.T) {
	d, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)

	p, err := d.Lookup(context.Background(), "John Doe", "1990-01-01")
	require.NoError(t, err)
	assert.Equal(t, "P0001", p.PatientID)
}
