package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV builds a directory from a patients CSV file. Falls back to the
// seeded demo records when the file does not exist, so development setups
// work without any data files.
func LoadCSV(path string) (*InMemoryDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewInMemoryDirectory(SeedPatients()), nil
		}
		return nil, fmt.Errorf("directory: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	patients, err := readPatients(f)
	if err != nil {
		return nil, fmt.Errorf("directory: parse %s: %w", path, err)
	}
	return NewInMemoryDirectory(patients), nil
}

// readPatients parses CSV rows with a header line. Column order is taken
// from the header so exports with reordered columns still load.
func readPatients(r io.Reader) ([]Patient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var patients []Patient
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		patients = append(patients, Patient{
			PatientID:        field(row, "patient_id"),
			FirstName:        field(row, "first_name"),
			LastName:         field(row, "last_name"),
			DOB:              field(row, "dob"),
			Phone:            field(row, "phone"),
			Email:            field(row, "email"),
			InsuranceCompany: field(row, "insurance_company"),
			MemberID:         field(row, "member_id"),
			Returning:        strings.EqualFold(field(row, "is_returning"), "true"),
		})
	}
	return patients, nil
}
