// Package roster reads the CAPWATCH unload files (Member.txt,
// MbrContact.txt, DutyPosition.txt, Organization.txt, vehicles.txt).
// The files are comma separated with a header row and quoted fields.
package roster

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
)

// Member.txt column offsets.
const (
	memberColCAPID = 0
	memberColLast  = 2
	memberColFirst = 3
	memberColDOB   = 7
	memberColOrgID = 11
	memberColRank  = 14
)

// MemberInfo is the subset of Member.txt used for login and display.
type MemberInfo struct {
	CAPID     string
	Rank      string
	FirstName string
	LastName  string
	DOB       string // MM/DD/YYYY
	OrgID     string
}

// Roster reads lookup files from a CAPWATCH unload directory.
type Roster struct {
	path string
}

// New returns a Roster rooted at the unload directory.
func New(path string) *Roster {
	return &Roster{path: path}
}

func (r *Roster) readRows(fileName string, fn func(row []string) bool) error {
	f, err := os.Open(filepath.Join(r.path, fileName))
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	// header row
	if _, err := reader.Read(); err != nil {
		return err
	}

	for {
		row, err := reader.Read()
		if err != nil {
			return nil
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if !fn(row) {
			return nil
		}
	}
}

// FindMemberInfo looks a member up by CAPID in Member.txt. A missing roster
// file or an unknown CAPID both return nil.
func (r *Roster) FindMemberInfo(capid string) *MemberInfo {
	var found *MemberInfo
	_ = r.readRows("Member.txt", func(row []string) bool {
		if len(row) <= memberColRank || row[memberColCAPID] != capid {
			return true
		}
		found = &MemberInfo{
			CAPID:     capid,
			Rank:      row[memberColRank],
			FirstName: row[memberColFirst],
			LastName:  row[memberColLast],
			DOB:       row[memberColDOB],
			OrgID:     row[memberColOrgID],
		}
		return false
	})
	return found
}

// FindCAPIDByEmail resolves an email address to a CAPID via MbrContact.txt.
func (r *Roster) FindCAPIDByEmail(email string) string {
	var capid string
	_ = r.readRows("MbrContact.txt", func(row []string) bool {
		if len(row) >= 4 && row[1] == "EMAIL" && strings.EqualFold(row[3], email) {
			capid = row[0]
			return false
		}
		return true
	})
	return capid
}

// AuthorizedOrgIDs returns the parent ORGID plus its children and
// grandchildren from Organization.txt.
func (r *Roster) AuthorizedOrgIDs(parentOrgID string) map[string]bool {
	authorized := map[string]bool{parentOrgID: true}

	// two passes: direct children first, then grandchildren
	_ = r.readRows("Organization.txt", func(row []string) bool {
		if len(row) >= 6 && row[4] == parentOrgID {
			authorized[row[0]] = true
		}
		return true
	})
	_ = r.readRows("Organization.txt", func(row []string) bool {
		if len(row) >= 6 && authorized[row[4]] {
			authorized[row[0]] = true
		}
		return true
	})

	return authorized
}

// DutyPositions returns every duty position a member holds.
func (r *Roster) DutyPositions(capid string) []string {
	var positions []string
	_ = r.readRows("DutyPosition.txt", func(row []string) bool {
		if len(row) >= 2 && row[0] == capid {
			positions = append(positions, row[1])
		}
		return true
	})
	return positions
}

// IsWingAdmin reports whether the member holds one of the admin duty
// positions at WING level.
func (r *Roster) IsWingAdmin(capid string, adminDuties []string) bool {
	admin := false
	_ = r.readRows("DutyPosition.txt", func(row []string) bool {
		if len(row) >= 5 && row[0] == capid && row[3] == "WING" {
			for _, duty := range adminDuties {
				if row[1] == duty {
					admin = true
					return false
				}
			}
		}
		return true
	})
	return admin
}

// ValidVanNumber checks a van number against vehicles.txt and returns its
// VIN when found.
func (r *Roster) ValidVanNumber(vanNumber string) (bool, string) {
	valid := false
	vin := ""
	_ = r.readRows("vehicles.txt", func(row []string) bool {
		if len(row) > 3 && row[3] == vanNumber {
			valid = true
			if len(row) > 9 {
				vin = row[9]
			}
			return false
		}
		return true
	})
	return valid, vin
}
