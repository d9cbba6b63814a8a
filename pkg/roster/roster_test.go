package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUnload(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testRoster(t *testing.T) *Roster {
	dir := t.TempDir()
	writeUnload(t, dir, "Member.txt",
		`"CAPID","SSN","NameLast","NameFirst","NameMiddle","NameSuffix","Gender","DOB","Profession","EducationLevel","Citizen","ORGID","Wing","Unit","Rank"
"123456","","Smith","Jane","","","F","01/02/1990","","","",`+`"2001","PA","101","Capt"
"234567","","Jones","Bob","","","M","03/04/1985","","","","2002","PA","102","Maj"
`)
	writeUnload(t, dir, "MbrContact.txt",
		`"CAPID","Type","Priority","Contact"
"123456","EMAIL","PRIMARY","jsmith@pawg.cap.gov"
"123456","CELLPHONE","PRIMARY","555-0100"
`)
	writeUnload(t, dir, "DutyPosition.txt",
		`"CAPID","Duty","FunctArea","Lvl","Asst"
"123456","Director of Logistics","LG","WING","0"
"234567","Safety Officer","SE","UNIT","0"
`)
	writeUnload(t, dir, "Organization.txt",
		`"ORGID","Region","Wing","Unit","NextLevel","Name"
"2001","NER","PA","101","2000","Squadron 101"
"2002","NER","PA","102","2001","Flight 102"
`)
	writeUnload(t, dir, "vehicles.txt",
		`"id","region","wing","van_number","make","model","year","color","tag","vin"
"1","NER","PA","V1","Ford","E350","2019","White","ABC123","1FDWE35L09DA00001"
`)
	return New(dir)
}

func TestFindMemberInfo(t *testing.T) {
	r := testRoster(t)

	info := r.FindMemberInfo("123456")
	require.NotNil(t, info)
	assert.Equal(t, "Jane", info.FirstName)
	assert.Equal(t, "Smith", info.LastName)
	assert.Equal(t, "Capt", info.Rank)
	assert.Equal(t, "01/02/1990", info.DOB)
	assert.Equal(t, "2001", info.OrgID)

	assert.Nil(t, r.FindMemberInfo("999999"))
}

func TestFindMemberInfoMissingFile(t *testing.T) {
	r := New(t.TempDir())
	assert.Nil(t, r.FindMemberInfo("123456"))
}

func TestFindCAPIDByEmail(t *testing.T) {
	r := testRoster(t)

	assert.Equal(t, "123456", r.FindCAPIDByEmail("JSmith@pawg.cap.gov"))
	assert.Equal(t, "", r.FindCAPIDByEmail("555-0100"))
	assert.Equal(t, "", r.FindCAPIDByEmail("nobody@pawg.cap.gov"))
}

func TestAuthorizedOrgIDs(t *testing.T) {
	r := testRoster(t)

	orgs := r.AuthorizedOrgIDs("2000")
	assert.True(t, orgs["2000"])
	assert.True(t, orgs["2001"], "direct child")
	assert.True(t, orgs["2002"], "grandchild")
	assert.False(t, orgs["3000"])
}

func TestIsWingAdmin(t *testing.T) {
	r := testRoster(t)
	duties := []string{"Director of Logistics", "Commander"}

	assert.True(t, r.IsWingAdmin("123456", duties))
	// unit-level duty does not grant wing admin
	assert.False(t, r.IsWingAdmin("234567", duties))
	assert.False(t, r.IsWingAdmin("999999", duties))
}

func TestDutyPositions(t *testing.T) {
	r := testRoster(t)

	assert.Equal(t, []string{"Director of Logistics"}, r.DutyPositions("123456"))
	assert.Empty(t, r.DutyPositions("999999"))
}

func TestValidVanNumber(t *testing.T) {
	r := testRoster(t)

	ok, vin := r.ValidVanNumber("V1")
	assert.True(t, ok)
	assert.Equal(t, "1FDWE35L09DA00001", vin)

	ok, vin = r.ValidVanNumber("V99")
	assert.False(t, ok)
	assert.Equal(t, "", vin)
}
