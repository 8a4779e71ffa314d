package legal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCaseNumber(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"labelled", "Civil Appeal No. 44/2018 between", "44/2018", true},
		{"case number colon", "Case Number: 7/2001", "7/2001", true},
		{"labelled wins over earlier bare", "ref 1/1999 then Petition No 3/2005", "3/2005", true},
		{"thai red number", "คดีหมายเลขแดงที่ อ.1234/2567", "1234/2567", true},
		{"bare skips numeric dates", "filed 12/03/2020, ref 45/2019", "45/2019", true},
		{"bare rejects longer year", "code 1/20201", "", false},
		{"none", "no numbers here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCaseNumber(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMetadata_Dates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"day month year", "Judgment delivered on 12th March 2020", "2020-03-12"},
		{"month day year", "Decided March 5, 2021", "2021-03-05"},
		{"day of month", "Dated this 3rd day of June, 2019", "2019-06-03"},
		{"iso", "2018-11-30", "2018-11-30"},
		{"numeric day first", "Hearing 12/03/2020", "2020-03-12"},
		{"labelled line preferred", "Filed 2019-01-01\nJudgment delivered 2020-02-02", "2020-02-02"},
		{"earliest on line across formats", "Decided 4 May 2021, heard 2021-01-05 and 03/02/2020", "2021-05-04"},
		{"numeric before textual", "Dated 03/02/2020, see 4 May 2021", "2020-02-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ExtractMetadata(tt.text)
			require.NotNil(t, m.Date)
			assert.Equal(t, tt.want, *m.Date)
		})
	}
}

func TestExtractMetadata_InvalidDateIgnored(t *testing.T) {
	m := ExtractMetadata("Hearing 31/02/2020")
	assert.Nil(t, m.Date)
}

func TestExtractMetadata_MissingFieldsAbsent(t *testing.T) {
	m := ExtractMetadata("The parties settled.")

	assert.Nil(t, m.CaseNumber)
	assert.Nil(t, m.Court)
	assert.Nil(t, m.Date)
	assert.Nil(t, m.Jurisdiction)
	assert.Empty(t, m.Parties)
	assert.Nil(t, m.DocumentType)
	assert.Empty(t, m.ReferencedLaws)
}

func TestExtractMetadata_CourtOfAppealHasNoJurisdiction(t *testing.T) {
	m := ExtractMetadata("IN THE COURT OF APPEAL\nRepublic vs John Doe")

	require.NotNil(t, m.Court)
	assert.Equal(t, "COURT OF APPEAL", *m.Court)
	assert.Nil(t, m.Jurisdiction)
	assert.Equal(t, []string{"Republic", "John Doe"}, m.Parties)
}

func TestExtractMetadata_JurisdictionLine(t *testing.T) {
	m := ExtractMetadata("Magistrates Court\nJurisdiction: england and wales")

	require.NotNil(t, m.Jurisdiction)
	assert.Equal(t, "England And Wales", *m.Jurisdiction)
}

func TestExtractMetadata_CaptionOnlyInHeader(t *testing.T) {
	lines := make([]string, headerLines+5)
	for i := range lines {
		lines[i] = "text"
	}
	lines[headerLines+2] = "Supreme Court"

	m := ExtractMetadata(strings.Join(lines, "\n"))
	assert.Nil(t, m.Court)
}

func TestSplitBundle(t *testing.T) {
	content := "Case No. 1/2020\nfirst\n___________________________\nCase No. 2/2020\nsecond\n" +
		"___________________________\n   \n"

	parts := SplitBundle(content)

	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "1/2020")
	assert.Contains(t, parts[1], "2/2020")
}

func TestSplitBundle_NoSeparator(t *testing.T) {
	parts := SplitBundle("single case")
	assert.Equal(t, []string{"single case"}, parts)
}

func TestExtractMetadata_DocumentType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"thai supreme court judgment", "คำพิพากษาศาลฎีกา\nคดีหมายเลขแดงที่ 1/2567", "คำพิพากษาศาลฎีกา"},
		{"thai jurisdiction ruling", "คำวินิจฉัยชี้ขาดอำนาจหน้าที่ระหว่างศาล ที่ 5/2560", "คำวินิจฉัยชี้ขาดอำนาจหน้าที่ระหว่างศาล"},
		{"english heading", "IN THE HIGH COURT\n\nJUDGMENT\n\nThe appeal fails.", "Judgment"},
		{"qualified heading", "Final   Ruling on costs", "Final Ruling"},
		{"first title wins", "Ruling\nOrder", "Ruling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ExtractMetadata(tt.text)
			require.NotNil(t, m.DocumentType)
			assert.Equal(t, tt.want, *m.DocumentType)
		})
	}
}

func TestExtractMetadata_DocumentTypeNeedsTitleLine(t *testing.T) {
	m := ExtractMetadata("The court ordered costs.\nIt was so ordered.")
	assert.Nil(t, m.DocumentType)
}

func TestExtractMetadata_ReferencedLaws(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"english acts and codes",
			"Charged under section 203 of the Penal Code.\nThe Evidence Act, 1963 applies. See the Penal Code again.",
			[]string{"Penal Code", "Evidence Act, 1963"},
		},
		{
			"thai statutes",
			"ตามประมวลกฎหมายอาญา มาตรา 288 และพระราชบัญญัติยาเสพติดให้โทษ พ.ศ. 2522",
			[]string{"ประมวลกฎหมายอาญา", "พระราชบัญญัติยาเสพติดให้โทษ พ.ศ. 2522"},
		},
		{
			"constitution",
			"ขัดต่อรัฐธรรมนูญแห่งราชอาณาจักรไทย",
			[]string{"รัฐธรรมนูญแห่งราชอาณาจักรไทย"},
		},
		{
			"mixed in order of mention",
			"ประมวลกฎหมายแพ่งและพาณิชย์ and the Contracts Act",
			[]string{"ประมวลกฎหมายแพ่งและพาณิชย์", "Contracts Act"},
		},
		{"lowercase act is not a law", "the act of the accused", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMetadata(tt.text).ReferencedLaws)
		})
	}
}
