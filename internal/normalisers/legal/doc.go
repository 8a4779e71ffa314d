// Package legal normalises raw court decisions into canonical text with
// rule-extracted case metadata.
//
// Cleaning removes page-break markers, bare page numbers, running headers
// repeated across pages and light markdown decoration, then unifies
// encoding and whitespace. Paragraph breaks survive as a single blank
// line so the chunker can split on them.
//
// Extraction rules cover English-language captions ("Case No. 12/2020",
// "IN THE HIGH COURT OF KENYA", "Smith v. Jones") and Thai Supreme Court
// decisions ("คดีหมายเลขแดงที่ อ.1234/2567", "ศาลฎีกา", "... โจทก์").
package legal
