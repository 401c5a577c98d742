// Package section contains the pure business logic for report section
// lifecycle. This is part of the Functional Core - no I/O, only pure functions.
package section

// ID identifies one addressable unit of the final report. The set is closed:
// cover page, table of contents, nine numbered investigative sections, case
// particulars (cp), disclosure page (dp), and the fee/billing summary (fr).
type ID string

const (
	Cover ID = "cover"
	TOC   ID = "toc"
	S1    ID = "s1"
	S2    ID = "s2"
	S3    ID = "s3"
	S4    ID = "s4"
	S5    ID = "s5"
	S6    ID = "s6"
	S7    ID = "s7"
	S8    ID = "s8"
	S9    ID = "s9"
	CP    ID = "cp"
	DP    ID = "dp"
	FR    ID = "fr"
)

// All lists every valid section ID in canonical order.
var All = []ID{Cover, TOC, CP, S1, S2, S3, S4, S5, S6, S7, S8, S9, DP, FR}

var valid = func() map[ID]bool {
	m := make(map[ID]bool, len(All))
	for _, id := range All {
		m[id] = true
	}
	return m
}()

// IsValid reports whether id belongs to the closed section set.
func IsValid(id ID) bool {
	return valid[id]
}
