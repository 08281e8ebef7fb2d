package registry

import "strings"

// Disposition classifies the registry's acknowledgment of one submission.
type Disposition int

// Dispositions, from the MSA-1 acknowledgment code.
const (
	Unrecognized        Disposition = iota // no MSA code found in the response
	Accepted                               // MSA|AA
	AcceptedWithWarning                    // MSA|AE
	Rejected                               // MSA|AR
)

var dispositionNames = [...]string{
	"unrecognized",
	"accepted",
	"accepted-with-warning",
	"rejected",
}

func (d Disposition) String() string {
	return dispositionNames[d]
}

// Outcome is the classified result of one submission attempt. It is logged
// and discarded; nothing downstream persists it.
type Outcome struct {
	Disposition Disposition
	Detail      string // text of the ERR segment, where present
	Raw         string // raw acknowledgment text
}

// Classify inspects an acknowledgment body for the MSA code, in priority
// order AA, AE, AR. For AE and AR the detail is the text between the ERR
// marker and the next line break.
func Classify(response string) Outcome {
	switch {
	case strings.Contains(response, "MSA|AA"):
		return Outcome{Disposition: Accepted, Raw: response}
	case strings.Contains(response, "MSA|AE"):
		return Outcome{Disposition: AcceptedWithWarning, Detail: errDetail(response), Raw: response}
	case strings.Contains(response, "MSA|AR"):
		return Outcome{Disposition: Rejected, Detail: errDetail(response), Raw: response}
	}
	return Outcome{Disposition: Unrecognized, Raw: response}
}

// errDetail extracts the text between the ERR marker and the following line
// break. Returns "" when the response carries no ERR segment.
func errDetail(response string) string {
	i := strings.Index(response, "ERR")
	if i == -1 {
		return ""
	}
	detail := response[i+len("ERR"):]
	if j := strings.Index(detail, "\n"); j != -1 {
		detail = detail[:j]
	}
	return detail
}
