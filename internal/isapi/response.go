package isapi

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// responseStatus mirrors the panel's ResponseStatus XML body. statusCode is
// kept as a string so that a present-but-empty element can be told apart
// from an absent one.
type responseStatus struct {
	StatusCode    string `xml:"statusCode"`
	StatusString  string `xml:"statusString"`
	SubStatusCode string `xml:"subStatusCode"`
}

// interpretResponse applies the firmware leniency rule to a 2xx response
// body: a statusCode of exactly 1 is success, an absent or empty statusCode
// is also success (many firmware variants omit it on 2xx), and any other
// value is a failure. A body that is not parseable XML counts as absent.
//
// Absent-means-success is a deliberate policy carried over from field
// behavior of real panels, not missing validation.
func interpretResponse(body []byte) error {
	var status responseStatus
	if err := xml.Unmarshal(body, &status); err != nil {
		return nil
	}

	code := strings.TrimSpace(status.StatusCode)
	if code == "" || code == "1" {
		return nil
	}

	msg := fmt.Sprintf("panel returned statusCode=%s", code)
	if status.StatusString != "" {
		msg += fmt.Sprintf(" (%s)", status.StatusString)
	}
	if status.SubStatusCode != "" {
		msg += fmt.Sprintf(" sub=%s", status.SubStatusCode)
	}

	numeric := 0
	fmt.Sscanf(code, "%d", &numeric)
	return NewProtocolStatusError(numeric, msg)
}
