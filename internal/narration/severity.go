package narration

// Severity classifies how well a narration fits its step. Values are
// ordered along the fill-ratio axis, so a larger value always means a
// fuller step.
type Severity int

const (
	SeverityErrorShort Severity = iota // listener gets dead air
	SeverityWarnShort                  // usable, but sparse
	SeverityOK
	SeverityWarnTight // little breathing room left
	SeverityErrorLong // narration is cut off before the step ends
)

// String returns the severity label used in reports.
func (s Severity) String() string {
	switch s {
	case SeverityErrorShort:
		return "error-short"
	case SeverityWarnShort:
		return "warn-short"
	case SeverityOK:
		return "ok"
	case SeverityWarnTight:
		return "warn-tight"
	case SeverityErrorLong:
		return "error-long"
	default:
		return "unknown"
	}
}

// IsError reports whether the verdict should fail a lint run.
func (s Severity) IsError() bool {
	return s == SeverityErrorShort || s == SeverityErrorLong
}

// IsWarning reports whether the verdict is usable but worth a look.
func (s Severity) IsWarning() bool {
	return s == SeverityWarnShort || s == SeverityWarnTight
}
