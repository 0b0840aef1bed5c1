package polaris

// Status is a Gemini response status code. The tens digit selects the
// class, which decides what Meta means and whether a body follows.
type Status int

// Status table follows the jetforce enumeration.
const (
	StatusInput Status = 10

	StatusSuccess             Status = 20
	StatusSuccessEndOfSession Status = 21

	StatusRedirectTemporary Status = 30
	StatusRedirectPermanent Status = 31

	StatusTemporaryFailure  Status = 40
	StatusServerUnavailable Status = 41
	StatusCGIError          Status = 42
	StatusProxyError        Status = 43
	StatusSlowDown          Status = 44

	StatusPermanentFailure    Status = 50
	StatusNotFound            Status = 51
	StatusGone                Status = 52
	StatusProxyRequestRefused Status = 53
	StatusBadRequest          Status = 59

	StatusClientCertificateRequired     Status = 60
	StatusTransientCertificateRequested Status = 61
	StatusAuthorisedCertificateRequired Status = 62
	StatusCertificateNotAccepted        Status = 63
	StatusFutureCertificateRejected     Status = 64
	StatusExpiredCertificateRejected    Status = 65
)

// Class groups status codes by their tens digit.
type Class int

const (
	ClassInput               Class = 1
	ClassSuccess             Class = 2
	ClassRedirect            Class = 3
	ClassTemporaryFailure    Class = 4
	ClassPermanentFailure    Class = 5
	ClassCertificateRequired Class = 6
)

// Class reports the status class. Only meaningful for valid codes.
func (s Status) Class() Class {
	return Class(s / 10)
}

// Valid reports whether s falls inside the two-digit space the
// protocol defines. Codes outside it are rejected before
// serialization.
func (s Status) Valid() bool {
	return s >= 10 && s <= 69
}

// HasBody reports whether a response with this status carries body
// bytes after the status line. Only the success class does.
func (s Status) HasBody() bool {
	return s.Class() == ClassSuccess
}
