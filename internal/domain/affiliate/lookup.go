package affiliate

// Credentials is the username/password pair used to open a registry session.
// The service normally authenticates with its own service identity; the
// session endpoint also accepts caller-supplied credentials.
type Credentials struct {
	Username string
	Password string
}

// LookupRequest carries one eligibility lookup. It is immutable once built;
// optional secondary identifiers are empty strings when not supplied.
type LookupRequest struct {
	Option         int
	NationalID     string
	DocumentType   string
	DocumentNumber string
	Region         string
	FormatType     string
	ContractNumber string
	CorrelationID  string
	User           string
}
