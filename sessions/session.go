// Package sessions holds the per-browser record of credentials issued by the
// identity authority and the state the flow controller derives from it.
package sessions

// Record is the server side state of one browser. It holds at most one
// organization scoped session credential and at most one intermediate
// credential. Validity of either is decided by the identity authority only.
type Record struct {
	SessionCredential      string `json:"session_credential,omitempty"`
	IntermediateCredential string `json:"intermediate_credential,omitempty"`
}

// Empty reports whether the record holds no credential.
func (r Record) Empty() bool {
	return r.SessionCredential == "" && r.IntermediateCredential == ""
}

// State is the authentication state of a browser: Anonymous, Intermediate or OrgSessioned.
type State interface {
	isState()
	Name() string
}

// Anonymous holds no credential.
type Anonymous struct{}

// Intermediate holds a verified but not yet organization scoped identity.
type Intermediate struct {
	IST string
}

// OrgSessioned holds a session credential that still has to be validated by the authority.
type OrgSessioned struct {
	Token string
}

func (Anonymous) isState()    {}
func (Intermediate) isState() {}
func (OrgSessioned) isState() {}

func (Anonymous) Name() string    { return "anonymous" }
func (Intermediate) Name() string { return "intermediate" }
func (OrgSessioned) Name() string { return "org_sessioned" }

// State derives the browser state. An intermediate credential takes
// precedence: it is only stored by a discovery login, which is the latest
// intent of the browser.
func (r Record) State() State {
	switch {
	case r.IntermediateCredential != "":
		return Intermediate{IST: r.IntermediateCredential}
	case r.SessionCredential != "":
		return OrgSessioned{Token: r.SessionCredential}
	default:
		return Anonymous{}
	}
}

// RecordFor returns the record that represents state. Every transition writes
// a whole record, so clearing one credential and setting the other is a single update.
func RecordFor(state State) Record {
	switch s := state.(type) {
	case Intermediate:
		return Record{IntermediateCredential: s.IST}
	case OrgSessioned:
		return Record{SessionCredential: s.Token}
	default:
		return Record{}
	}
}
