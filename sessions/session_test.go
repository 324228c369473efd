package sessions_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/stretchr/testify/require"
)

func TestRecordState(t *testing.T) {
	tests := []struct {
		name   string
		record sessions.Record
		want   sessions.State
	}{
		{"empty", sessions.Record{}, sessions.Anonymous{}},
		{"intermediate", sessions.Record{IntermediateCredential: "IST1"}, sessions.Intermediate{IST: "IST1"}},
		{"session", sessions.Record{SessionCredential: "S1"}, sessions.OrgSessioned{Token: "S1"}},
		{"both prefers intermediate", sessions.Record{SessionCredential: "S1", IntermediateCredential: "IST1"}, sessions.Intermediate{IST: "IST1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.record.State())
		})
	}
}

func TestRecordFor_RoundTrip(t *testing.T) {
	for _, state := range []sessions.State{
		sessions.Anonymous{},
		sessions.Intermediate{IST: "IST1"},
		sessions.OrgSessioned{Token: "S1"},
	} {
		require.Equal(t, state, sessions.RecordFor(state).State(), state.Name())
	}
	require.True(t, sessions.RecordFor(sessions.Anonymous{}).Empty())
}
