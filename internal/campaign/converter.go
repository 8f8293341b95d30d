package campaign

import (
	"errors"
	"fmt"
	"strings"

	"marketnerd/internal/consultation"
)

// ErrNotCompleted is returned when conversion is attempted on a session
// that has not reached its completed stage.
var ErrNotCompleted = errors.New("campaign: consultation not completed")

// FromState converts a completed consultation into a campaign request.
// Conversion is deterministic and idempotent: it reads the state, never
// mutates it, and produces the same request every time. Missing optional
// fields render as "not specified"; missing channels fall back to the
// default mix.
func FromState(st *consultation.State) (*Request, error) {
	if st.Stage != consultation.StageCompleted {
		return nil, fmt.Errorf("%w: session %s is %s", ErrNotCompleted, st.SessionID, st.Stage)
	}

	in := st.Intent
	channels := append([]string(nil), in.Channels...)
	if len(channels) == 0 {
		channels = append([]string(nil), DefaultChannels...)
	}

	return &Request{
		SessionID:      st.SessionID,
		Product:        orDefault(in.Goal),
		Audience:       orDefault(in.Audience),
		Channels:       channels,
		Budget:         orDefault(in.Budget),
		Tone:           orDefault(in.Tone),
		Timeline:       orDefault(in.Timeline),
		QuestionsAsked: st.QuestionCount,
		Complete:       st.HasEnoughInfo,
	}, nil
}

func orDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotSpecified
	}
	return v
}
