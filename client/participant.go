package client

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// ErrBlankName is returned when a participant is created without a name.
var ErrBlankName = errors.New("client: participant name must not be blank")

var colorPalette = []string{
	"#958DF1", "#F98181", "#FBBC88", "#FAF594",
	"#70CFF8", "#94FADB", "#B9F18D",
}

// Participant is the client-side identity: a display name fixed at login
// and a display color generated once for the session.
type Participant struct {
	ID    string
	Name  string
	Color string
}

// NewParticipant validates the display name and assigns a session color.
func NewParticipant(name string) (Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Participant{}, ErrBlankName
	}
	p := Participant{
		ID:   uuid.NewString(),
		Name: name,
	}
	p.ensureColor()
	return p, nil
}

// ensureColor assigns a color only when none is set yet; an assigned color
// is never recomputed while the session lives.
func (p *Participant) ensureColor() {
	if p.Color == "" {
		p.Color = colorPalette[rand.Intn(len(colorPalette))]
	}
}
