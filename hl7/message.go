package hl7

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nomihealth/flshots/records"
	"github.com/nomihealth/flshots/sites"
)

const timestampLayout = "20060102150405" // YYYYMMDDHHMMSS

// Message is one complete VXU message: six segments in transmission order,
// with the control id shared by the MSH and ORC segments.
type Message struct {
	ControlID string
	Segments  []string
}

// Text returns the message text as sent on the wire.
func (m *Message) Text() string {
	return strings.Join(m.Segments, "")
}

// NewControlID generates a message control id for MSH-10 and ORC-3: the
// registry-assigned prefix 117, five random digits, a point and three random
// digits. Uniqueness is best-effort randomness only; the registry does not
// deduplicate on it.
func NewControlID() string {
	return fmt.Sprintf("117%05d.%03d", 10000+rand.Intn(89999), 100+rand.Intn(899))
}

// Assembler builds complete messages from upload records.
type Assembler struct {
	renderer Renderer
	sites    sites.Directory
	now      func() time.Time
}

// NewAssembler returns an Assembler rendering segments with renderer and
// resolving instances against directory.
func NewAssembler(renderer Renderer, directory sites.Directory) *Assembler {
	return &Assembler{renderer: renderer, sites: directory, now: time.Now}
}

// Assemble builds the six segments for one record in the fixed order
// [MSH, PID, ORC, RXA, RXR, OBX]. Any segment failure fails the whole
// message and the record should be skipped.
func (a *Assembler) Assemble(rec records.Record) (*Message, error) {
	instance := rec.String(records.FieldInstance)
	profile, ok := a.sites.Lookup(instance)
	if !ok {
		return nil, fmt.Errorf("hl7: unknown instance %q", instance)
	}
	controlID := NewControlID()
	msh, err := a.buildMSH(profile, controlID)
	if err != nil {
		return nil, err
	}
	pid, err := a.buildPID(rec)
	if err != nil {
		return nil, err
	}
	orc, err := a.buildORC(controlID)
	if err != nil {
		return nil, err
	}
	rxa, err := a.buildRXA(rec, profile)
	if err != nil {
		return nil, err
	}
	rxr, err := a.buildRXR(rec)
	if err != nil {
		return nil, err
	}
	obx, err := a.buildOBX(rec)
	if err != nil {
		return nil, err
	}
	return &Message{
		ControlID: controlID,
		Segments:  []string{msh, pid, orc, rxa, rxr, obx},
	}, nil
}
