package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const icsProductID = "-//DisruptionMonitor//Disruptions Calendar//NL"

// WriteICS renders the projected events for [start, end] as an iCalendar
// document of all-day events.
func (p *Projector) WriteICS(w io.Writer, start, end time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)
	cal.Props.SetText("X-WR-CALNAME", "Disruptions Calendar")

	stamp := p.clock.Now().UTC().Format("20060102T150405Z")
	for _, event := range p.Events(start, end) {
		cal.Children = append(cal.Children, icsEvent(event, stamp))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func icsEvent(event Event, stamp string) *ical.Component {
	ev := ical.NewComponent(ical.CompEvent)
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s@disruption-monitor", event.ID))
	ev.Props.SetText(ical.PropSummary, event.Summary)
	ev.Props.SetText(ical.PropDescription, event.Description)

	dtstamp := ical.NewProp(ical.PropDateTimeStamp)
	dtstamp.Value = stamp
	ev.Props.Set(dtstamp)

	ev.Props.Set(dateProp(ical.PropDateTimeStart, event.Start))
	ev.Props.Set(dateProp(ical.PropDateTimeEnd, event.End))
	return ev
}

// dateProp builds a DATE-valued property for an all-day event boundary.
func dateProp(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDate)
	prop.Value = t.Format("20060102")
	return prop
}
