package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/studyr/internal/store"
)

const productID = "-//studyr//study plan//EN"

// Event represents a parsed calendar event.
type Event struct {
	Summary   string
	StartTime time.Time
	EndTime   time.Time
}

// Fetch retrieves and parses iCalendar events from a URL or file path,
// returning events that overlap with the given time window.
func Fetch(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]Event, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	return Decode(r, windowStart, windowEnd)
}

// Decode reads every calendar in r and keeps events overlapping the window.
func Decode(r io.Reader, windowStart, windowEnd time.Time) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(time.Local)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(time.Local)
			if err != nil {
				continue
			}

			if start.Before(windowEnd) && end.After(windowStart) {
				summary, _ := event.Props.Text(ical.PropSummary)
				if summary != "" {
					events = append(events, Event{
						Summary:   summary,
						StartTime: start,
						EndTime:   end,
					})
				}
			}
		}
	}

	return events, nil
}

// Summary is the event title used for a study session.
func Summary(s store.Session) string {
	if s.IsRevision {
		return s.Subject + " [revision]"
	}
	return s.Subject
}

// Export writes sessions as a single VCALENDAR, one VEVENT per session.
func Export(w io.Writer, sessions []store.Session, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, s := range sessions {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, s.ID+"@studyr")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, s.StartTime.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, s.EndTime.UTC())
		event.Props.SetText(ical.PropSummary, Summary(s))
		if s.Completed {
			event.Props.SetText(ical.PropStatus, "CONFIRMED")
		}
		if s.DayNumber > 0 {
			event.Props.SetText(ical.PropDescription, fmt.Sprintf("Day %d of your study plan", s.DayNumber))
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}
