// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gps turns NMEA 0183 sentences from a GPS receiver into location
// fixes for the navigator.
package gps

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/inertial_nav/internal/nav"
)

const (
	knotsToMps = 0.514444

	// uereMeters converts HDOP into an approximate horizontal accuracy.
	uereMeters = 5.0
)

// Parser accumulates RMC and GGA sentences into location fixes. RMC
// carries position, speed, course and date; GGA adds altitude and HDOP.
// A fix is emitted for every valid RMC.
type Parser struct {
	altitude float64
	accuracy float64
}

// NewParser returns a parser with no GGA data seen yet.
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine handles one NMEA line. ok is true when the line completed a
// valid fix. Lines that are not NMEA, fail their checksum or carry other
// sentence types are ignored.
func (p *Parser) ParseLine(line string) (loc nav.Location, ok bool, err error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return nav.Location{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return nav.Location{}, false, fmt.Errorf("gps: parse %q: %w", line, err)
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		if m.FixQuality == nmea.Invalid {
			return nav.Location{}, false, nil
		}
		p.altitude = m.Altitude
		p.accuracy = m.HDOP * uereMeters

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			return nav.Location{}, false, nil
		}
		loc := nav.Location{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Altitude:  p.altitude,
			Accuracy:  p.accuracy,
			Bearing:   m.Course,
			Speed:     m.Speed * knotsToMps,
			Timestamp: fixTime(m.Date, m.Time),
		}
		if !loc.Valid() {
			return nav.Location{}, false, fmt.Errorf("gps: out of range fix %.6f,%.6f", loc.Latitude, loc.Longitude)
		}
		return loc, true, nil
	}

	return nav.Location{}, false, nil
}

// fixTime combines the RMC date and time into a UTC timestamp. Two-digit
// years below 80 are in the 2000s.
func fixTime(d nmea.Date, t nmea.Time) time.Time {
	if !d.Valid || !t.Valid {
		return time.Time{}
	}
	year := 1900 + d.YY
	if d.YY < 80 {
		year = 2000 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// ReadFixes scans r line by line and calls fn for every completed fix.
// Parse errors are passed to onErr (if set) and do not stop the scan;
// noisy receivers emit partial sentences. It returns when r is exhausted
// or fails.
func ReadFixes(r io.Reader, fn func(nav.Location), onErr func(error)) error {
	p := NewParser()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		loc, ok, err := p.ParseLine(scanner.Text())
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			continue
		}
		if ok {
			fn(loc)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gps: read: %w", err)
	}
	return nil
}
