package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const separator = " · "

var (
	// sessionHeaderRe matches: "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// exerciseHeaderRe matches: "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// setDataRe matches: 1;115;8;1
	setDataRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// warmupRe matches: WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// durationRe matches: 1:02 hr, 0:45 hr, 45 min
	durationRe = regexp.MustCompile(`^(?:(\d+):(\d{2})\s*hr|(\d+)\s*min)$`)

	columnHeader = "#;KG;REPS;RIR"
)

// parser accumulates sessions line by line. Blank lines and new session
// headers close the open session.
type parser struct {
	sessions []Session
	session  *Session
	exercise *Exercise
}

func (p *parser) closeExercise() {
	if p.session != nil && p.exercise != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) closeSession() {
	p.closeExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeSession()
		return nil
	case line == columnHeader:
		return nil
	}

	if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
		p.closeSession()
		date, err := parseSessionDate(m[2])
		if err != nil {
			return err
		}
		p.session = &Session{Title: m[1], Date: date, Duration: parseDuration(m[3])}
		return nil
	}

	if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
		if p.session == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		p.closeExercise()
		num, _ := strconv.Atoi(m[1])
		targetReps, _ := strconv.Atoi(m[4])
		p.exercise = &Exercise{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: targetReps,
		}
		if m[6] != "" {
			p.exercise.Sets = append(p.exercise.Sets, parseWarmups(m[6])...)
		}
		return nil
	}

	if m := setDataRe.FindStringSubmatch(line); m != nil {
		if p.exercise == nil {
			return fmt.Errorf("set data without exercise: %q", line)
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		rir, err := parseDecimal(m[4])
		if err != nil {
			rir = -1
		}
		p.exercise.Sets = append(p.exercise.Sets, Set{
			Number:     num,
			Weight:     weight,
			Bodyweight: bw,
			Reps:       reps,
			RIR:        rir,
		})
	}

	// anything else is notes or metadata
	return nil
}

// Parse reads an Alpha Progression CSV export.
func Parse(r io.Reader) ([]Session, error) {
	scanner := bufio.NewScanner(r)
	p := &parser{}
	for scanner.Scan() {
		if err := p.line(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

// parseSessionDate parses "2026-02-19 4:54" and "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing session date %q", s)
}

// parseDuration reads "1:02 hr" or "45 min". Unknown forms yield 0.
func parseDuration(s string) time.Duration {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	if m[3] != "" {
		mins, _ := strconv.Atoi(m[3])
		return time.Duration(mins) * time.Minute
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return time.Duration(hours)*time.Hour + time.Duration(mins)*time.Minute
}

// parseWarmups extracts warmup sets from the exercise header's second column.
// Example: "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
func parseWarmups(s string) []Set {
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{
			Number:     num,
			Weight:     weight,
			Bodyweight: bw,
			Reps:       reps,
			RIR:        -1,
			Warmup:     true,
		})
	}
	return sets
}

// parseWeight handles comma decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	bw := strings.HasPrefix(s, "+")
	w, err := parseDecimal(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, bw
	}
	return w, bw
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func cutSeparator(s string) (before, after string, found bool) {
	before, after, found = strings.Cut(s, separator)
	return strings.TrimSpace(before), after, found
}
